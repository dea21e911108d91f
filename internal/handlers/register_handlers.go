package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/mhgaber/dukan_pos_backend/cmd/docs"
	portssvc "github.com/mhgaber/dukan_pos_backend/internal/core/ports/services"
	"github.com/mhgaber/dukan_pos_backend/internal/middleware"
	"github.com/mhgaber/dukan_pos_backend/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerDecimalValidation()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Setup API v1 routes, passing service interfaces
	setupAPIV1Routes(r, cfg, services)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Every request carries the operator identity and sits behind a per-IP
	// rate limit against accidental rapid double submits.
	v1 := r.Group("/api/v1", middleware.ActorMiddleware(), middleware.RateLimit(newMutationLimiter(cfg)))

	registerHomeRoutes(v1)
	registerAccountRoutes(v1, services.Account, services.Ledger)
	registerLedgerRoutes(v1, services.Ledger)
	registerInvoiceRoutes(v1, services.Invoice)
	registerStockRoutes(v1, services.Stock)
}

// newMutationLimiter builds an in-memory per-IP limiter from the configured rate.
func newMutationLimiter(cfg *config.Config) *limiter.Limiter {
	rate, err := limiter.NewRateFromFormatted(cfg.MutationRateLimit)
	if err != nil {
		log.Printf("Warning: Invalid MUTATION_RATE_LIMIT ('%s'). Defaulting to 120-M.\n", cfg.MutationRateLimit)
		rate, _ = limiter.NewRateFromFormatted("120-M")
	}
	return limiter.New(memory.NewStore(), rate)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
