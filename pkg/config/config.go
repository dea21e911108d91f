package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Invoice posting policy. The tax rate and discount base are stamped onto
	// each invoice at creation time, so changing these later never rewrites
	// existing documents. DefaultTaxRate is a percentage (15 means 15%).
	DefaultTaxRate     float64
	TaxOnNetOfDiscount bool
	AutoPostInvoices   bool

	// MutationRateLimit is a ulule/limiter formatted rate (e.g. "120-M")
	// applied to the balance-affecting endpoints.
	MutationRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("DEFAULT_TAX_RATE", 0.0)
	viper.SetDefault("TAX_ON_NET_OF_DISCOUNT", true)
	viper.SetDefault("AUTO_POST_INVOICES", false)
	viper.SetDefault("MUTATION_RATE_LIMIT", "120-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.DefaultTaxRate = viper.GetFloat64("DEFAULT_TAX_RATE")
	if cfg.DefaultTaxRate < 0 || cfg.DefaultTaxRate >= 100 {
		log.Printf("Warning: DEFAULT_TAX_RATE must be a percentage in [0,100) ('%v'). Defaulting to 0.\n", cfg.DefaultTaxRate)
		cfg.DefaultTaxRate = 0
	}
	cfg.TaxOnNetOfDiscount = viper.GetBool("TAX_ON_NET_OF_DISCOUNT")
	cfg.AutoPostInvoices = viper.GetBool("AUTO_POST_INVOICES")

	cfg.MutationRateLimit = viper.GetString("MUTATION_RATE_LIMIT")
	if cfg.MutationRateLimit == "" {
		cfg.MutationRateLimit = "120-M"
		log.Printf("Warning: MUTATION_RATE_LIMIT not set. Defaulting to %s.\n", cfg.MutationRateLimit)
	}

	return cfg, nil
}
