package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mhgaber/dukan_pos_backend/internal/apperrors"
	portssvc "github.com/mhgaber/dukan_pos_backend/internal/core/ports/services"
	"github.com/mhgaber/dukan_pos_backend/internal/core/services"
	"github.com/mhgaber/dukan_pos_backend/internal/dto"
	"github.com/mhgaber/dukan_pos_backend/internal/middleware"
)

// stockHandler handles HTTP requests for stock entries and adjustments.
type stockHandler struct {
	stockService portssvc.StockSvcFacade
}

// registerStockRoutes registers the stock tracking routes.
func registerStockRoutes(rg *gin.RouterGroup, stockService portssvc.StockSvcFacade) {
	h := &stockHandler{stockService: stockService}

	stock := rg.Group("/stock")
	{
		stock.POST("/entries", h.createEntry)
		stock.GET("/entries/:id", h.getEntry)
		stock.GET("/entries/:id/movements", h.listEntryMovements)
		stock.GET("/products/:productID", h.getEntryByProduct)
		stock.POST("/adjustments", h.adjustStock)
	}
}

// createEntry godoc
// @Summary Start tracking a product
// @Description Creates a stock entry for a product, optionally scoped to a warehouse. A non-zero opening quantity is recorded as an initial IN movement.
// @Tags stock
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateStockEntryRequest true "Stock entry details"
// @Success 201 {object} dto.StockEntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Product already tracked"
// @Failure 500 {object} map[string]string "Failed to create stock entry"
// @Router /stock/entries [post]
func (h *stockHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateStockEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateStockEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing operator identity"})
		return
	}

	entry, err := h.stockService.CreateStockEntry(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create stock entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create stock entry"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToStockEntryResponse(entry))
}

// getEntry godoc
// @Summary Get a stock entry by ID
// @Tags stock
// @Produce  json
// @Param   id path string true "Stock entry ID"
// @Success 200 {object} dto.StockEntryResponse
// @Failure 404 {object} map[string]string "Stock entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve stock entry"
// @Router /stock/entries/{id} [get]
func (h *stockHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	entry, err := h.stockService.GetStockEntry(c.Request.Context(), entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock entry not found"})
		} else {
			logger.Error("Failed to get stock entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stock entry"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToStockEntryResponse(entry))
}

// getEntryByProduct godoc
// @Summary Get the stock entry for a product
// @Tags stock
// @Produce  json
// @Param   productID path string true "Product ID"
// @Param   warehouseID query string false "Warehouse ID"
// @Success 200 {object} dto.StockEntryResponse
// @Failure 404 {object} map[string]string "Stock entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve stock entry"
// @Router /stock/products/{productID} [get]
func (h *stockHandler) getEntryByProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	productID := c.Param("productID")
	warehouseID := c.Query("warehouseID")

	entry, err := h.stockService.GetStockEntryByProduct(c.Request.Context(), productID, warehouseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock entry not found"})
		} else {
			logger.Error("Failed to get stock entry by product", slog.String("product_id", productID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stock entry"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToStockEntryResponse(entry))
}

// adjustStock godoc
// @Summary Adjust a stock quantity
// @Description Records a signed manual correction as an ADJUSTMENT movement and applies it to the entry quantity.
// @Tags stock
// @Accept  json
// @Produce  json
// @Param   adjustment body dto.AdjustStockRequest true "Adjustment details"
// @Success 201 {object} dto.StockMovementResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Stock entry not found"
// @Failure 409 {object} map[string]string "Concurrent update"
// @Failure 422 {object} map[string]string "Insufficient stock"
// @Failure 500 {object} map[string]string "Failed to adjust stock"
// @Router /stock/adjustments [post]
func (h *stockHandler) adjustStock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AdjustStock", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing operator identity"})
		return
	}

	movement, err := h.stockService.AdjustStock(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, services.ErrZeroAdjustment):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock entry not found"})
		case errors.Is(err, apperrors.ErrConcurrencyConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientStock):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to adjust stock", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust stock"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToStockMovementResponse(movement))
}

// listEntryMovements godoc
// @Summary List an entry's stock movements
// @Description Lists movements for a stock entry, newest first, with token pagination.
// @Tags stock
// @Produce  json
// @Param   id path string true "Stock entry ID"
// @Param   limit query int false "Page size (default 50)"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListStockMovementsResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 404 {object} map[string]string "Stock entry not found"
// @Failure 500 {object} map[string]string "Failed to list stock movements"
// @Router /stock/entries/{id}/movements [get]
func (h *stockHandler) listEntryMovements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}
	var nextToken *string
	if token := c.Query("nextToken"); token != "" {
		nextToken = &token
	}

	resp, err := h.stockService.ListEntryMovements(c.Request.Context(), entryID, limit, nextToken)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock entry not found"})
		default:
			logger.Error("Failed to list stock movements", slog.String("entry_id", entryID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stock movements"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
