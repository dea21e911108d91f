package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mhgaber/dukan_pos_backend/internal/apperrors"
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	portssvc "github.com/mhgaber/dukan_pos_backend/internal/core/ports/services"
	"github.com/mhgaber/dukan_pos_backend/internal/core/services"
	"github.com/mhgaber/dukan_pos_backend/internal/dto"
	"github.com/mhgaber/dukan_pos_backend/internal/middleware"
)

// invoiceHandler handles HTTP requests for the invoice lifecycle.
type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
}

// registerInvoiceRoutes registers the invoice lifecycle routes.
func registerInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade) {
	h := &invoiceHandler{invoiceService: invoiceService}

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.GET("", h.listInvoices)
		invoices.GET("/:id", h.getInvoice)
		invoices.PUT("/:id", h.updateInvoice)
		invoices.POST("/:id/post", h.postInvoice)
		invoices.POST("/:id/void", h.voidInvoice)
	}
}

// invoiceErrorResponse maps the invoice service errors onto HTTP statuses.
func invoiceErrorResponse(c *gin.Context, logger *slog.Logger, action string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, services.ErrCounterpartyKind),
		errors.Is(err, services.ErrNegativePaid),
		errors.Is(err, services.ErrEmptyInvoice),
		errors.Is(err, services.ErrAccountInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidStateTransition),
		errors.Is(err, apperrors.ErrConcurrencyConflict),
		errors.Is(err, apperrors.ErrAmbiguousReversal):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInsufficientStock),
		errors.Is(err, apperrors.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// createInvoice godoc
// @Summary Create an invoice
// @Description Creates a draft sales or purchase invoice with computed totals. Posted immediately when auto-posting is enabled.
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "Insufficient stock"
// @Failure 500 {object} map[string]string "Failed to create invoice"
// @Router /invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateInvoice", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing operator identity"})
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req, userID)
	if err != nil {
		invoiceErrorResponse(c, logger, "create invoice", err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(invoice))
}

// updateInvoice godoc
// @Summary Update a draft invoice
// @Description Replaces the editable fields of a draft and recomputes totals. Posted and voided invoices are frozen.
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Param   invoice body dto.UpdateInvoiceRequest true "Fields to update"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice is not a draft"
// @Failure 500 {object} map[string]string "Failed to update invoice"
// @Router /invoices/{id} [put]
func (h *invoiceHandler) updateInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("id")

	var req dto.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateInvoice", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing operator identity"})
		return
	}

	invoice, err := h.invoiceService.UpdateDraftInvoice(c.Request.Context(), invoiceID, req, userID)
	if err != nil {
		invoiceErrorResponse(c, logger, "update invoice", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// postInvoice godoc
// @Summary Post a draft invoice
// @Description Transitions Draft to Posted: books the unpaid portion on the counterparty and moves stock per line, atomically.
// @Tags invoices
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice is not a draft"
// @Failure 422 {object} map[string]string "Insufficient stock"
// @Failure 500 {object} map[string]string "Failed to post invoice"
// @Router /invoices/{id}/post [post]
func (h *invoiceHandler) postInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing operator identity"})
		return
	}

	invoice, err := h.invoiceService.PostInvoice(c.Request.Context(), invoiceID, userID)
	if err != nil {
		invoiceErrorResponse(c, logger, "post invoice", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// voidInvoice godoc
// @Summary Void a posted invoice
// @Description Transitions Posted to Voided by reversing every movement created at posting time, atomically.
// @Tags invoices
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Success 204 "Voided"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice is not posted"
// @Failure 500 {object} map[string]string "Failed to void invoice"
// @Router /invoices/{id}/void [post]
func (h *invoiceHandler) voidInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing operator identity"})
		return
	}

	if err := h.invoiceService.VoidInvoice(c.Request.Context(), invoiceID, userID); err != nil {
		invoiceErrorResponse(c, logger, "void invoice", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// getInvoice godoc
// @Summary Get an invoice by ID
// @Tags invoices
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 500 {object} map[string]string "Failed to retrieve invoice"
// @Router /invoices/{id} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("id")

	invoice, err := h.invoiceService.GetInvoiceByID(c.Request.Context(), invoiceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		} else {
			logger.Error("Failed to get invoice", slog.String("invoice_id", invoiceID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invoice"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// listInvoices godoc
// @Summary List invoices
// @Description Lists invoices, optionally filtered by kind, with token pagination. Lines are omitted on listings.
// @Tags invoices
// @Produce  json
// @Param   kind query string false "Invoice kind filter (SALES, PURCHASE)"
// @Param   limit query int false "Page size (default 50)"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Failure 500 {object} map[string]string "Failed to list invoices"
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.ListInvoicesParams{}
	if kindStr := c.Query("kind"); kindStr != "" {
		kind := domain.InvoiceKind(kindStr)
		switch kind {
		case domain.SalesInvoice, domain.PurchaseInvoice:
			params.Kind = &kind
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice kind: " + kindStr})
			return
		}
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		params.Limit = limit
	}
	if token := c.Query("nextToken"); token != "" {
		params.NextToken = &token
	}

	resp, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list invoices", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list invoices"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
