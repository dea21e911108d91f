package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mhgaber/dukan_pos_backend/internal/apperrors"
	portssvc "github.com/mhgaber/dukan_pos_backend/internal/core/ports/services"
	"github.com/mhgaber/dukan_pos_backend/internal/core/services"
	"github.com/mhgaber/dukan_pos_backend/internal/dto"
	"github.com/mhgaber/dukan_pos_backend/internal/middleware"
)

// ledgerHandler handles HTTP requests for cash movements, transfers and
// reversals.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// registerLedgerRoutes registers the balance-mutation routes.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := &ledgerHandler{ledgerService: ledgerService}

	movements := rg.Group("/movements")
	{
		movements.POST("", h.applyMovement)
		movements.GET("/:id", h.getMovement)
		movements.GET("/:id/pair", h.getPairLeg)
		movements.POST("/:id/reverse", h.reverseMovement)
	}
	rg.POST("/transfers", h.transfer)
}

// applyMovement godoc
// @Summary Record a manual cash movement
// @Description Records an income or expense against an account and applies its balance delta atomically.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   movement body dto.ApplyMovementRequest true "Movement details"
// @Success 201 {object} dto.MovementResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 422 {object} map[string]string "Insufficient balance"
// @Failure 500 {object} map[string]string "Failed to record movement"
// @Router /movements [post]
func (h *ledgerHandler) applyMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ApplyMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApplyMovement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing operator identity"})
		return
	}

	movement, err := h.ledgerService.ApplyMovement(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation),
			errors.Is(err, services.ErrDirectTransferType),
			errors.Is(err, services.ErrAccountInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientBalance):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConcurrencyConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to apply movement", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record movement"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToMovementResponse(movement))
}

// transfer godoc
// @Summary Transfer cash between two cash boxes
// @Description Moves an amount between cash boxes as two paired movement records committed atomically.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 422 {object} map[string]string "Insufficient balance"
// @Failure 500 {object} map[string]string "Failed to transfer"
// @Router /transfers [post]
func (h *ledgerHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing operator identity"})
		return
	}

	out, in, err := h.ledgerService.Transfer(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation),
			errors.Is(err, services.ErrSameAccount),
			errors.Is(err, services.ErrNotCashBox),
			errors.Is(err, services.ErrAccountInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientBalance):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConcurrencyConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to transfer", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to transfer"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.TransferResponse{
		Out: dto.ToMovementResponse(out),
		In:  dto.ToMovementResponse(in),
	})
}

// getMovement godoc
// @Summary Get a movement record by ID
// @Tags ledger
// @Produce  json
// @Param   id path string true "Movement ID"
// @Success 200 {object} dto.MovementResponse
// @Failure 404 {object} map[string]string "Movement not found"
// @Failure 500 {object} map[string]string "Failed to retrieve movement"
// @Router /movements/{id} [get]
func (h *ledgerHandler) getMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	movementID := c.Param("id")

	movement, err := h.ledgerService.GetMovement(c.Request.Context(), movementID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Movement not found"})
		} else {
			logger.Error("Failed to get movement", slog.String("movement_id", movementID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve movement"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToMovementResponse(movement))
}

// getPairLeg godoc
// @Summary Get the other leg of a transfer
// @Description Resolves a transfer leg's counterpart, so both legs can be reversed explicitly.
// @Tags ledger
// @Produce  json
// @Param   id path string true "Movement ID"
// @Success 200 {object} dto.MovementResponse
// @Failure 400 {object} map[string]string "Movement is not a transfer leg"
// @Failure 404 {object} map[string]string "Movement not found"
// @Failure 500 {object} map[string]string "Failed to retrieve pair leg"
// @Router /movements/{id}/pair [get]
func (h *ledgerHandler) getPairLeg(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	movementID := c.Param("id")

	pair, err := h.ledgerService.GetPairLeg(c.Request.Context(), movementID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Movement not found"})
		default:
			logger.Error("Failed to get pair leg", slog.String("movement_id", movementID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pair leg"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToMovementResponse(pair))
}

// reverseMovement godoc
// @Summary Reverse a committed movement record
// @Description Applies the inverse balance delta and deletes the record in one unit of work. Transfer legs whose direction cannot be resolved are refused.
// @Tags ledger
// @Produce  json
// @Param   id path string true "Movement ID"
// @Success 204 "Reversed"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Movement not found"
// @Failure 409 {object} map[string]string "Ambiguous reversal or version conflict"
// @Failure 422 {object} map[string]string "Reversal would overdraw the account"
// @Failure 500 {object} map[string]string "Failed to reverse movement"
// @Router /movements/{id}/reverse [post]
func (h *ledgerHandler) reverseMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	movementID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing operator identity"})
		return
	}

	if err := h.ledgerService.Reverse(c.Request.Context(), movementID, userID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Movement not found"})
		case errors.Is(err, apperrors.ErrAmbiguousReversal),
			errors.Is(err, apperrors.ErrConcurrencyConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientBalance):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reverse movement", slog.String("movement_id", movementID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse movement"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
