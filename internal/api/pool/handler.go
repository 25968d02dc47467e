// Package pool provides REST API handlers for the guessing pool: submitting
// predictions, listing them, and downloading the CSV export.
package pool

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kirkpatrick8/eventpool/internal/models"
	poolsvc "github.com/kirkpatrick8/eventpool/internal/service/pool"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

// PoolService interface for pool operations.
type PoolService interface {
	Submit(ctx context.Context, p *models.Prediction) error
	List(ctx context.Context) []models.Prediction
	ExportCSV(ctx context.Context) ([]byte, error)
}

// Handler handles pool API requests.
type Handler struct {
	service PoolService
	log     *logger.Logger
}

// NewHandler creates a new pool handler.
func NewHandler(service *poolsvc.Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// NewHandlerWithInterfaces creates a new pool handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(service PoolService, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// SubmitPrediction accepts one prediction submission.
// POST /api/v1/predictions.
func (h *Handler) SubmitPrediction(c *gin.Context) {
	var prediction models.Prediction
	if err := c.ShouldBindJSON(&prediction); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := context.Background()
	if err := h.service.Submit(ctx, &prediction); err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			h.errorResponse(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, models.ErrConflict):
			h.errorResponse(c, http.StatusConflict, "the pool was updated by someone else, please try again")
		default:
			h.log.Error().Err(err).Msg("Failed to save prediction")
			h.errorResponse(c, http.StatusInternalServerError, "failed to save prediction")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":       "saved",
		"name":         prediction.Name,
		"submitted_at": prediction.SubmittedAt,
	})
}

// ListPredictions returns the current predictions table.
// GET /api/v1/predictions.
func (h *Handler) ListPredictions(c *gin.Context) {
	ctx := context.Background()
	predictions := h.service.List(ctx)

	c.JSON(http.StatusOK, gin.H{
		"predictions":  predictions,
		"total":        len(predictions),
		"generated_at": time.Now().UTC(),
	})
}

// ExportCSV streams the predictions as a CSV download.
// GET /api/v1/predictions/export.
func (h *Handler) ExportCSV(c *gin.Context) {
	ctx := context.Background()
	data, err := h.service.ExportCSV(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to export predictions")
		h.errorResponse(c, http.StatusInternalServerError, "failed to export predictions")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="predictions.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// errorResponse sends a JSON error response.
func (h *Handler) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
