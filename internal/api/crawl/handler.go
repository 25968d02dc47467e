// Package crawl provides REST API handlers for the pub crawl: registration,
// stage advancement, the punishment wheel, and the leaderboard.
package crawl

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kirkpatrick8/eventpool/internal/models"
	crawlsvc "github.com/kirkpatrick8/eventpool/internal/service/crawl"
	"github.com/kirkpatrick8/eventpool/internal/service/leaderboard"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

// CrawlService interface for crawl operations.
type CrawlService interface {
	Register(ctx context.Context, name string) (*crawlsvc.ParticipantView, error)
	Advance(ctx context.Context, name string) (*crawlsvc.ParticipantView, error)
	SpinPunishment(ctx context.Context, name string) (string, error)
	Participant(ctx context.Context, name string) (*crawlsvc.ParticipantView, []models.PunishmentEvent, error)
}

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	Get(ctx context.Context) ([]leaderboard.Entry, error)
}

// Handler handles crawl API requests.
type Handler struct {
	crawlService       CrawlService
	leaderboardService LeaderboardService
	log                *logger.Logger
}

// NewHandler creates a new crawl handler.
func NewHandler(crawlService *crawlsvc.Service, leaderboardService *leaderboard.Service, log *logger.Logger) *Handler {
	return &Handler{
		crawlService:       crawlService,
		leaderboardService: leaderboardService,
		log:                log,
	}
}

// NewHandlerWithInterfaces creates a new crawl handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(crawlService CrawlService, leaderboardService LeaderboardService, log *logger.Logger) *Handler {
	return &Handler{
		crawlService:       crawlService,
		leaderboardService: leaderboardService,
		log:                log,
	}
}

type registerRequest struct {
	Name string `json:"name" binding:"required"`
}

// Register creates or resumes a participant.
// POST /api/v1/crawl/participants.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "name is required")
		return
	}

	ctx := context.Background()
	view, err := h.crawlService.Register(ctx, req.Name)
	if err != nil {
		h.handleError(c, err, "Failed to register participant")
		return
	}

	c.JSON(http.StatusOK, gin.H{"participant": view})
}

// Advance completes the participant's current stage.
// POST /api/v1/crawl/participants/:name/advance.
func (h *Handler) Advance(c *gin.Context) {
	name := c.Param("name")

	ctx := context.Background()
	view, err := h.crawlService.Advance(ctx, name)
	if err != nil {
		if errors.Is(err, crawlsvc.ErrAlreadyComplete) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "crawl already complete",
				"code":  "already_complete",
			})
			return
		}
		h.handleError(c, err, "Failed to advance participant")
		return
	}

	c.JSON(http.StatusOK, gin.H{"participant": view})
}

// SpinPunishment draws a random punishment for a rule break.
// POST /api/v1/crawl/participants/:name/punishment.
func (h *Handler) SpinPunishment(c *gin.Context) {
	name := c.Param("name")

	ctx := context.Background()
	punishment, err := h.crawlService.SpinPunishment(ctx, name)
	if err != nil {
		h.handleError(c, err, "Failed to spin punishment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"punishment": punishment})
}

// GetParticipant returns one participant's progress and punishment history.
// GET /api/v1/crawl/participants/:name.
func (h *Handler) GetParticipant(c *gin.Context) {
	name := c.Param("name")

	ctx := context.Background()
	view, punishments, err := h.crawlService.Participant(ctx, name)
	if err != nil {
		h.handleError(c, err, "Failed to get participant")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"participant": view,
		"punishments": punishments,
	})
}

// GetLeaderboard returns the current standings.
// GET /api/v1/crawl/leaderboard.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	ctx := context.Background()
	entries, err := h.leaderboardService.Get(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "failed to retrieve leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   entries,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// handleError maps service errors onto HTTP statuses.
func (h *Handler) handleError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		h.errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		h.errorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrConflict):
		h.errorResponse(c, http.StatusConflict, "crawl state was updated by someone else, please try again")
	default:
		h.log.Error().Err(err).Msg(logMsg)
		h.errorResponse(c, http.StatusInternalServerError, "internal error")
	}
}

// errorResponse sends a JSON error response.
func (h *Handler) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
