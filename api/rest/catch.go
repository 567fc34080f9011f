package rest

import (
	"errors"
	"net/http"

	"github.com/e9games/creaturebot/game/catching"
	"github.com/e9games/creaturebot/game/inventory"
	"github.com/e9games/creaturebot/store"
	"github.com/gin-gonic/gin"
)

// CatchHandler handles catch attempt REST endpoints.
type CatchHandler struct {
	catching *catching.Service
}

// NewCatchHandler creates a new CatchHandler.
func NewCatchHandler(c *catching.Service) *CatchHandler {
	return &CatchHandler{catching: c}
}

// Attempt handles POST /api/users/:id/catch.
func (h *CatchHandler) Attempt(c *gin.Context) {
	userID := c.Param("id")
	res, err := h.catching.AttemptCatch(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !res.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":            "catch limit reached",
			"time_until_reset": res.TimeUntilReset.String(),
		})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Pending handles GET /api/users/:id/catch/pending.
func (h *CatchHandler) Pending(c *gin.Context) {
	userID := c.Param("id")
	creature, err := h.catching.PendingCreature(userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending creature"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"creature": creature})
}

// Replace handles POST /api/users/:id/catch/replace.
func (h *CatchHandler) Replace(c *gin.Context) {
	userID := c.Param("id")
	var req struct {
		TargetID string `json:"target_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_id required"})
		return
	}

	err := h.catching.ResolveReplacement(userID, req.TargetID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending creature"})
	case errors.Is(err, inventory.ErrCreatureNotFound):
		c.JSON(http.StatusConflict, gin.H{"error": "target not replaceable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Release handles DELETE /api/users/:id/catch/pending. The held
// creature flees.
func (h *CatchHandler) Release(c *gin.Context) {
	userID := c.Param("id")
	if err := h.catching.ReleasePending(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
