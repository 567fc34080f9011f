package rest

import (
	"errors"
	"net/http"

	"github.com/e9games/creaturebot/game/adventure"
	"github.com/gin-gonic/gin"
)

// AdventureHandler handles adventure and item REST endpoints.
type AdventureHandler struct {
	adventure *adventure.Service
}

// NewAdventureHandler creates a new AdventureHandler.
func NewAdventureHandler(a *adventure.Service) *AdventureHandler {
	return &AdventureHandler{adventure: a}
}

// Go handles POST /api/users/:id/adventure.
func (h *AdventureHandler) Go(c *gin.Context) {
	userID := c.Param("id")
	res, err := h.adventure.Go(userID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, adventure.ErrQuotaExhausted):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":            "adventure limit reached",
			"time_until_reset": res.TimeUntilReset.String(),
		})
	case errors.Is(err, adventure.ErrOnCooldown):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "adventure on cooldown"})
	case errors.Is(err, adventure.ErrNoCreatures):
		c.JSON(http.StatusConflict, gin.H{"error": "no creatures to send"})
	case errors.Is(err, adventure.ErrOnlyLockedCreature):
		c.JSON(http.StatusConflict, gin.H{"error": "only creature is locked"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// UseItem handles POST /api/users/:id/items/use.
func (h *AdventureHandler) UseItem(c *gin.Context) {
	userID := c.Param("id")
	var req struct {
		ItemIndex  *int   `json:"item_index" binding:"required"`
		CreatureID string `json:"creature_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_index and creature_id required"})
		return
	}

	res, err := h.adventure.UseItem(userID, *req.ItemIndex, req.CreatureID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, adventure.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
	case errors.Is(err, adventure.ErrCreatureNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "creature not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
