package rest

import (
	"errors"
	"net/http"

	"github.com/e9games/creaturebot/game/boss"
	"github.com/gin-gonic/gin"
)

// BossHandler handles world boss REST endpoints.
type BossHandler struct {
	boss *boss.Service
}

// NewBossHandler creates a new BossHandler.
func NewBossHandler(b *boss.Service) *BossHandler {
	return &BossHandler{boss: b}
}

// Spawn handles POST /api/boss/spawn.
func (h *BossHandler) Spawn(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	b, err := h.boss.Spawn(req.UserID)
	if errors.Is(err, boss.ErrBossActive) {
		c.JSON(http.StatusConflict, gin.H{"error": "a boss is already active"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, b)
}

// Status handles GET /api/boss.
func (h *BossHandler) Status(c *gin.Context) {
	status, err := h.boss.GetStatus(c.Request.Context())
	if errors.Is(err, boss.ErrNoBoss) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active boss"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// Attack handles POST /api/boss/attack.
func (h *BossHandler) Attack(c *gin.Context) {
	var req struct {
		UserID     string `json:"user_id" binding:"required"`
		CreatureID string `json:"creature_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and creature_id required"})
		return
	}

	res, err := h.boss.Attack(c.Request.Context(), req.UserID, req.CreatureID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, boss.ErrNoBoss):
		c.JSON(http.StatusNotFound, gin.H{"error": "no active boss"})
	case errors.Is(err, boss.ErrOnCooldown):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "attack on cooldown"})
	case errors.Is(err, boss.ErrNoLivingCreature):
		c.JSON(http.StatusConflict, gin.H{"error": "no living creatures"})
	case errors.Is(err, boss.ErrCreatureUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "creature unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
