package rest

import (
	"errors"
	"net/http"

	"github.com/e9games/creaturebot/game/gym"
	"github.com/gin-gonic/gin"
)

// GymHandler handles gym battle REST endpoints.
type GymHandler struct {
	gym *gym.Service
}

// NewGymHandler creates a new GymHandler.
func NewGymHandler(g *gym.Service) *GymHandler {
	return &GymHandler{gym: g}
}

// Start handles POST /api/gym/start.
func (h *GymHandler) Start(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	g, err := h.gym.Start(req.UserID)
	if errors.Is(err, gym.ErrGymActive) {
		c.JSON(http.StatusConflict, gin.H{"error": "a gym battle is already active"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, g)
}

// Status handles GET /api/gym.
func (h *GymHandler) Status(c *gin.Context) {
	g, err := h.gym.GetStatus()
	if errors.Is(err, gym.ErrNoGym) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active gym battle"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, g)
}

// Attack handles POST /api/gym/attack.
func (h *GymHandler) Attack(c *gin.Context) {
	var req struct {
		UserID     string `json:"user_id" binding:"required"`
		CreatureID string `json:"creature_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and creature_id required"})
		return
	}

	res, err := h.gym.Attack(c.Request.Context(), req.UserID, req.CreatureID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, gym.ErrNoGym):
		c.JSON(http.StatusNotFound, gin.H{"error": "no active gym battle"})
	case errors.Is(err, gym.ErrGymExpired):
		c.JSON(http.StatusGone, gin.H{"error": "gym battle expired"})
	case errors.Is(err, gym.ErrOnCooldown):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "attack on cooldown"})
	case errors.Is(err, gym.ErrNoLivingCreature):
		c.JSON(http.StatusConflict, gin.H{"error": "no living creatures"})
	case errors.Is(err, gym.ErrCreatureUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "creature unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
