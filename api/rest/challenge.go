package rest

import (
	"errors"
	"net/http"

	"github.com/e9games/creaturebot/game/challenge"
	"github.com/e9games/creaturebot/store"
	"github.com/gin-gonic/gin"
)

// ChallengeHandler handles PvP challenge REST endpoints.
type ChallengeHandler struct {
	challenge *challenge.Service
}

// NewChallengeHandler creates a new ChallengeHandler.
func NewChallengeHandler(ch *challenge.Service) *ChallengeHandler {
	return &ChallengeHandler{challenge: ch}
}

func challengeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, challenge.ErrSelfChallenge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot challenge yourself"})
	case errors.Is(err, challenge.ErrQuotaExhausted):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "challenge limit reached"})
	case errors.Is(err, challenge.ErrAlreadyInBattle):
		c.JSON(http.StatusConflict, gin.H{"error": "already in an active battle"})
	case errors.Is(err, challenge.ErrNoLivingCreature):
		c.JSON(http.StatusConflict, gin.H{"error": "no living creatures"})
	case errors.Is(err, challenge.ErrNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": "challenge is not in the expected state"})
	case errors.Is(err, challenge.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
	case errors.Is(err, challenge.ErrCreatureUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "creature unavailable"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "challenge not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Create handles POST /api/challenges.
func (h *ChallengeHandler) Create(c *gin.Context) {
	var req struct {
		ChallengerID string `json:"challenger_id" binding:"required"`
		OpponentID   string `json:"opponent_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "challenger_id and opponent_id required"})
		return
	}
	ch, err := h.challenge.Create(req.ChallengerID, req.OpponentID)
	if err != nil {
		challengeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ch)
}

// SelectCreature handles POST /api/challenges/:id/creature.
func (h *ChallengeHandler) SelectCreature(c *gin.Context) {
	challengeID := c.Param("id")
	var req struct {
		Side       string `json:"side" binding:"required"`
		UserID     string `json:"user_id" binding:"required"`
		CreatureID string `json:"creature_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "side, user_id and creature_id required"})
		return
	}
	side := challenge.Side(req.Side)
	if side != challenge.SideChallenger && side != challenge.SideOpponent {
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be challenger or opponent"})
		return
	}

	if err := h.challenge.SelectCreature(challengeID, side, req.UserID, req.CreatureID); err != nil {
		challengeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Accept handles POST /api/users/:id/challenge/accept.
func (h *ChallengeHandler) Accept(c *gin.Context) {
	userID := c.Param("id")
	ch, err := h.challenge.Accept(userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending challenge"})
		return
	}
	if err != nil {
		challengeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

// Decline handles POST /api/users/:id/challenge/decline.
func (h *ChallengeHandler) Decline(c *gin.Context) {
	userID := c.Param("id")
	err := h.challenge.Decline(userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending challenge"})
		return
	}
	if err != nil {
		challengeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Pending handles GET /api/users/:id/challenge.
func (h *ChallengeHandler) Pending(c *gin.Context) {
	userID := c.Param("id")
	ch, err := h.challenge.PendingFor(userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending challenge"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, ch)
}

// Resolve handles POST /api/challenges/:id/resolve.
func (h *ChallengeHandler) Resolve(c *gin.Context) {
	challengeID := c.Param("id")
	res, err := h.challenge.Resolve(challengeID)
	if err != nil {
		challengeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// BotBattle handles POST /api/users/:id/botbattle.
func (h *ChallengeHandler) BotBattle(c *gin.Context) {
	userID := c.Param("id")
	var req struct {
		CreatureID string `json:"creature_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "creature_id required"})
		return
	}
	res, err := h.challenge.BotBattle(userID, req.CreatureID)
	if err != nil {
		challengeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
