package rest

import (
	"net/http"
	"time"

	"github.com/e9games/creaturebot/config"
	"github.com/e9games/creaturebot/middleware"
	"github.com/e9games/creaturebot/model"
	"github.com/e9games/creaturebot/scheduler"
	"github.com/e9games/creaturebot/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by the AdminOnly middleware.
type AdminHandler struct {
	store    *store.Store
	sched    *scheduler.Scheduler
	security config.SecurityConfig
	logger   *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(st *store.Store, sched *scheduler.Scheduler, sec config.SecurityConfig, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{store: st, sched: sched, security: sec, logger: logger}
}

// MintToken issues a service JWT for a gateway, signed with the
// configured secret and TTL.
// POST /api/admin/token
func (h *AdminHandler) MintToken(c *gin.Context) {
	var req struct {
		Service string `json:"service" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service required"})
		return
	}
	if h.security.JWTSecret == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "jwt secret not configured"})
		return
	}
	token, err := middleware.GenerateToken(req.Service, h.security.JWTSecret, h.security.JWTTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token signing failed"})
		return
	}
	h.logger.Info("admin minted service token", zap.String("service", req.Service))
	c.JSON(http.StatusCreated, gin.H{
		"token":      token,
		"expires_in": int(h.security.JWTTTL.Seconds()),
	})
}

// ResetInventory wipes a user's inventory row; the next action lazily
// recreates it empty.
// POST /api/admin/users/:id/reset-inventory
func (h *AdminHandler) ResetInventory(c *gin.Context) {
	userID := c.Param("id")
	if err := h.store.DeleteInventory(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	h.logger.Info("admin reset inventory", zap.String("user", userID))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ResetAll wipes everything tied to a user: inventory, held catch and
// challenge records on either side.
// POST /api/admin/users/:id/reset-all
func (h *AdminHandler) ResetAll(c *gin.Context) {
	userID := c.Param("id")
	if err := h.store.DeleteInventory(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if err := h.store.DeletePendingCreature(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if err := h.store.DB().
		Where("challenger_id = ? OR opponent_id = ?", userID, userID).
		Delete(&model.Challenge{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if err := h.store.DB().
		Where("user_id = ?", userID).
		Delete(&model.UserAttackStats{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	h.logger.Info("admin reset all", zap.String("user", userID))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ResetQuotas zeroes a user's catch, challenge and adventure counters
// and restarts their 12-hour window.
// POST /api/admin/users/:id/reset-quotas
func (h *AdminHandler) ResetQuotas(c *gin.Context) {
	userID := c.Param("id")
	err := h.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		inv.CatchCount = 0
		inv.ChallengeCount = 0
		inv.AdventureCount = 0
		inv.QuotaResetAt = time.Now()
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	h.logger.Info("admin reset quotas", zap.String("user", userID))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ResetCatch zeroes only the user's catch counter, leaving the other
// quotas and the window untouched.
// POST /api/admin/users/:id/reset-catch
func (h *AdminHandler) ResetCatch(c *gin.Context) {
	userID := c.Param("id")
	err := h.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		inv.CatchCount = 0
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	h.logger.Info("admin reset catch count", zap.String("user", userID))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ResetBadges clears a user's gym badges.
// POST /api/admin/users/:id/reset-badges
func (h *AdminHandler) ResetBadges(c *gin.Context) {
	userID := c.Param("id")
	err := h.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		inv.SetBadges(nil)
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	h.logger.Info("admin reset badges", zap.String("user", userID))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GrantBadges awards a gym badge to each listed user, e.g. to backfill
// a round that completed during an outage.
// POST /api/admin/badges/grant
func (h *AdminHandler) GrantBadges(c *gin.Context) {
	var req struct {
		GymID   string   `json:"gym_id"`
		UserIDs []string `json:"user_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_ids required"})
		return
	}

	granted := 0
	for _, userID := range req.UserIDs {
		err := h.store.UpdateUser(userID, func(inv *model.UserInventory) error {
			inv.SetBadges(append(inv.BadgeList(), model.GymBadge{
				ID:        uuid.New().String(),
				GymID:     req.GymID,
				Name:      "Gym Badge",
				AwardedAt: time.Now(),
			}))
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error", "granted": granted})
			return
		}
		granted++
	}
	h.logger.Info("admin granted badges",
		zap.String("gym", req.GymID), zap.Int("count", granted))
	c.JSON(http.StatusOK, gin.H{"ok": true, "granted": granted})
}

// ClearChallenges deletes every challenge record regardless of status.
// DELETE /api/admin/challenges
func (h *AdminHandler) ClearChallenges(c *gin.Context) {
	n, err := h.store.DeleteChallengesWithStatus(
		model.ChallengePending, model.ChallengeAccepted,
		model.ChallengeDeclined, model.ChallengeCompleted, model.ChallengeExpired,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	h.logger.Info("admin cleared challenges", zap.Int64("deleted", n))
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": n})
}

// SchedulerTasks returns names of all registered ticker tasks.
// GET /api/admin/scheduler
func (h *AdminHandler) SchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.ListTickers()})
}
