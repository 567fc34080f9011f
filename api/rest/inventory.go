package rest

import (
	"errors"
	"net/http"

	"github.com/e9games/creaturebot/game/inventory"
	"github.com/e9games/creaturebot/model"
	"github.com/gin-gonic/gin"
)

// InventoryHandler handles inventory REST endpoints.
type InventoryHandler struct {
	inventory *inventory.Service
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(inv *inventory.Service) *InventoryHandler {
	return &InventoryHandler{inventory: inv}
}

type inventoryView struct {
	UserID           string                `json:"user_id"`
	Creatures        []model.Creature      `json:"creatures"`
	Items            []model.AdventureItem `json:"items"`
	Badges           []model.GymBadge      `json:"badges"`
	LockedCreatureID string                `json:"locked_creature_id,omitempty"`
	TotalCaught      int                   `json:"total_caught"`
	TotalBattles     int                   `json:"total_battles"`
	TotalWins        int                   `json:"total_wins"`
}

// Get handles GET /api/users/:id/inventory.
func (h *InventoryHandler) Get(c *gin.Context) {
	userID := c.Param("id")
	inv, err := h.inventory.Get(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, inventoryView{
		UserID:           userID,
		Creatures:        inv.CreatureList(),
		Items:            inv.ItemList(),
		Badges:           inv.BadgeList(),
		LockedCreatureID: inv.LockedCreatureID,
		TotalCaught:      inv.TotalCaught,
		TotalBattles:     inv.TotalBattles,
		TotalWins:        inv.TotalWins,
	})
}

// Lock handles POST /api/users/:id/lock.
func (h *InventoryHandler) Lock(c *gin.Context) {
	userID := c.Param("id")
	var req struct {
		CreatureID string `json:"creature_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "creature_id required"})
		return
	}

	err := h.inventory.SetLockedCreature(userID, req.CreatureID)
	if errors.Is(err, inventory.ErrCreatureNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "creature not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "locked": req.CreatureID})
}

// Unlock handles DELETE /api/users/:id/lock.
func (h *InventoryHandler) Unlock(c *gin.Context) {
	userID := c.Param("id")
	if err := h.inventory.SetLockedCreature(userID, ""); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
