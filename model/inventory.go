package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// MaxCreatures is the hard roster capacity per user.
const MaxCreatures = 3

// UserInventory is the per-user game document: roster, item stacks,
// badges and quota counters in one row so every operation is a single
// read-modify-write.
type UserInventory struct {
	ID               int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           string         `gorm:"uniqueIndex;size:64;not null" json:"user_id"`
	Creatures        datatypes.JSON `json:"creatures"`
	Items            datatypes.JSON `json:"items"`
	Badges           datatypes.JSON `json:"badges"`
	TotalCaught      int            `gorm:"default:0" json:"total_caught"`
	TotalBattles     int            `gorm:"default:0" json:"total_battles"`
	TotalWins        int            `gorm:"default:0" json:"total_wins"`
	LockedCreatureID string         `gorm:"size:64" json:"locked_creature_id"`
	LastAdventureAt  time.Time      `json:"last_adventure_at"`
	CatchCount       int            `gorm:"default:0" json:"catch_count"`
	ChallengeCount   int            `gorm:"default:0" json:"challenge_count"`
	AdventureCount   int            `gorm:"default:0" json:"adventure_count"`
	QuotaResetAt     time.Time      `json:"quota_reset_at"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserInventory) TableName() string { return "user_inventories" }

// CreatureList decodes the roster. The capacity cap is re-applied on
// every read, not only at the add boundary.
func (u *UserInventory) CreatureList() []Creature {
	var out []Creature
	if len(u.Creatures) > 0 {
		_ = json.Unmarshal(u.Creatures, &out)
	}
	if len(out) > MaxCreatures {
		out = out[:MaxCreatures]
	}
	return out
}

// SetCreatures encodes the roster back, truncating past capacity.
func (u *UserInventory) SetCreatures(list []Creature) {
	if len(list) > MaxCreatures {
		list = list[:MaxCreatures]
	}
	if list == nil {
		list = []Creature{}
	}
	raw, _ := json.Marshal(list)
	u.Creatures = datatypes.JSON(raw)
}

// ItemList decodes the item stacks.
func (u *UserInventory) ItemList() []AdventureItem {
	var out []AdventureItem
	if len(u.Items) > 0 {
		_ = json.Unmarshal(u.Items, &out)
	}
	return out
}

// SetItems encodes the item stacks back.
func (u *UserInventory) SetItems(list []AdventureItem) {
	if list == nil {
		list = []AdventureItem{}
	}
	raw, _ := json.Marshal(list)
	u.Items = datatypes.JSON(raw)
}

// BadgeList decodes the gym badges.
func (u *UserInventory) BadgeList() []GymBadge {
	var out []GymBadge
	if len(u.Badges) > 0 {
		_ = json.Unmarshal(u.Badges, &out)
	}
	return out
}

// SetBadges encodes the gym badges back.
func (u *UserInventory) SetBadges(list []GymBadge) {
	if list == nil {
		list = []GymBadge{}
	}
	raw, _ := json.Marshal(list)
	u.Badges = datatypes.JSON(raw)
}

// PendingCreature holds a catch made while the roster was full, waiting
// for the user's replace-or-release decision. One per user at most.
type PendingCreature struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string         `gorm:"uniqueIndex;size:64;not null" json:"user_id"`
	Creature  datatypes.JSON `json:"creature"`
	ExpiresAt time.Time      `gorm:"index" json:"expires_at"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (PendingCreature) TableName() string { return "pending_creatures" }

// Decode returns the held creature.
func (p *PendingCreature) Decode() Creature {
	var c Creature
	_ = json.Unmarshal(p.Creature, &c)
	return c
}

// Encode stores the held creature.
func (p *PendingCreature) Encode(c Creature) {
	raw, _ := json.Marshal(c)
	p.Creature = datatypes.JSON(raw)
}
