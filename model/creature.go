package model

import "time"

// Rarity is the ordinal power classification of a creature.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityMythical  Rarity = "mythical"
)

var tierRanks = map[Rarity]int{
	RarityCommon:    1,
	RarityUncommon:  2,
	RarityRare:      3,
	RarityEpic:      4,
	RarityLegendary: 5,
	RarityMythical:  6,
}

// TierRank returns the ordinal rank of r, higher is rarer. Unknown
// rarities rank 0, below common.
func (r Rarity) TierRank() int {
	return tierRanks[r]
}

// Stats holds a creature's combat stats. HP is mutable by battles and
// items; MaxHP, Attack and Defense change only through item bonuses.
type Stats struct {
	HP      int `json:"hp"`
	MaxHP   int `json:"max_hp"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
}

// Creature is one caught creature in a user's roster. Stored inside the
// owning UserInventory row as JSON, never as its own table row.
type Creature struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Rarity     Rarity    `json:"rarity"`
	Level      int       `json:"level"`
	Experience int       `json:"experience"`
	Stats      Stats     `json:"stats"`
	CaughtAt   time.Time `json:"caught_at"`
}

// Alive reports whether the creature can still fight.
func (c *Creature) Alive() bool {
	return c.Stats.HP > 0
}

// ItemType classifies adventure items by the stat they affect.
type ItemType string

const (
	ItemWeapon ItemType = "weapon"
	ItemArmor  ItemType = "armor"
	ItemFood   ItemType = "food"
)

// AdventureItem is one stacked item entry. The (Name, Type) pair is
// unique within an inventory; duplicates increment Quantity.
type AdventureItem struct {
	Name        string   `json:"name"`
	Type        ItemType `json:"type"`
	StatBonus   int      `json:"stat_bonus"`
	Description string   `json:"description"`
	Emoji       string   `json:"emoji"`
	Quantity    int      `json:"quantity"`
}

// GymBadge records a completed gym for a user.
type GymBadge struct {
	ID        string    `json:"id"`
	GymID     string    `json:"gym_id"`
	Name      string    `json:"name"`
	AwardedAt time.Time `json:"awarded_at"`
}
