package inventory

import (
	"errors"

	"github.com/e9games/creaturebot/model"
	"github.com/e9games/creaturebot/store"
	"go.uber.org/zap"
)

var (
	// ErrInventoryFull signals the roster cap; the caller decides on
	// replacement instead of treating this as a failure.
	ErrInventoryFull = errors.New("inventory: roster full")
	// ErrCreatureNotFound signals an unknown creature id.
	ErrCreatureNotFound = errors.New("inventory: creature not found")
)

// Service owns roster mutations. Every operation is a read-modify-write
// through the store, so the capacity and lock invariants hold under
// concurrent calls.
type Service struct {
	store  *store.Store
	logger *zap.Logger
}

// New creates the inventory service.
func New(st *store.Store, logger *zap.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Get returns the user's inventory, created lazily.
func (s *Service) Get(userID string) (*model.UserInventory, error) {
	return s.store.GetInventory(userID)
}

// AddCreature appends a creature if the roster has room and counts the
// catch. Returns ErrInventoryFull at capacity, leaving state untouched.
func (s *Service) AddCreature(userID string, c model.Creature) error {
	return s.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		list := inv.CreatureList()
		if len(list) >= model.MaxCreatures {
			return ErrInventoryFull
		}
		inv.SetCreatures(append(list, c))
		inv.TotalCaught++
		return nil
	})
}

// IsBetterTier reports whether any current creature has a strictly
// lower tier than the candidate, i.e. replacement is worth offering.
func IsBetterTier(candidate model.Creature, current []model.Creature) bool {
	return len(LowerTierCreatures(candidate, current)) > 0
}

// LowerTierCreatures filters the roster down to creatures of strictly
// lower tier than the candidate. Only these may be replaced; an equal
// or higher tier creature is never evicted.
func LowerTierCreatures(candidate model.Creature, current []model.Creature) []model.Creature {
	var out []model.Creature
	for _, c := range current {
		if c.Rarity.TierRank() < candidate.Rarity.TierRank() {
			out = append(out, c)
		}
	}
	return out
}

// ReplaceCreature swaps the creature with targetID for the new one in
// place and counts the catch. Tier eligibility was already narrowed by
// the caller's option list.
func (s *Service) ReplaceCreature(userID string, newCreature model.Creature, targetID string) error {
	return s.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		list := inv.CreatureList()
		for i, c := range list {
			if c.ID == targetID {
				list[i] = newCreature
				inv.SetCreatures(list)
				if inv.LockedCreatureID == targetID {
					inv.LockedCreatureID = ""
				}
				inv.TotalCaught++
				return nil
			}
		}
		return ErrCreatureNotFound
	})
}

// RemoveDeadCreature deletes a creature by id and clears the lock if it
// pointed at the removed one. Absent ids are a silent no-op so repeated
// death handling stays idempotent; removed reports whether anything
// changed.
func (s *Service) RemoveDeadCreature(userID, creatureID string) (removed *model.Creature, err error) {
	err = s.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		list := inv.CreatureList()
		for i, c := range list {
			if c.ID == creatureID {
				dead := c
				removed = &dead
				inv.SetCreatures(append(list[:i], list[i+1:]...))
				if inv.LockedCreatureID == creatureID {
					inv.LockedCreatureID = ""
				}
				return nil
			}
		}
		return nil
	})
	return removed, err
}

// LevelUpCreature applies the winner's level-up to the creature with
// the given id. Stats including current HP stay as the battle left
// them.
func (s *Service) LevelUpCreature(userID, creatureID string) error {
	return s.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		list := inv.CreatureList()
		for i := range list {
			if list[i].ID == creatureID {
				list[i].Level++
				list[i].Experience = 0
				inv.SetCreatures(list)
				return nil
			}
		}
		return ErrCreatureNotFound
	})
}

// ApplyBattleDamage writes a creature's post-battle HP back, removing
// it when dead.
func (s *Service) ApplyBattleDamage(userID, creatureID string, hp int) error {
	return s.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		list := inv.CreatureList()
		for i := range list {
			if list[i].ID == creatureID {
				if hp <= 0 {
					inv.SetCreatures(append(list[:i], list[i+1:]...))
					if inv.LockedCreatureID == creatureID {
						inv.LockedCreatureID = ""
					}
				} else {
					list[i].Stats.HP = hp
					inv.SetCreatures(list)
				}
				return nil
			}
		}
		return nil
	})
}

// SetLockedCreature marks one creature as exempt from adventure-loss
// rolls. An empty id clears the lock, which always succeeds.
func (s *Service) SetLockedCreature(userID, creatureID string) error {
	return s.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		if creatureID == "" {
			inv.LockedCreatureID = ""
			return nil
		}
		for _, c := range inv.CreatureList() {
			if c.ID == creatureID {
				inv.LockedCreatureID = creatureID
				return nil
			}
		}
		return ErrCreatureNotFound
	})
}

// StackItem merges an item into the inventory: an existing (name, type)
// entry gains quantity, otherwise the item is appended.
func StackItem(items []model.AdventureItem, item model.AdventureItem) []model.AdventureItem {
	for i := range items {
		if items[i].Name == item.Name && items[i].Type == item.Type {
			items[i].Quantity += item.Quantity
			return items
		}
	}
	return append(items, item)
}
