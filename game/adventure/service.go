package adventure

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/e9games/creaturebot/catalog"
	"github.com/e9games/creaturebot/config"
	"github.com/e9games/creaturebot/game/inventory"
	"github.com/e9games/creaturebot/game/limiter"
	"github.com/e9games/creaturebot/model"
	"github.com/e9games/creaturebot/store"
	"go.uber.org/zap"
)

var (
	// ErrQuotaExhausted rejects adventurers past the 12-hour limit.
	ErrQuotaExhausted = errors.New("adventure: quota exhausted")
	// ErrOnCooldown rejects back-to-back adventures.
	ErrOnCooldown = errors.New("adventure: on cooldown")
	// ErrNoCreatures rejects an empty roster.
	ErrNoCreatures = errors.New("adventure: no creatures to send")
	// ErrOnlyLockedCreature rejects an adventure when the sole roster
	// creature is protected and nothing can take the risk.
	ErrOnlyLockedCreature = errors.New("adventure: only creature is locked")
	// ErrItemNotFound rejects a bad item index.
	ErrItemNotFound = errors.New("adventure: item not found")
	// ErrCreatureNotFound rejects an item target not in the roster.
	ErrCreatureNotFound = errors.New("adventure: creature not found")
)

// Result reports one adventure outcome.
type Result struct {
	Remaining      int                  `json:"remaining"`
	ItemFound      *model.AdventureItem `json:"item_found,omitempty"`
	CreatureLost   *model.Creature      `json:"creature_lost,omitempty"`
	TimeUntilReset time.Duration        `json:"time_until_reset,omitempty"`
}

// ItemUse reports applying one item to a creature.
type ItemUse struct {
	Item         model.AdventureItem `json:"item"`
	CreatureName string              `json:"creature_name"`
	StatRaised   string              `json:"stat_raised"`
	Amount       int                 `json:"amount"`
	RemainingQty int                 `json:"remaining_qty"`
}

// Service sends creatures on adventures: a 15% item drop against a 20%
// chance of losing a random unprotected creature. Lock protects exactly
// one creature from loss rolls, never from battle deaths.
type Service struct {
	store     *store.Store
	inventory *inventory.Service
	limiter   *limiter.Service
	cfg       config.GameConfig
	logger    *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates the adventure service. rng may be nil outside tests.
func New(st *store.Store, inv *inventory.Service, lim *limiter.Service, cfg config.GameConfig, logger *zap.Logger, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{store: st, inventory: inv, limiter: lim, cfg: cfg, logger: logger, rng: rng}
}

// Go sends the user's creatures out. The quota use and cooldown are
// charged before any roll so an empty-handed trip still counts.
func (s *Service) Go(userID string) (*Result, error) {
	status, err := s.limiter.CanUse(userID, limiter.KindAdventure)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		return &Result{TimeUntilReset: status.TimeUntilReset}, ErrQuotaExhausted
	}

	res := &Result{Remaining: status.Remaining - 1}
	now := time.Now()

	err = s.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		if wait := s.limiter.AdventureCooldown(inv, now); wait > 0 {
			return ErrOnCooldown
		}
		creatures := inv.CreatureList()
		if len(creatures) == 0 {
			return ErrNoCreatures
		}
		if inv.LockedCreatureID != "" {
			unlocked := 0
			for _, c := range creatures {
				if c.ID != inv.LockedCreatureID {
					unlocked++
				}
			}
			if unlocked == 0 {
				return ErrOnlyLockedCreature
			}
		}

		inv.LastAdventureAt = now
		inv.AdventureCount++

		s.rngMu.Lock()
		item := catalog.DrawItem(s.rng, s.cfg.ItemDropPercent)
		lossRoll := s.rng.Float64() * 100
		lossPick := s.rng.Intn(len(creatures))
		s.rngMu.Unlock()

		if item != nil {
			item.Quantity = 1
			inv.SetItems(inventory.StackItem(inv.ItemList(), *item))
			res.ItemFound = item
		}

		if lossRoll < float64(s.cfg.CreatureLossPct) {
			if lost := pickLoss(creatures, inv.LockedCreatureID, lossPick); lost != nil {
				remaining := make([]model.Creature, 0, len(creatures)-1)
				for _, c := range creatures {
					if c.ID != lost.ID {
						remaining = append(remaining, c)
					}
				}
				inv.SetCreatures(remaining)
				res.CreatureLost = lost
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("adventure finished",
		zap.String("user", userID),
		zap.Bool("item", res.ItemFound != nil),
		zap.Bool("loss", res.CreatureLost != nil))
	return res, nil
}

// pickLoss chooses the casualty among unprotected creatures. pick
// indexes the full roster; a protected pick slides to the next
// unprotected slot.
func pickLoss(creatures []model.Creature, lockedID string, pick int) *model.Creature {
	candidates := make([]model.Creature, 0, len(creatures))
	for _, c := range creatures {
		if c.ID != lockedID {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	lost := candidates[pick%len(candidates)]
	return &lost
}

// UseItem applies the item at itemIndex to the given creature. Weapons
// raise attack, armor raises defense, food heals up to MaxHP. The use
// is atomic: a bad target consumes nothing.
func (s *Service) UseItem(userID string, itemIndex int, creatureID string) (*ItemUse, error) {
	res := &ItemUse{}
	err := s.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		items := inv.ItemList()
		if itemIndex < 0 || itemIndex >= len(items) {
			return ErrItemNotFound
		}
		creatures := inv.CreatureList()
		target := -1
		for i := range creatures {
			if creatures[i].ID == creatureID {
				target = i
				break
			}
		}
		if target < 0 {
			return ErrCreatureNotFound
		}

		item := items[itemIndex]
		res.Item = item
		res.CreatureName = creatures[target].Name

		switch item.Type {
		case model.ItemWeapon:
			creatures[target].Stats.Attack += item.StatBonus
			res.StatRaised = "attack"
			res.Amount = item.StatBonus
		case model.ItemArmor:
			creatures[target].Stats.Defense += item.StatBonus
			res.StatRaised = "defense"
			res.Amount = item.StatBonus
		case model.ItemFood:
			healed := item.StatBonus
			room := creatures[target].Stats.MaxHP - creatures[target].Stats.HP
			if healed > room {
				healed = room
			}
			creatures[target].Stats.HP += healed
			res.StatRaised = "hp"
			res.Amount = healed
		default:
			return ErrItemNotFound
		}

		items[itemIndex].Quantity--
		res.RemainingQty = items[itemIndex].Quantity
		if items[itemIndex].Quantity <= 0 {
			items = append(items[:itemIndex], items[itemIndex+1:]...)
		}
		inv.SetItems(items)
		inv.SetCreatures(creatures)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Lock protects one creature from adventure loss rolls.
func (s *Service) Lock(userID, creatureID string) error {
	return s.inventory.SetLockedCreature(userID, creatureID)
}

// Unlock clears the protection.
func (s *Service) Unlock(userID string) error {
	return s.inventory.SetLockedCreature(userID, "")
}
