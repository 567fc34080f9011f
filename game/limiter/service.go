package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/e9games/creaturebot/cache"
	"github.com/e9games/creaturebot/config"
	"github.com/e9games/creaturebot/model"
	"github.com/e9games/creaturebot/store"
	"go.uber.org/zap"
)

// Kind is a quota-limited activity.
type Kind string

const (
	KindCatch     Kind = "catch"
	KindChallenge Kind = "challenge"
	KindAdventure Kind = "adventure"
)

// Status is the limiter's answer for one activity.
type Status struct {
	Allowed        bool          `json:"allowed"`
	Remaining      int           `json:"remaining"`
	TimeUntilReset time.Duration `json:"time_until_reset"`
}

// AttackGate is the answer for boss/gym attack permission.
type AttackGate struct {
	Allowed           bool          `json:"allowed"`
	CooldownRemaining time.Duration `json:"cooldown_remaining"`
	Reason            string        `json:"reason,omitempty"`
}

// Service tracks rolling usage quotas and attack cooldowns. Quota
// counters live on the inventory row and reset lazily; cooldowns are
// cache keys with TTLs.
type Service struct {
	store  *store.Store
	cache  cache.Cache
	cfg    config.GameConfig
	logger *zap.Logger
}

// New creates the limiter service.
func New(st *store.Store, c cache.Cache, cfg config.GameConfig, logger *zap.Logger) *Service {
	return &Service{store: st, cache: c, cfg: cfg, logger: logger}
}

func (s *Service) limit(kind Kind) int {
	switch kind {
	case KindCatch:
		return s.cfg.CatchLimit
	case KindChallenge:
		return s.cfg.ChallengeLimit
	default:
		return s.cfg.AdventureLimit
	}
}

func count(inv *model.UserInventory, kind Kind) int {
	switch kind {
	case KindCatch:
		return inv.CatchCount
	case KindChallenge:
		return inv.ChallengeCount
	default:
		return inv.AdventureCount
	}
}

// resetIfDue zeroes all three counters wholesale once the window has
// elapsed. Runs before any evaluation, so a stale window never blocks.
func (s *Service) resetIfDue(inv *model.UserInventory, now time.Time) bool {
	if now.Sub(inv.QuotaResetAt) < s.cfg.QuotaWindow {
		return false
	}
	inv.CatchCount = 0
	inv.ChallengeCount = 0
	inv.AdventureCount = 0
	inv.QuotaResetAt = now
	return true
}

// CanUse reports whether the user may perform kind right now, with the
// remaining allowance and time until the window resets.
func (s *Service) CanUse(userID string, kind Kind) (Status, error) {
	var st Status
	now := time.Now()
	err := s.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		s.resetIfDue(inv, now)
		remaining := s.limit(kind) - count(inv, kind)
		if remaining < 0 {
			remaining = 0
		}
		st = Status{
			Allowed:        remaining > 0,
			Remaining:      remaining,
			TimeUntilReset: inv.QuotaResetAt.Add(s.cfg.QuotaWindow).Sub(now),
		}
		return nil
	})
	return st, err
}

// Charge checks the allowance and spends one use of kind in a single
// user write, so two requests racing for the last slot cannot both
// pass. When the quota is exhausted nothing is charged and Allowed is
// false.
func (s *Service) Charge(userID string, kind Kind) (Status, error) {
	var st Status
	now := time.Now()
	err := s.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		s.resetIfDue(inv, now)
		st.TimeUntilReset = inv.QuotaResetAt.Add(s.cfg.QuotaWindow).Sub(now)
		remaining := s.limit(kind) - count(inv, kind)
		if remaining <= 0 {
			return nil
		}
		switch kind {
		case KindCatch:
			inv.CatchCount++
		case KindChallenge:
			inv.ChallengeCount++
		default:
			inv.AdventureCount++
		}
		st.Allowed = true
		st.Remaining = remaining - 1
		return nil
	})
	return st, err
}

// Increment charges one use of kind. The lazy reset runs first so the
// charge lands in the current window.
func (s *Service) Increment(userID string, kind Kind) error {
	now := time.Now()
	return s.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		s.resetIfDue(inv, now)
		switch kind {
		case KindCatch:
			inv.CatchCount++
		case KindChallenge:
			inv.ChallengeCount++
		default:
			inv.AdventureCount++
		}
		return nil
	})
}

// Decrement refunds one use of kind, flooring at zero. Declining a
// challenge gives the challenger their quota slot back.
func (s *Service) Decrement(userID string, kind Kind) error {
	return s.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		switch kind {
		case KindCatch:
			if inv.CatchCount > 0 {
				inv.CatchCount--
			}
		case KindChallenge:
			if inv.ChallengeCount > 0 {
				inv.ChallengeCount--
			}
		default:
			if inv.AdventureCount > 0 {
				inv.AdventureCount--
			}
		}
		return nil
	})
}

func cooldownKey(userID string, kind model.AttackKind) string {
	return fmt.Sprintf("cooldown:%s:%s", kind, userID)
}

// CanAttack gates boss/gym attacks: the user needs at least one living
// creature and no running cooldown. Attack counts are never enforced.
func (s *Service) CanAttack(ctx context.Context, userID string, kind model.AttackKind) (AttackGate, error) {
	inv, err := s.store.GetInventory(userID)
	if err != nil {
		return AttackGate{}, err
	}
	alive := false
	for _, c := range inv.CreatureList() {
		if c.Alive() {
			alive = true
			break
		}
	}
	if !alive {
		return AttackGate{Reason: "no living creatures"}, nil
	}

	remaining, err := s.cache.TTL(ctx, cooldownKey(userID, kind))
	if err != nil {
		return AttackGate{}, err
	}
	if remaining > 0 {
		return AttackGate{CooldownRemaining: remaining, Reason: "attack cooldown"}, nil
	}
	return AttackGate{Allowed: true}, nil
}

// MarkAttack starts the attack cooldown for kind.
func (s *Service) MarkAttack(ctx context.Context, userID string, kind model.AttackKind) error {
	return s.cache.Set(ctx, cooldownKey(userID, kind), "1", s.cfg.AttackCooldown)
}

// AdventureCooldown reports the remaining wait of the short adventure
// cooldown, independent of the 12-hour quota.
func (s *Service) AdventureCooldown(inv *model.UserInventory, now time.Time) time.Duration {
	wait := inv.LastAdventureAt.Add(s.cfg.AdventureCooldown).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}
