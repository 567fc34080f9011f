package catching

import (
	"math/rand"
	"sync"
	"time"

	"github.com/e9games/creaturebot/catalog"
	"github.com/e9games/creaturebot/config"
	"github.com/e9games/creaturebot/game/inventory"
	"github.com/e9games/creaturebot/game/limiter"
	"github.com/e9games/creaturebot/model"
	"github.com/e9games/creaturebot/scheduler"
	"github.com/e9games/creaturebot/store"
	"go.uber.org/zap"
)

// baseCatchChance caps every catch roll; common creatures' higher
// catch rates are clipped down to it.
const baseCatchChance = 50

// Result is the outcome of one catch attempt.
type Result struct {
	Allowed        bool            `json:"allowed"`
	Remaining      int             `json:"remaining"`
	TimeUntilReset time.Duration   `json:"time_until_reset"`
	Creature       *model.Creature `json:"creature,omitempty"`
	Caught         bool            `json:"caught"`
	InventoryFull  bool            `json:"inventory_full"`
	IsBetterTier   bool            `json:"is_better_tier"`
	// LowerTierOptions are the only roster creatures the new catch may
	// replace.
	LowerTierOptions []model.Creature `json:"lower_tier_options,omitempty"`
}

// Service implements the catch flow: quota check, weighted draw,
// success roll, then add or the replace-or-release holding pattern.
type Service struct {
	store     *store.Store
	inventory *inventory.Service
	limiter   *limiter.Service
	sched     *scheduler.Scheduler
	cfg       config.GameConfig
	logger    *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates the catching service. rng may be nil outside tests.
func New(st *store.Store, inv *inventory.Service, lim *limiter.Service, sched *scheduler.Scheduler, cfg config.GameConfig, logger *zap.Logger, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		store: st, inventory: inv, limiter: lim, sched: sched,
		cfg: cfg, logger: logger, rng: rng,
	}
}

func (s *Service) roll(f func(rng *rand.Rand)) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	f(s.rng)
}

// AttemptCatch runs one catch. The quota use is charged whether or not
// the creature is caught.
func (s *Service) AttemptCatch(userID string) (*Result, error) {
	status, err := s.limiter.Charge(userID, limiter.KindCatch)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Allowed:        status.Allowed,
		Remaining:      status.Remaining,
		TimeUntilReset: status.TimeUntilReset,
	}
	if !status.Allowed {
		return res, nil
	}

	var tpl catalog.Template
	var success bool
	s.roll(func(rng *rand.Rand) {
		tpl = catalog.DrawCreature(rng)
		chance := tpl.CatchRate
		if chance > baseCatchChance {
			chance = baseCatchChance
		}
		success = rng.Float64()*100 < float64(chance)
	})

	caught := catalog.Instantiate(tpl)
	res.Creature = &caught
	if !success {
		return res, nil
	}

	err = s.inventory.AddCreature(userID, caught)
	if err == nil {
		res.Caught = true
		return res, nil
	}
	if err != inventory.ErrInventoryFull {
		return nil, err
	}

	// Full roster. Offer replacement only when the catch outranks
	// something; otherwise it flees immediately.
	inv, err := s.inventory.Get(userID)
	if err != nil {
		return nil, err
	}
	current := inv.CreatureList()
	res.Caught = true
	res.InventoryFull = true
	res.LowerTierOptions = inventory.LowerTierCreatures(caught, current)
	res.IsBetterTier = len(res.LowerTierOptions) > 0
	if !res.IsBetterTier {
		return res, nil
	}

	pending := &model.PendingCreature{
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.cfg.PendingTimeout),
	}
	pending.Encode(caught)
	if err := s.store.SavePendingCreature(pending); err != nil {
		return nil, err
	}
	s.sched.AddDelay("pending:"+userID, s.cfg.PendingTimeout, func() {
		if err := s.ReleasePending(userID); err != nil {
			s.logger.Warn("pending release failed",
				zap.String("user", userID), zap.Error(err))
		}
	})
	return res, nil
}

// PendingCreature returns the user's held catch if the decision window
// is still open. Expired holds are released lazily here.
func (s *Service) PendingCreature(userID string) (*model.Creature, error) {
	p, err := s.store.GetPendingCreature(userID)
	if err != nil {
		return nil, err
	}
	if time.Now().After(p.ExpiresAt) {
		_ = s.ReleasePending(userID)
		return nil, store.ErrNotFound
	}
	c := p.Decode()
	return &c, nil
}

// ResolveReplacement swaps the held catch for the chosen roster
// creature. The target must still be strictly lower tier; the roster
// may have changed since the offer.
func (s *Service) ResolveReplacement(userID, targetID string) error {
	p, err := s.store.GetPendingCreature(userID)
	if err != nil {
		return err
	}
	caught := p.Decode()

	inv, err := s.inventory.Get(userID)
	if err != nil {
		return err
	}
	eligible := false
	for _, c := range inventory.LowerTierCreatures(caught, inv.CreatureList()) {
		if c.ID == targetID {
			eligible = true
			break
		}
	}
	if !eligible {
		return inventory.ErrCreatureNotFound
	}

	if err := s.inventory.ReplaceCreature(userID, caught, targetID); err != nil {
		return err
	}
	s.sched.Remove("pending:" + userID)
	return s.store.DeletePendingCreature(userID)
}

// ReleasePending drops the held catch; the creature flees. Idempotent.
func (s *Service) ReleasePending(userID string) error {
	s.sched.Remove("pending:" + userID)
	return s.store.DeletePendingCreature(userID)
}

// SweepExpiredPending releases all holds past their deadline. Runs as a
// scheduler ticker as a backstop for missed delay callbacks.
func (s *Service) SweepExpiredPending() {
	expired, err := s.store.ExpiredPendingCreatures(time.Now())
	if err != nil {
		s.logger.Warn("pending sweep failed", zap.Error(err))
		return
	}
	for _, p := range expired {
		if err := s.ReleasePending(p.UserID); err != nil {
			s.logger.Warn("pending release failed",
				zap.String("user", p.UserID), zap.Error(err))
		}
	}
}
