package gym

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/e9games/creaturebot/catalog"
	"github.com/e9games/creaturebot/config"
	"github.com/e9games/creaturebot/game/battle"
	"github.com/e9games/creaturebot/game/inventory"
	"github.com/e9games/creaturebot/game/limiter"
	"github.com/e9games/creaturebot/model"
	"github.com/e9games/creaturebot/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// A gym runs exactly three rounds.
const finalRound = 3

var (
	// ErrGymActive rejects starting a gym while one is running.
	ErrGymActive = errors.New("gym: a gym battle is already active")
	// ErrNoGym signals no active gym.
	ErrNoGym = errors.New("gym: no active gym battle")
	// ErrGymExpired signals the deadline passed before the attack.
	ErrGymExpired = errors.New("gym: battle expired")
	// ErrOnCooldown rejects an attack inside the cooldown window.
	ErrOnCooldown = errors.New("gym: attack on cooldown")
	// ErrNoLivingCreature rejects attackers with no living creature.
	ErrNoLivingCreature = errors.New("gym: no living creatures")
	// ErrCreatureUnavailable rejects a pick that is not a living roster
	// creature.
	ErrCreatureUnavailable = errors.New("gym: creature unavailable")
)

// AttackResult reports one gym attack and what it triggered.
type AttackResult struct {
	GymID        string          `json:"gym_id"`
	Round        int             `json:"round"`
	BossName     string          `json:"boss_name"`
	Exchange     battle.Exchange `json:"exchange"`
	CreatureDied bool            `json:"creature_died"`
	RoundCleared bool            `json:"round_cleared"`
	GymCompleted bool            `json:"gym_completed"`
	// BadgesAwarded lists the users who received a badge when the final
	// round fell. Empty otherwise.
	BadgesAwarded []string `json:"badges_awarded,omitempty"`
}

// Service runs community gym battles: three escalating rounds under a
// shared 48-hour deadline. Only final-round attackers earn the badge.
type Service struct {
	store     *store.Store
	inventory *inventory.Service
	limiter   *limiter.Service
	cfg       config.GameConfig
	logger    *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates the gym service. rng may be nil outside tests.
func New(st *store.Store, inv *inventory.Service, lim *limiter.Service, cfg config.GameConfig, logger *zap.Logger, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{store: st, inventory: inv, limiter: lim, cfg: cfg, logger: logger, rng: rng}
}

// Start opens a new gym battle at round 1. Only one may be active.
func (s *Service) Start(userID string) (*model.GymBattle, error) {
	now := time.Now()

	s.rngMu.Lock()
	boss := catalog.NewGymBoss(s.rng, 1)
	s.rngMu.Unlock()

	g := &model.GymBattle{
		ID:           uuid.New().String(),
		Status:       model.GymActive,
		CurrentRound: 1,
		CreatedBy:    userID,
		StartedAt:    now,
		Deadline:     now.Add(s.cfg.GymDuration),
	}
	g.SetRounds([]model.GymRound{{
		RoundNumber: 1,
		Boss:        boss,
		Status:      model.RoundActive,
		StartedAt:   now,
	}})

	created, err := s.store.StartGym(g)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrGymActive
	}
	s.logger.Info("gym started",
		zap.String("gym", g.ID), zap.String("creator", userID),
		zap.Time("deadline", g.Deadline))
	return g, nil
}

// GetStatus returns the active gym. A gym past its deadline is marked
// failed on read before being reported.
func (s *Service) GetStatus() (*model.GymBattle, error) {
	g, err := s.store.GetActiveGym()
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoGym
	}
	if err != nil {
		return nil, err
	}
	if time.Now().After(g.Deadline) {
		if err := s.expireActive(); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return s.store.GetGym(g.ID)
	}
	return g, nil
}

func (s *Service) expireActive() error {
	return s.store.UpdateActiveGym(func(g *model.GymBattle) error {
		now := time.Now()
		g.Status = model.GymFailed
		g.EndedAt = &now
		return nil
	})
}

// SweepExpired marks deadline-passed gyms as failed. Ticker backstop
// for gyms nobody reads or attacks.
func (s *Service) SweepExpired() {
	g, err := s.store.GetActiveGym()
	if err != nil {
		return
	}
	if time.Now().After(g.Deadline) {
		if err := s.expireActive(); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("gym expiry sweep failed", zap.String("gym", g.ID), zap.Error(err))
		}
	}
}

// Attack runs one exchange against the current round's boss. Defeating
// the round 1 or 2 boss advances the gym; defeating the final boss
// completes it and awards badges to everyone who attacked round 3.
func (s *Service) Attack(ctx context.Context, userID, creatureID string) (*AttackResult, error) {
	gate, err := s.limiter.CanAttack(ctx, userID, model.AttackGym)
	if err != nil {
		return nil, err
	}
	if !gate.Allowed {
		if gate.Reason == "no living creatures" {
			return nil, ErrNoLivingCreature
		}
		return nil, ErrOnCooldown
	}

	inv, err := s.inventory.Get(userID)
	if err != nil {
		return nil, err
	}
	var attacker *model.Creature
	for _, c := range inv.CreatureList() {
		if c.ID == creatureID && c.Alive() {
			cc := c
			attacker = &cc
			break
		}
	}
	if attacker == nil {
		return nil, ErrCreatureUnavailable
	}

	s.rngMu.Lock()
	engine := battle.New(battle.Config{RNG: rand.New(rand.NewSource(s.rng.Int63()))})
	nextBossSeed := s.rng.Int63()
	s.rngMu.Unlock()

	res := &AttackResult{}
	err = s.store.UpdateActiveGym(func(g *model.GymBattle) error {
		now := time.Now()
		if now.After(g.Deadline) {
			g.Status = model.GymFailed
			g.EndedAt = &now
			return nil // persist the expiry, report below
		}

		rounds := g.RoundList()
		idx := g.CurrentRound - 1
		if idx < 0 || idx >= len(rounds) || rounds[idx].Status != model.RoundActive {
			return ErrNoGym
		}

		res.GymID = g.ID
		res.Round = g.CurrentRound
		res.BossName = rounds[idx].Boss.Name
		res.Exchange = engine.BossExchange(attacker, &rounds[idx].Boss.HP, rounds[idx].Boss.Defense)

		if res.Exchange.BossDefeated {
			res.RoundCleared = true
			rounds[idx].Status = model.RoundCompleted
			rounds[idx].EndedAt = &now

			if g.CurrentRound < finalRound {
				g.CurrentRound++
				rounds = append(rounds, model.GymRound{
					RoundNumber: g.CurrentRound,
					Boss:        catalog.NewGymBoss(rand.New(rand.NewSource(nextBossSeed)), g.CurrentRound),
					Status:      model.RoundActive,
					StartedAt:   now,
				})
			} else {
				res.GymCompleted = true
				g.Status = model.GymCompleted
				g.EndedAt = &now
			}
		}
		g.SetRounds(rounds)
		return nil
	})
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, ErrNoGym) {
		return nil, ErrNoGym
	}
	if err != nil {
		return nil, err
	}
	if res.GymID == "" {
		// The update only recorded the deadline expiry.
		return nil, ErrGymExpired
	}
	res.CreatureDied = res.Exchange.CreatureDied

	if err := s.limiter.MarkAttack(ctx, userID, model.AttackGym); err != nil {
		s.logger.Warn("gym cooldown mark failed", zap.String("user", userID), zap.Error(err))
	}

	if res.CreatureDied {
		if _, err := s.inventory.RemoveDeadCreature(userID, attacker.ID); err != nil {
			return nil, err
		}
	} else if err := s.inventory.ApplyBattleDamage(userID, attacker.ID, attacker.Stats.HP); err != nil {
		return nil, err
	}

	if err := s.store.LogGymAttack(&model.GymAttackResult{
		GymID:        res.GymID,
		Round:        res.Round,
		UserID:       userID,
		CreatureID:   attacker.ID,
		Damage:       res.Exchange.Damage,
		CounterDmg:   res.Exchange.Counter,
		CreatureDied: res.CreatureDied,
	}); err != nil {
		return nil, err
	}
	if err := s.store.TouchAttackStats(userID, model.AttackGym, res.Exchange.Damage, time.Now()); err != nil {
		return nil, err
	}

	// Badge eligibility is final-round attacks only, the killing blow
	// included.
	if res.Round == finalRound {
		if err := s.store.AddGymParticipant(res.GymID, userID); err != nil {
			return nil, err
		}
	}

	if res.GymCompleted {
		awarded, err := s.awardBadges(res.GymID)
		if err != nil {
			return nil, err
		}
		res.BadgesAwarded = awarded
		s.logger.Info("gym completed",
			zap.String("gym", res.GymID), zap.String("finisher", userID),
			zap.Int("badges", len(awarded)))
	}
	return res, nil
}

// awardBadges grants one badge per final-round participant.
func (s *Service) awardBadges(gymID string) ([]string, error) {
	users, err := s.store.GymParticipants(gymID)
	if err != nil {
		return nil, err
	}
	for _, userID := range users {
		err := s.store.UpdateUser(userID, func(inv *model.UserInventory) error {
			inv.SetBadges(append(inv.BadgeList(), model.GymBadge{
				ID:        uuid.New().String(),
				GymID:     gymID,
				Name:      "Gym Badge",
				AwardedAt: time.Now(),
			}))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return users, nil
}
