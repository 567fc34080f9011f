package boss

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/e9games/creaturebot/cache"
	"github.com/e9games/creaturebot/catalog"
	"github.com/e9games/creaturebot/config"
	"github.com/e9games/creaturebot/game/battle"
	"github.com/e9games/creaturebot/game/inventory"
	"github.com/e9games/creaturebot/game/limiter"
	"github.com/e9games/creaturebot/model"
	"github.com/e9games/creaturebot/store"
	"go.uber.org/zap"
)

var (
	// ErrBossActive rejects spawning while a boss is alive.
	ErrBossActive = errors.New("boss: a boss is already active")
	// ErrNoBoss signals no boss to fight or inspect.
	ErrNoBoss = errors.New("boss: no active boss")
	// ErrOnCooldown rejects an attack inside the cooldown window.
	ErrOnCooldown = errors.New("boss: attack on cooldown")
	// ErrNoLivingCreature rejects attackers with an empty or dead roster.
	ErrNoLivingCreature = errors.New("boss: no living creatures")
	// ErrCreatureUnavailable rejects a pick that is not a living roster
	// creature.
	ErrCreatureUnavailable = errors.New("boss: creature unavailable")
)

// LeaderboardEntry is one row of the damage ranking.
type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Damage int64  `json:"damage"`
}

// Status is the public view of the active boss fight.
type Status struct {
	Boss          *model.BossState   `json:"boss"`
	Leaderboard   []LeaderboardEntry `json:"leaderboard"`
	RecentAttacks []model.BossAttack `json:"recent_attacks"`
}

// AttackResult reports one attack exchange and its fallout.
type AttackResult struct {
	BossName     string          `json:"boss_name"`
	Exchange     battle.Exchange `json:"exchange"`
	CreatureName string          `json:"creature_name"`
	CreatureDied bool            `json:"creature_died"`
	KillingBlow  bool            `json:"killing_blow"`
	// Reward is the mythical creature granted for the killing blow.
	// Nil unless this attack defeated the boss.
	Reward *model.Creature `json:"reward,omitempty"`
	// RewardKept is false when the killer's roster was full and the
	// reward had to be discarded.
	RewardKept bool `json:"reward_kept"`
}

// Service runs world boss fights: a single boss shared by everyone,
// serialized attacks, a 30s per-user cooldown and a damage leaderboard
// kept in cache.
type Service struct {
	store     *store.Store
	cache     cache.Cache
	inventory *inventory.Service
	limiter   *limiter.Service
	cfg       config.GameConfig
	logger    *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates the boss service. rng may be nil outside tests.
func New(st *store.Store, c cache.Cache, inv *inventory.Service, lim *limiter.Service, cfg config.GameConfig, logger *zap.Logger, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{store: st, cache: c, inventory: inv, limiter: lim, cfg: cfg, logger: logger, rng: rng}
}

func leaderboardKey(bossID string) string { return fmt.Sprintf("bossdmg:%s", bossID) }

// Spawn creates a new world boss. Only one can be alive at a time.
func (s *Service) Spawn(userID string) (*model.BossState, error) {
	s.rngMu.Lock()
	b := catalog.NewBoss(s.rng, userID)
	s.rngMu.Unlock()

	created, err := s.store.SpawnBoss(&b)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrBossActive
	}
	s.logger.Info("boss spawned",
		zap.String("boss", b.Name), zap.String("spawner", userID), zap.Int("hp", b.HP))
	return &b, nil
}

// GetStatus returns the active boss, the top damage dealers and the
// most recent attacks.
func (s *Service) GetStatus(ctx context.Context) (*Status, error) {
	b, err := s.store.GetBoss()
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoBoss
	}
	if err != nil {
		return nil, err
	}

	out := &Status{Boss: b}
	rows, err := s.cache.ZRevRangeWithScores(ctx, leaderboardKey(b.ID), 0, 9)
	if err == nil {
		for _, r := range rows {
			out.Leaderboard = append(out.Leaderboard, LeaderboardEntry{
				UserID: r.Member, Damage: int64(r.Score),
			})
		}
	} else {
		s.logger.Warn("boss leaderboard read failed", zap.Error(err))
	}

	attacks, err := s.store.BossAttacks(b.ID, 10)
	if err != nil {
		return nil, err
	}
	out.RecentAttacks = attacks
	return out, nil
}

// Attack runs one exchange against the active boss with the given
// creature. The exchange itself is serialized on the boss row; the
// killing blow deletes the boss and grants a mythical reward if the
// killer has a free roster slot.
func (s *Service) Attack(ctx context.Context, userID, creatureID string) (*AttackResult, error) {
	gate, err := s.limiter.CanAttack(ctx, userID, model.AttackBoss)
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
	s.rngMu.Unlock()

	res := &AttackResult{CreatureName: attacker.Name}
	var bossID string
	err = s.store.UpdateBoss(func(b *model.BossState) (bool, error) {
		bossID = b.ID
		res.BossName = b.Name
		res.Exchange = engine.BossExchange(attacker, &b.HP, b.Defense)
		return res.Exchange.BossDefeated, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoBoss
	}
	if err != nil {
		return nil, err
	}
	res.CreatureDied = res.Exchange.CreatureDied
	res.KillingBlow = res.Exchange.BossDefeated

	if err := s.limiter.MarkAttack(ctx, userID, model.AttackBoss); err != nil {
		s.logger.Warn("boss cooldown mark failed", zap.String("user", userID), zap.Error(err))
	}

	// Persist the creature's side of the exchange.
	if res.CreatureDied {
		if _, err := s.inventory.RemoveDeadCreature(userID, attacker.ID); err != nil {
			return nil, err
		}
	} else if err := s.inventory.ApplyBattleDamage(userID, attacker.ID, attacker.Stats.HP); err != nil {
		return nil, err
	}

	if err := s.store.LogBossAttack(&model.BossAttack{
		BossID:       bossID,
		UserID:       userID,
		CreatureID:   attacker.ID,
		Damage:       res.Exchange.Damage,
		CounterDmg:   res.Exchange.Counter,
		CreatureDied: res.CreatureDied,
		KillingBlow:  res.KillingBlow,
	}); err != nil {
		return nil, err
	}
	if err := s.store.TouchAttackStats(userID, model.AttackBoss, res.Exchange.Damage, time.Now()); err != nil {
		return nil, err
	}
	if _, err := s.cache.ZIncrBy(ctx, leaderboardKey(bossID), float64(res.Exchange.Damage), userID); err != nil {
		s.logger.Warn("boss leaderboard update failed", zap.Error(err))
	}

	if res.KillingBlow {
		s.rngMu.Lock()
		reward := catalog.NewMythicalReward(s.rng, res.BossName)
		s.rngMu.Unlock()

		switch err := s.inventory.AddCreature(userID, reward); {
		case err == nil:
			res.Reward = &reward
			res.RewardKept = true
		case errors.Is(err, inventory.ErrInventoryFull):
			// Full roster forfeits the reward outright.
			res.Reward = &reward
			res.RewardKept = false
		default:
			return nil, err
		}
		s.logger.Info("boss defeated",
			zap.String("boss", res.BossName), zap.String("killer", userID),
			zap.Bool("reward_kept", res.RewardKept))
	}
	return res, nil
}
