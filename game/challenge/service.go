package challenge

import (
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
	"github.com/e9games/creaturebot/scheduler"
	"github.com/e9games/creaturebot/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrSelfChallenge rejects challenging yourself.
	ErrSelfChallenge = errors.New("challenge: cannot challenge yourself")
	// ErrQuotaExhausted rejects a party without challenge quota left.
	ErrQuotaExhausted = errors.New("challenge: quota exhausted")
	// ErrAlreadyInBattle enforces one active challenge per user.
	ErrAlreadyInBattle = errors.New("challenge: user already in an active battle")
	// ErrNoLivingCreature rejects parties whose roster cannot fight.
	ErrNoLivingCreature = errors.New("challenge: no living creatures")
	// ErrNotPending signals the challenge left the expected state,
	// usually because the other party or a timeout got there first.
	ErrNotPending = errors.New("challenge: no longer pending")
	// ErrNotParticipant rejects a user who is not on the right side.
	ErrNotParticipant = errors.New("challenge: not a participant")
	// ErrCreatureUnavailable rejects a selection that no longer maps to
	// a living roster creature.
	ErrCreatureUnavailable = errors.New("challenge: creature unavailable")
)

// Side names the two parties of a challenge.
type Side string

const (
	SideChallenger Side = "challenger"
	SideOpponent   Side = "opponent"
)

// BattleResult is the payload of a resolved duel.
type BattleResult struct {
	ChallengeID    string       `json:"challenge_id,omitempty"`
	Log            []battle.Hit `json:"log"`
	Rounds         int          `json:"rounds"`
	Draw           bool         `json:"draw"`
	WinnerID       string       `json:"winner_id,omitempty"`
	LoserID        string       `json:"loser_id,omitempty"`
	DeadCreatureID string       `json:"dead_creature_id,omitempty"`
	WinnerLevel    int          `json:"winner_level,omitempty"`
}

// Service runs the PvP negotiation workflow and the bot battle mode.
// The challenger's quota is charged at creation and refunded if the
// challenge dies before a battle happens; the opponent is charged when
// their creature selection locks the battle in.
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

// New creates the challenge service. rng may be nil outside tests.
func New(st *store.Store, inv *inventory.Service, lim *limiter.Service, sched *scheduler.Scheduler, cfg config.GameConfig, logger *zap.Logger, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		store: st, inventory: inv, limiter: lim, sched: sched,
		cfg: cfg, logger: logger, rng: rng,
	}
}

func (s *Service) newEngine() *battle.Engine {
	s.rngMu.Lock()
	seed := s.rng.Int63()
	s.rngMu.Unlock()
	return battle.New(battle.Config{
		MaxRounds: s.cfg.MaxBattleRounds,
		RNG:       rand.New(rand.NewSource(seed)),
	})
}

func timerName(challengeID string) string { return "challenge:" + challengeID }

func livingCreatures(inv *model.UserInventory) []model.Creature {
	var out []model.Creature
	for _, c := range inv.CreatureList() {
		if c.Alive() {
			out = append(out, c)
		}
	}
	return out
}

// Create opens a challenge from challenger to opponent and arms the
// response timeout.
func (s *Service) Create(challengerID, opponentID string) (*model.Challenge, error) {
	if challengerID == opponentID {
		return nil, ErrSelfChallenge
	}

	for _, userID := range []string{challengerID, opponentID} {
		if _, err := s.activeFor(userID); err == nil {
			return nil, ErrAlreadyInBattle
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	inv, err := s.inventory.Get(challengerID)
	if err != nil {
		return nil, err
	}
	if len(livingCreatures(inv)) == 0 {
		return nil, ErrNoLivingCreature
	}

	// Check-and-charge in one user write; racing creates cannot both
	// take the last quota slot.
	status, err := s.limiter.Charge(challengerID, limiter.KindChallenge)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		return nil, ErrQuotaExhausted
	}

	ch := &model.Challenge{
		ID:           uuid.New().String(),
		ChallengerID: challengerID,
		OpponentID:   opponentID,
		Status:       model.ChallengePending,
	}
	if err := s.store.CreateChallenge(ch); err != nil {
		_ = s.limiter.Decrement(challengerID, limiter.KindChallenge)
		return nil, err
	}
	s.armTimeout(ch.ID)
	return ch, nil
}

func (s *Service) armTimeout(challengeID string) {
	s.sched.AddDelay(timerName(challengeID), s.cfg.ChallengeTimeout, func() {
		if err := s.Expire(challengeID); err != nil && !errors.Is(err, ErrNotPending) && !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("challenge expiry failed",
				zap.String("challenge", challengeID), zap.Error(err))
		}
	})
}

// activeFor wraps the store query with a lazy expiry check so a stale
// pending challenge never blocks a new one.
func (s *Service) activeFor(userID string) (*model.Challenge, error) {
	ch, err := s.store.ActiveChallengeForUser(userID)
	if err != nil {
		return nil, err
	}
	if ch.Status == model.ChallengePending && time.Since(ch.CreatedAt) > s.cfg.ChallengeTimeout {
		if err := s.Expire(ch.ID); err != nil && !errors.Is(err, ErrNotPending) {
			return nil, err
		}
		return nil, store.ErrNotFound
	}
	return ch, nil
}

// PendingFor returns the challenge awaiting the user's response, i.e.
// where they are the opponent of a live pending challenge.
func (s *Service) PendingFor(userID string) (*model.Challenge, error) {
	ch, err := s.activeFor(userID)
	if err != nil {
		return nil, err
	}
	if ch.OpponentID != userID || ch.Status != model.ChallengePending {
		return nil, store.ErrNotFound
	}
	return ch, nil
}

// SelectCreature records a party's pick, validated against their
// current roster rather than any cached copy. The opponent's pick locks
// the challenge into accepted and charges their quota; the battle is
// then ready to resolve.
func (s *Service) SelectCreature(challengeID string, side Side, userID, creatureID string) error {
	inv, err := s.inventory.Get(userID)
	if err != nil {
		return err
	}
	alive := false
	for _, c := range livingCreatures(inv) {
		if c.ID == creatureID {
			alive = true
			break
		}
	}
	if !alive {
		return ErrCreatureUnavailable
	}

	charged := false
	err = s.store.UpdateChallenge(challengeID, func(ch *model.Challenge) error {
		if ch.Status != model.ChallengePending {
			return ErrNotPending
		}
		switch side {
		case SideChallenger:
			if ch.ChallengerID != userID {
				return ErrNotParticipant
			}
			ch.ChallengerCreature = creatureID
		case SideOpponent:
			if ch.OpponentID != userID {
				return ErrNotParticipant
			}
			if ch.ChallengerCreature == "" {
				return ErrNotPending
			}
			ch.OpponentCreature = creatureID
			ch.Status = model.ChallengeAccepted
			charged = true
		default:
			return ErrNotParticipant
		}
		return nil
	})
	if err != nil {
		return err
	}
	if charged {
		s.sched.Remove(timerName(challengeID))
		return s.limiter.Increment(userID, limiter.KindChallenge)
	}
	// Re-arm: the ball is in the other party's court now.
	s.armTimeout(challengeID)
	return nil
}

// Accept validates that the opponent may take the challenge: quota left
// and a living creature to fight with. It does not change state; the
// opponent's creature selection does.
func (s *Service) Accept(userID string) (*model.Challenge, error) {
	ch, err := s.PendingFor(userID)
	if err != nil {
		return nil, err
	}
	status, err := s.limiter.CanUse(userID, limiter.KindChallenge)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		return nil, ErrQuotaExhausted
	}
	inv, err := s.inventory.Get(userID)
	if err != nil {
		return nil, err
	}
	if len(livingCreatures(inv)) == 0 {
		return nil, ErrNoLivingCreature
	}
	s.armTimeout(ch.ID)
	return ch, nil
}

// Decline ends the pending challenge against the user. The record
// stays, hidden from pending queries, and the challenger gets their
// quota slot back.
func (s *Service) Decline(userID string) error {
	ch, err := s.PendingFor(userID)
	if err != nil {
		return err
	}
	err = s.store.UpdateChallenge(ch.ID, func(c *model.Challenge) error {
		if c.Status != model.ChallengePending {
			return ErrNotPending
		}
		c.Status = model.ChallengeDeclined
		return nil
	})
	if err != nil {
		return err
	}
	s.sched.Remove(timerName(ch.ID))
	return s.limiter.Decrement(ch.ChallengerID, limiter.KindChallenge)
}

// Expire times out a still-pending challenge and refunds the
// challenger. Terminal challenges are left alone.
func (s *Service) Expire(challengeID string) error {
	var challengerID string
	err := s.store.UpdateChallenge(challengeID, func(ch *model.Challenge) error {
		if ch.Status != model.ChallengePending {
			return ErrNotPending
		}
		ch.Status = model.ChallengeExpired
		challengerID = ch.ChallengerID
		return nil
	})
	if err != nil {
		return err
	}
	s.sched.Remove(timerName(challengeID))
	return s.limiter.Decrement(challengerID, limiter.KindChallenge)
}

// Resolve fights an accepted challenge to the end and applies all
// consequences in one two-user write: battle counters, the winner's
// level-up and surviving HP, and the loser's death removal.
func (s *Service) Resolve(challengeID string) (*BattleResult, error) {
	// Claim the accepted to completed transition under the challenge
	// lock before touching any battle state, so a second concurrent
	// resolve fails here instead of running a duplicate duel.
	var ch model.Challenge
	err := s.store.UpdateChallenge(challengeID, func(c *model.Challenge) error {
		if c.Status != model.ChallengeAccepted {
			return ErrNotPending
		}
		c.Status = model.ChallengeCompleted
		ch = *c
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &BattleResult{ChallengeID: challengeID}
	engine := s.newEngine()

	err = s.store.UpdateTwoUsers(ch.ChallengerID, ch.OpponentID, func(cInv, oInv *model.UserInventory) error {
		challengerCreature := findLiving(cInv, ch.ChallengerCreature)
		opponentCreature := findLiving(oInv, ch.OpponentCreature)
		if challengerCreature == nil || opponentCreature == nil {
			return ErrCreatureUnavailable
		}

		duel := engine.RunDuel(challengerCreature, opponentCreature)
		res.Log = duel.Log
		res.Rounds = duel.Rounds

		cInv.TotalBattles++
		oInv.TotalBattles++

		switch duel.Outcome {
		case battle.OutcomeDraw:
			res.Draw = true
			writeBack(cInv, *challengerCreature)
			writeBack(oInv, *opponentCreature)
		case battle.OutcomeInitiatorWon:
			applyOutcome(res, cInv, oInv, challengerCreature, opponentCreature, ch.ChallengerID, ch.OpponentID)
		case battle.OutcomeDefenderWon:
			applyOutcome(res, oInv, cInv, opponentCreature, challengerCreature, ch.OpponentID, ch.ChallengerID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCreatureUnavailable) {
			// The battle can never happen; close the record out.
			_ = s.store.UpdateChallenge(challengeID, func(c *model.Challenge) error {
				c.Status = model.ChallengeExpired
				return nil
			})
			s.sched.Remove(timerName(challengeID))
			return nil, err
		}
		// Storage failure before anything battle-related was written.
		// Release the claim so a retry can still resolve.
		_ = s.store.UpdateChallenge(challengeID, func(c *model.Challenge) error {
			c.Status = model.ChallengeAccepted
			return nil
		})
		return nil, err
	}

	if err := s.store.UpdateChallenge(challengeID, func(c *model.Challenge) error {
		c.WinnerID = res.WinnerID
		return nil
	}); err != nil {
		return nil, err
	}
	s.sched.Remove(timerName(challengeID))
	return res, nil
}

func findLiving(inv *model.UserInventory, creatureID string) *model.Creature {
	for _, c := range inv.CreatureList() {
		if c.ID == creatureID && c.Alive() {
			cc := c
			return &cc
		}
	}
	return nil
}

// writeBack persists a creature's mutated stats into its inventory.
func writeBack(inv *model.UserInventory, c model.Creature) {
	list := inv.CreatureList()
	for i := range list {
		if list[i].ID == c.ID {
			list[i] = c
			inv.SetCreatures(list)
			return
		}
	}
}

// removeCreature deletes a dead creature and clears a matching lock.
func removeCreature(inv *model.UserInventory, creatureID string) {
	list := inv.CreatureList()
	for i := range list {
		if list[i].ID == creatureID {
			inv.SetCreatures(append(list[:i], list[i+1:]...))
			if inv.LockedCreatureID == creatureID {
				inv.LockedCreatureID = ""
			}
			return
		}
	}
}

func applyOutcome(res *BattleResult, winnerInv, loserInv *model.UserInventory, winner, loser *model.Creature, winnerID, loserID string) {
	winnerInv.TotalWins++
	battle.LevelUp(winner)
	writeBack(winnerInv, *winner)
	removeCreature(loserInv, loser.ID)

	res.WinnerID = winnerID
	res.LoserID = loserID
	res.DeadCreatureID = loser.ID
	res.WinnerLevel = winner.Level
}

// CleanupSweep expires stale records: pending challenges past the
// response window, accepted ones that never resolved, and completed or
// terminal rows older than an hour, which are purged outright.
func (s *Service) CleanupSweep() {
	now := time.Now()

	stalePending, err := s.store.StaleChallenges(model.ChallengePending, now.Add(-s.cfg.ChallengeTimeout))
	if err == nil {
		for _, ch := range stalePending {
			if err := s.Expire(ch.ID); err != nil && !errors.Is(err, ErrNotPending) {
				s.logger.Warn("challenge sweep expiry failed", zap.String("challenge", ch.ID), zap.Error(err))
			}
		}
	}

	staleAccepted, err := s.store.StaleChallenges(model.ChallengeAccepted, now.Add(-2*s.cfg.ChallengeTimeout))
	if err == nil {
		for _, ch := range staleAccepted {
			_ = s.store.UpdateChallenge(ch.ID, func(c *model.Challenge) error {
				if c.Status != model.ChallengeAccepted {
					return ErrNotPending
				}
				c.Status = model.ChallengeExpired
				return nil
			})
			s.sched.Remove(timerName(ch.ID))
		}
	}

	for _, status := range []model.ChallengeStatus{model.ChallengeCompleted, model.ChallengeDeclined, model.ChallengeExpired} {
		old, err := s.store.StaleChallenges(status, now.Add(-time.Hour))
		if err != nil {
			continue
		}
		for _, ch := range old {
			if err := s.store.DB().Delete(&model.Challenge{}, "id = ?", ch.ID).Error; err != nil {
				s.logger.Warn("challenge purge failed", zap.String("challenge", ch.ID), zap.Error(err))
			}
		}
	}
}

// BotBattle fights the user's creature against a uniformly drawn bot
// creature at level 1. It charges a challenge use and applies the same
// level-up and death rules as PvP, but creates no challenge record.
func (s *Service) BotBattle(userID, creatureID string) (*BattleResult, error) {
	status, err := s.limiter.Charge(userID, limiter.KindChallenge)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		return nil, ErrQuotaExhausted
	}

	var botCreature model.Creature
	s.rngMu.Lock()
	botCreature = catalog.Instantiate(catalog.DrawBotCreature(s.rng))
	s.rngMu.Unlock()

	res := &BattleResult{}
	engine := s.newEngine()

	err = s.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		playerCreature := findLiving(inv, creatureID)
		if playerCreature == nil {
			return ErrCreatureUnavailable
		}

		duel := engine.RunDuel(playerCreature, &botCreature)
		res.Log = duel.Log
		res.Rounds = duel.Rounds
		inv.TotalBattles++

		switch duel.Outcome {
		case battle.OutcomeDraw:
			res.Draw = true
			writeBack(inv, *playerCreature)
		case battle.OutcomeInitiatorWon:
			inv.TotalWins++
			battle.LevelUp(playerCreature)
			writeBack(inv, *playerCreature)
			res.WinnerID = userID
			res.WinnerLevel = playerCreature.Level
			res.DeadCreatureID = botCreature.ID
		case battle.OutcomeDefenderWon:
			removeCreature(inv, playerCreature.ID)
			res.LoserID = userID
			res.DeadCreatureID = playerCreature.ID
		}
		return nil
	})
	if err != nil {
		_ = s.limiter.Decrement(userID, limiter.KindChallenge)
		return nil, err
	}
	return res, nil
}
