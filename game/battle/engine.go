package battle

import (
	"math/rand"

	"github.com/e9games/creaturebot/model"
)

// Outcome of a multi-round duel.
type Outcome int

const (
	// OutcomeInitiatorWon means the defender's creature died.
	OutcomeInitiatorWon Outcome = iota
	// OutcomeDefenderWon means the initiator's creature died.
	OutcomeDefenderWon
	// OutcomeDraw means both creatures survived the round cap.
	OutcomeDraw
)

// Config tunes the engine. RNG is injectable so tests can force rolls.
type Config struct {
	MaxRounds int
	RNG       *rand.Rand
}

// Engine resolves combat. It is pure: it mutates only the creatures
// passed in and touches no storage.
type Engine struct {
	maxRounds int
	rng       *rand.Rand
}

// New creates an Engine. MaxRounds defaults to 20.
func New(cfg Config) *Engine {
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = 20
	}
	rng := cfg.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Engine{maxRounds: maxRounds, rng: rng}
}

// Damage is the shared attack formula: attack minus half the defense,
// plus noise in [-5, 4], floored at 1.
func (e *Engine) Damage(attack, defense int) int {
	dmg := attack - defense/2 + e.rng.Intn(10) - 5
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// Hit is one attack within a duel round.
type Hit struct {
	Attacker   string `json:"attacker"`
	Defender   string `json:"defender"`
	Damage     int    `json:"damage"`
	DefenderHP int    `json:"defender_hp"`
}

// DuelResult is the outcome of a full duel.
type DuelResult struct {
	Outcome Outcome `json:"outcome"`
	Rounds  int     `json:"rounds"`
	Log     []Hit   `json:"log"`
}

// RunDuel fights two creatures to the death or to the round cap. The
// initiator strikes first each round; the defender counterattacks only
// if it survives the strike. HP mutates on the passed creatures, floored
// at zero. Both alive at the cap is an explicit draw.
func (e *Engine) RunDuel(initiator, defender *model.Creature) DuelResult {
	res := DuelResult{}
	for round := 1; round <= e.maxRounds; round++ {
		res.Rounds = round

		dmg := e.Damage(initiator.Stats.Attack, defender.Stats.Defense)
		defender.Stats.HP -= dmg
		if defender.Stats.HP < 0 {
			defender.Stats.HP = 0
		}
		res.Log = append(res.Log, Hit{
			Attacker: initiator.ID, Defender: defender.ID,
			Damage: dmg, DefenderHP: defender.Stats.HP,
		})
		if defender.Stats.HP <= 0 {
			res.Outcome = OutcomeInitiatorWon
			return res
		}

		dmg = e.Damage(defender.Stats.Attack, initiator.Stats.Defense)
		initiator.Stats.HP -= dmg
		if initiator.Stats.HP < 0 {
			initiator.Stats.HP = 0
		}
		res.Log = append(res.Log, Hit{
			Attacker: defender.ID, Defender: initiator.ID,
			Damage: dmg, DefenderHP: initiator.Stats.HP,
		})
		if initiator.Stats.HP <= 0 {
			res.Outcome = OutcomeDefenderWon
			return res
		}
	}
	res.Outcome = OutcomeDraw
	return res
}

// Exchange is one attack against a boss and its counterattack.
type Exchange struct {
	Damage       int  `json:"damage"`
	BossHP       int  `json:"boss_hp"`
	BossDefeated bool `json:"boss_defeated"`
	Counter      int  `json:"counter"`
	CreatureHP   int  `json:"creature_hp"`
	CreatureDied bool `json:"creature_died"`
}

// BossExchange applies one creature attack to a boss. A surviving boss
// counterattacks with a flat 50-70 roll that ignores both sides' stats;
// a defeated boss never counterattacks.
func (e *Engine) BossExchange(attacker *model.Creature, bossHP *int, bossDefense int) Exchange {
	ex := Exchange{}

	ex.Damage = e.Damage(attacker.Stats.Attack, bossDefense)
	*bossHP -= ex.Damage
	if *bossHP < 0 {
		*bossHP = 0
	}
	ex.BossHP = *bossHP
	if *bossHP <= 0 {
		ex.BossDefeated = true
		ex.CreatureHP = attacker.Stats.HP
		return ex
	}

	ex.Counter = e.rng.Intn(21) + 50
	attacker.Stats.HP -= ex.Counter
	if attacker.Stats.HP < 0 {
		attacker.Stats.HP = 0
	}
	ex.CreatureHP = attacker.Stats.HP
	ex.CreatureDied = attacker.Stats.HP <= 0
	return ex
}

// LevelUp advances the winner's creature one level and clears its
// experience. Stats, including current HP, are deliberately untouched.
func LevelUp(c *model.Creature) {
	c.Level++
	c.Experience = 0
}
