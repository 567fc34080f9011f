package battle

import (
	"math/rand"
	"testing"

	"github.com/e9games/creaturebot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(seed int64) *Engine {
	return New(Config{RNG: rand.New(rand.NewSource(seed))})
}

func testCreature(id string, hp, attack, defense int) *model.Creature {
	return &model.Creature{
		ID: id, Name: id, Rarity: model.RarityCommon, Level: 1,
		Stats: model.Stats{HP: hp, MaxHP: hp, Attack: attack, Defense: defense},
	}
}

func TestDamage_Bounds(t *testing.T) {
	e := testEngine(1)
	for i := 0; i < 1000; i++ {
		dmg := e.Damage(50, 40)
		// 50 - 20 + [-5,4] = [25, 34]
		assert.GreaterOrEqual(t, dmg, 25)
		assert.LessOrEqual(t, dmg, 34)
	}
}

func TestDamage_FlooredAtOne(t *testing.T) {
	e := testEngine(1)
	for i := 0; i < 1000; i++ {
		assert.GreaterOrEqual(t, e.Damage(1, 100), 1)
	}
}

func TestRunDuel_StrongerSideWins(t *testing.T) {
	e := testEngine(7)
	strong := testCreature("strong", 200, 80, 50)
	weak := testCreature("weak", 40, 10, 0)

	res := e.RunDuel(strong, weak)
	assert.Equal(t, OutcomeInitiatorWon, res.Outcome)
	assert.Zero(t, weak.Stats.HP)
	assert.Positive(t, strong.Stats.HP)
	require.NotEmpty(t, res.Log)
	last := res.Log[len(res.Log)-1]
	assert.Equal(t, "strong", last.Attacker)
	assert.Zero(t, last.DefenderHP)
}

func TestRunDuel_DefenderCanWin(t *testing.T) {
	e := testEngine(7)
	weak := testCreature("weak", 40, 10, 0)
	strong := testCreature("strong", 200, 80, 50)

	res := e.RunDuel(weak, strong)
	assert.Equal(t, OutcomeDefenderWon, res.Outcome)
	assert.Zero(t, weak.Stats.HP)
}

func TestRunDuel_NoCounterAfterDeath(t *testing.T) {
	e := testEngine(3)
	killer := testCreature("killer", 100, 100, 0)
	victim := testCreature("victim", 5, 100, 0)

	res := e.RunDuel(killer, victim)
	assert.Equal(t, OutcomeInitiatorWon, res.Outcome)
	assert.Equal(t, 1, res.Rounds)
	// Only the lethal strike is logged; the dead side never swings.
	require.Len(t, res.Log, 1)
	assert.Equal(t, 100, killer.Stats.HP)
}

func TestRunDuel_DrawAtRoundCap(t *testing.T) {
	// Two tanks that cannot finish each other inside the cap.
	e := New(Config{MaxRounds: 20, RNG: rand.New(rand.NewSource(9))})
	a := testCreature("a", 10000, 10, 10)
	b := testCreature("b", 10000, 10, 10)

	res := e.RunDuel(a, b)
	assert.Equal(t, OutcomeDraw, res.Outcome)
	assert.Equal(t, 20, res.Rounds)
	assert.Positive(t, a.Stats.HP)
	assert.Positive(t, b.Stats.HP)
	assert.Len(t, res.Log, 40)
}

func TestBossExchange_LethalBlowSkipsCounter(t *testing.T) {
	e := testEngine(11)
	attacker := testCreature("atk", 50, 10, 5)
	bossHP := 5

	ex := e.BossExchange(attacker, &bossHP, 0)
	assert.True(t, ex.BossDefeated)
	assert.Zero(t, bossHP)
	assert.Zero(t, ex.Counter)
	assert.Equal(t, 50, attacker.Stats.HP)
	assert.False(t, ex.CreatureDied)
}

func TestBossExchange_CounterRange(t *testing.T) {
	e := testEngine(13)
	for i := 0; i < 500; i++ {
		attacker := testCreature("atk", 1000, 10, 5)
		bossHP := 100000
		ex := e.BossExchange(attacker, &bossHP, 8)
		require.False(t, ex.BossDefeated)
		assert.GreaterOrEqual(t, ex.Counter, 50)
		assert.LessOrEqual(t, ex.Counter, 70)
		assert.Equal(t, 1000-ex.Counter, attacker.Stats.HP)
	}
}

func TestBossExchange_CounterCanKill(t *testing.T) {
	e := testEngine(17)
	attacker := testCreature("atk", 30, 10, 5)
	bossHP := 100000

	ex := e.BossExchange(attacker, &bossHP, 8)
	assert.True(t, ex.CreatureDied)
	assert.Zero(t, attacker.Stats.HP)
}

func TestLevelUp_StatsUnchanged(t *testing.T) {
	c := testCreature("c", 80, 45, 40)
	c.Stats.HP = 33
	c.Experience = 120

	LevelUp(c)
	assert.Equal(t, 2, c.Level)
	assert.Zero(t, c.Experience)
	assert.Equal(t, 33, c.Stats.HP)
	assert.Equal(t, 80, c.Stats.MaxHP)
	assert.Equal(t, 45, c.Stats.Attack)
	assert.Equal(t, 40, c.Stats.Defense)
}
