package catalog

import (
	"math/rand"
	"testing"

	"github.com/e9games/creaturebot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByRarity_PoolSizes(t *testing.T) {
	assert.Len(t, ByRarity(model.RarityCommon), 49)
	assert.Len(t, ByRarity(model.RarityUncommon), 14)
	assert.Len(t, ByRarity(model.RarityRare), 8)
	assert.Len(t, ByRarity(model.RarityEpic), 3)
	assert.Len(t, ByRarity(model.RarityLegendary), 3)
	assert.Empty(t, ByRarity(model.RarityMythical))
}

func TestDrawCreature_Distribution(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	counts := map[model.Rarity]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		counts[DrawCreature(rng).Rarity]++
	}
	// Expected bands: 5 / 15 / 25 / 40 / 15 percent.
	assert.InDelta(t, 0.05, float64(counts[model.RarityLegendary])/n, 0.01)
	assert.InDelta(t, 0.15, float64(counts[model.RarityEpic])/n, 0.015)
	assert.InDelta(t, 0.25, float64(counts[model.RarityRare])/n, 0.015)
	assert.InDelta(t, 0.40, float64(counts[model.RarityUncommon])/n, 0.015)
	assert.InDelta(t, 0.15, float64(counts[model.RarityCommon])/n, 0.015)
}

func TestDrawBotCreature_CoversAllTiers(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	seen := map[model.Rarity]bool{}
	for i := 0; i < 500; i++ {
		seen[DrawBotCreature(rng).Rarity] = true
	}
	assert.Len(t, seen, 5)
}

func TestDrawItem_DropRate(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	drops := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if DrawItem(rng, 15) != nil {
			drops++
		}
	}
	assert.InDelta(t, 0.15, float64(drops)/n, 0.02)

	for i := 0; i < 100; i++ {
		assert.Nil(t, DrawItem(rng, 0))
	}
}

func TestInstantiate(t *testing.T) {
	tpl := Template{Name: "zap", Rarity: model.RarityEpic, HP: 120, Attack: 100, Defense: 110, CatchRate: 15}
	c := Instantiate(tpl)
	require.NotEmpty(t, c.ID)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, c.Stats.MaxHP, c.Stats.HP)
	assert.Equal(t, 120, c.Stats.HP)
	assert.True(t, c.Alive())
}

func TestNewBoss_StatRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 200; i++ {
		b := NewBoss(rng, "admin")
		assert.GreaterOrEqual(t, b.HP, 1000)
		assert.LessOrEqual(t, b.HP, 1500)
		assert.Equal(t, b.HP, b.MaxHP)
		assert.GreaterOrEqual(t, b.Attack, 300)
		assert.LessOrEqual(t, b.Attack, 500)
		assert.GreaterOrEqual(t, b.Defense, 5)
		assert.LessOrEqual(t, b.Defense, 10)
	}
}

func TestNewMythicalReward_StatRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 200; i++ {
		c := NewMythicalReward(rng, "Medusa")
		assert.Equal(t, model.RarityMythical, c.Rarity)
		assert.Equal(t, "Medusa", c.Name)
		assert.GreaterOrEqual(t, c.Stats.HP, 160)
		assert.LessOrEqual(t, c.Stats.HP, 180)
		assert.GreaterOrEqual(t, c.Stats.Attack, 130)
		assert.LessOrEqual(t, c.Stats.Attack, 150)
		assert.GreaterOrEqual(t, c.Stats.Defense, 130)
		assert.LessOrEqual(t, c.Stats.Defense, 150)
	}
}

func TestNewGymBoss_PerRound(t *testing.T) {
	rng := rand.New(rand.NewSource(6))

	r1 := NewGymBoss(rng, 1)
	assert.Equal(t, 1000, r1.HP)
	assert.Equal(t, 1, r1.Defense)

	r2 := NewGymBoss(rng, 2)
	assert.Equal(t, 1100, r2.HP)
	assert.Equal(t, 1, r2.Defense)

	r3 := NewGymBoss(rng, 3)
	assert.Equal(t, "Gym Boss", r3.Name)
	assert.Equal(t, 1200, r3.HP)
	assert.Equal(t, 2, r3.Defense)
	assert.Equal(t, 100, r3.Attack)
}
