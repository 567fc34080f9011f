package catalog

import (
	"math/rand"

	"github.com/e9games/creaturebot/model"
)

// Draw probabilities for a regular catch, checked in rarity-descending
// order against one percent roll.
const (
	legendaryBand = 5  // roll < 5
	epicBand      = 20 // roll < 20
	rareBand      = 45 // roll < 45
	uncommonBand  = 85 // roll < 85, remainder common
)

// DrawCreature picks a template with the weighted catch distribution.
func DrawCreature(rng *rand.Rand) Template {
	roll := rng.Float64() * 100
	var rarity model.Rarity
	switch {
	case roll < legendaryBand:
		rarity = model.RarityLegendary
	case roll < epicBand:
		rarity = model.RarityEpic
	case roll < rareBand:
		rarity = model.RarityRare
	case roll < uncommonBand:
		rarity = model.RarityUncommon
	default:
		rarity = model.RarityCommon
	}
	pool := ByRarity(rarity)
	return pool[rng.Intn(len(pool))]
}

// DrawBotCreature picks a template with uniform rarity weighting.
// Bot battles use this so the bot is not biased toward commons.
func DrawBotCreature(rng *rand.Rand) Template {
	rarities := []model.Rarity{
		model.RarityCommon,
		model.RarityUncommon,
		model.RarityRare,
		model.RarityEpic,
		model.RarityLegendary,
	}
	pool := ByRarity(rarities[rng.Intn(len(rarities))])
	return pool[rng.Intn(len(pool))]
}

// DrawItem rolls the adventure item drop. Returns nil on the 85% miss.
func DrawItem(rng *rand.Rand, dropPercent int) *model.AdventureItem {
	if rng.Float64()*100 > float64(dropPercent) {
		return nil
	}
	item := Items[rng.Intn(len(Items))]
	return &item
}
