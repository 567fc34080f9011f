package catalog

import (
	"time"

	"github.com/e9games/creaturebot/model"
	"github.com/google/uuid"
)

// Template is a static creature definition. Catching instantiates a
// fresh model.Creature from it.
type Template struct {
	Name      string
	Rarity    model.Rarity
	HP        int
	Attack    int
	Defense   int
	CatchRate int
}

// Creatures is the full catalog. Rarer tiers reuse a shrinking subset
// of the common names with higher stat lines.
var Creatures = []Template{
	{"celeste", model.RarityCommon, 50, 45, 40, 60},
	{"byte", model.RarityCommon, 45, 50, 35, 60},
	{"snoop", model.RarityCommon, 55, 40, 45, 60},
	{"oasys", model.RarityCommon, 50, 45, 40, 60},
	{"dayze", model.RarityCommon, 45, 50, 35, 60},
	{"ember", model.RarityCommon, 50, 50, 35, 60},
	{"byron", model.RarityCommon, 55, 40, 45, 60},
	{"melt", model.RarityCommon, 50, 45, 40, 60},
	{"lizzy", model.RarityCommon, 45, 50, 35, 60},
	{"molten", model.RarityCommon, 50, 50, 35, 60},
	{"polar", model.RarityCommon, 55, 40, 45, 60},
	{"blanco", model.RarityCommon, 50, 45, 40, 60},
	{"sprout", model.RarityCommon, 45, 50, 35, 60},
	{"gilly", model.RarityCommon, 50, 50, 35, 60},
	{"eighteen", model.RarityCommon, 55, 40, 45, 60},
	{"melo", model.RarityCommon, 50, 45, 40, 60},
	{"armstrong", model.RarityCommon, 45, 50, 35, 60},
	{"gizmo", model.RarityCommon, 50, 50, 35, 60},
	{"yum yum", model.RarityCommon, 55, 40, 45, 60},
	{"sam", model.RarityCommon, 50, 45, 40, 60},
	{"dottie", model.RarityCommon, 45, 50, 35, 60},
	{"skittles", model.RarityCommon, 50, 50, 35, 60},
	{"rory", model.RarityCommon, 55, 40, 45, 60},
	{"sonar", model.RarityCommon, 50, 45, 40, 60},
	{"aero", model.RarityCommon, 45, 50, 35, 60},
	{"skelly", model.RarityCommon, 50, 50, 35, 60},
	{"zap", model.RarityCommon, 55, 40, 45, 60},
	{"mushy", model.RarityCommon, 50, 45, 40, 60},
	{"pane", model.RarityCommon, 45, 50, 35, 60},
	{"tomb", model.RarityCommon, 50, 50, 35, 60},
	{"torty", model.RarityCommon, 55, 40, 45, 60},
	{"tatters", model.RarityCommon, 50, 45, 40, 60},
	{"smoak", model.RarityCommon, 45, 50, 35, 60},
	{"fin", model.RarityCommon, 50, 50, 35, 60},
	{"bao", model.RarityCommon, 55, 40, 45, 60},
	{"geo", model.RarityCommon, 50, 45, 40, 60},
	{"mack", model.RarityCommon, 45, 50, 35, 60},
	{"scabz", model.RarityCommon, 50, 50, 35, 60},
	{"cosmo", model.RarityCommon, 55, 40, 45, 60},
	{"fuse", model.RarityCommon, 50, 45, 40, 60},
	{"flare", model.RarityCommon, 45, 50, 35, 60},
	{"tanky", model.RarityCommon, 50, 50, 35, 60},
	{"wasteland", model.RarityCommon, 55, 40, 45, 60},
	{"voodoo", model.RarityCommon, 50, 45, 40, 60},
	{"swamp", model.RarityCommon, 45, 50, 35, 60},
	{"samurai", model.RarityCommon, 50, 50, 35, 60},
	{"robot", model.RarityCommon, 55, 40, 45, 60},
	{"pepe", model.RarityCommon, 50, 45, 40, 60},
	{"medusa", model.RarityCommon, 45, 50, 35, 60},

	{"celeste", model.RarityUncommon, 70, 65, 60, 40},
	{"byte", model.RarityUncommon, 65, 70, 55, 40},
	{"ember", model.RarityUncommon, 70, 70, 55, 40},
	{"molten", model.RarityUncommon, 70, 70, 55, 40},
	{"polar", model.RarityUncommon, 75, 60, 65, 40},
	{"gilly", model.RarityUncommon, 70, 70, 55, 40},
	{"armstrong", model.RarityUncommon, 65, 70, 55, 40},
	{"gizmo", model.RarityUncommon, 70, 70, 55, 40},
	{"skittles", model.RarityUncommon, 70, 70, 55, 40},
	{"aero", model.RarityUncommon, 65, 70, 55, 40},
	{"zap", model.RarityUncommon, 75, 60, 65, 40},
	{"tanky", model.RarityUncommon, 70, 70, 55, 40},
	{"samurai", model.RarityUncommon, 70, 70, 55, 40},
	{"robot", model.RarityUncommon, 75, 60, 65, 40},

	{"ember", model.RarityRare, 90, 90, 75, 25},
	{"molten", model.RarityRare, 90, 90, 75, 25},
	{"polar", model.RarityRare, 95, 80, 85, 25},
	{"gizmo", model.RarityRare, 90, 90, 75, 25},
	{"zap", model.RarityRare, 95, 80, 85, 25},
	{"tanky", model.RarityRare, 90, 90, 75, 25},
	{"samurai", model.RarityRare, 90, 90, 75, 25},
	{"robot", model.RarityRare, 95, 80, 85, 25},

	{"polar", model.RarityEpic, 120, 100, 110, 15},
	{"zap", model.RarityEpic, 120, 100, 110, 15},
	{"robot", model.RarityEpic, 120, 100, 110, 15},

	{"polar", model.RarityLegendary, 150, 130, 140, 5},
	{"zap", model.RarityLegendary, 150, 130, 140, 5},
	{"robot", model.RarityLegendary, 150, 130, 140, 5},
}

// ByRarity returns all templates of the given rarity.
func ByRarity(r model.Rarity) []Template {
	var out []Template
	for _, t := range Creatures {
		if t.Rarity == r {
			out = append(out, t)
		}
	}
	return out
}

// Instantiate creates a level-1 creature from a template at full HP.
func Instantiate(t Template) model.Creature {
	return model.Creature{
		ID:     uuid.New().String(),
		Name:   t.Name,
		Rarity: t.Rarity,
		Level:  1,
		Stats: model.Stats{
			HP:      t.HP,
			MaxHP:   t.HP,
			Attack:  t.Attack,
			Defense: t.Defense,
		},
		CaughtAt: time.Now(),
	}
}
