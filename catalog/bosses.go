package catalog

import (
	"math/rand"
	"time"

	"github.com/e9games/creaturebot/model"
	"github.com/google/uuid"
)

type bossInfo struct {
	name     string
	imageURL string
}

var bossTable = []bossInfo{
	{"Medusa", "https://i.imgur.com/Ue8xiJt.png"},
	{"Samurai", "https://i.imgur.com/rif6b7Y.png"},
	{"Pepe", "https://i.imgur.com/EycFh07.png"},
}

// NewBoss rolls a random world boss: hp 1000-1500, attack 300-500,
// defense 5-10.
func NewBoss(rng *rand.Rand, spawnerID string) model.BossState {
	info := bossTable[rng.Intn(len(bossTable))]
	hp := rng.Intn(501) + 1000
	return model.BossState{
		ID:        uuid.New().String(),
		Name:      info.name,
		HP:        hp,
		MaxHP:     hp,
		Attack:    rng.Intn(201) + 300,
		Defense:   rng.Intn(6) + 5,
		SpawnerID: spawnerID,
		ImageURL:  info.imageURL,
		SpawnedAt: time.Now(),
	}
}

// NewMythicalReward builds the boss-kill reward creature, a step above
// legendary and always catchable.
func NewMythicalReward(rng *rand.Rand, bossName string) model.Creature {
	hp := rng.Intn(21) + 160
	return model.Creature{
		ID:     uuid.New().String(),
		Name:   bossName,
		Rarity: model.RarityMythical,
		Level:  1,
		Stats: model.Stats{
			HP:      hp,
			MaxHP:   hp,
			Attack:  rng.Intn(21) + 130,
			Defense: rng.Intn(21) + 130,
		},
		CaughtAt: time.Now(),
	}
}

var gymEarlyRoundBosses = []bossInfo{
	{"Pepe", "https://i.imgur.com/OyE2Yve.jpeg"},
	{"Samurai", "https://i.imgur.com/4ckjFOU.png"},
	{"Medusa", "https://i.imgur.com/7hflnde.png"},
	{"4 Arms", "https://i.imgur.com/PVEwWkb.png"},
}

var gymFinalBoss = bossInfo{"Gym Boss", "https://i.imgur.com/WBHbY5Q.png"}

// NewGymBoss builds the boss for the given round. Rounds 1 and 2 pick a
// random boss at fixed stat lines; round 3 is always the Gym Boss.
func NewGymBoss(rng *rand.Rand, round int) model.GymBoss {
	var info bossInfo
	var hp, defense int
	switch round {
	case 1:
		info = gymEarlyRoundBosses[rng.Intn(len(gymEarlyRoundBosses))]
		hp, defense = 1000, 1
	case 2:
		info = gymEarlyRoundBosses[rng.Intn(len(gymEarlyRoundBosses))]
		hp, defense = 1100, 1
	default:
		info = gymFinalBoss
		hp, defense = 1200, 2
	}
	return model.GymBoss{
		ID:       uuid.New().String(),
		Name:     info.name,
		HP:       hp,
		MaxHP:    hp,
		Attack:   100,
		Defense:  defense,
		Round:    round,
		ImageURL: info.imageURL,
	}
}
