package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// GymStatus is the lifecycle of a gym battle.
type GymStatus string

const (
	GymActive    GymStatus = "active"
	GymCompleted GymStatus = "completed"
	GymFailed    GymStatus = "failed"
)

// RoundStatus is the lifecycle of one gym round.
type RoundStatus string

const (
	RoundActive    RoundStatus = "active"
	RoundCompleted RoundStatus = "completed"
)

// GymBoss is the boss of one round, embedded in the round JSON.
type GymBoss struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HP       int    `json:"hp"`
	MaxHP    int    `json:"max_hp"`
	Attack   int    `json:"attack"`
	Defense  int    `json:"defense"`
	Round    int    `json:"round"`
	ImageURL string `json:"image_url"`
}

// GymRound is one of the three boss encounters. Rounds are appended as
// the gym advances, never removed.
type GymRound struct {
	RoundNumber int         `json:"round_number"`
	Boss        GymBoss     `json:"boss"`
	Status      RoundStatus `json:"status"`
	StartedAt   time.Time   `json:"started_at"`
	EndedAt     *time.Time  `json:"ended_at,omitempty"`
}

// GymBattle is a gym encounter: three rounds against escalating bosses
// under one 48-hour deadline. At most one row has status active.
type GymBattle struct {
	ID           string         `gorm:"primaryKey;size:64" json:"id"`
	Status       GymStatus      `gorm:"index;size:16;not null" json:"status"`
	CurrentRound int            `gorm:"default:1" json:"current_round"`
	Rounds       datatypes.JSON `json:"rounds"`
	CreatedBy    string         `gorm:"size:64" json:"created_by"`
	StartedAt    time.Time      `json:"started_at"`
	Deadline     time.Time      `gorm:"index" json:"deadline"`
	EndedAt      *time.Time     `json:"ended_at,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (GymBattle) TableName() string { return "gym_battles" }

// RoundList decodes the rounds.
func (g *GymBattle) RoundList() []GymRound {
	var out []GymRound
	if len(g.Rounds) > 0 {
		_ = json.Unmarshal(g.Rounds, &out)
	}
	return out
}

// SetRounds encodes the rounds back.
func (g *GymBattle) SetRounds(list []GymRound) {
	if list == nil {
		list = []GymRound{}
	}
	raw, _ := json.Marshal(list)
	g.Rounds = datatypes.JSON(raw)
}

// GymAttackResult logs one attack within a gym round.
type GymAttackResult struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GymID        string    `gorm:"index:idx_gym_attack;size:64;not null" json:"gym_id"`
	Round        int       `gorm:"not null" json:"round"`
	UserID       string    `gorm:"index;size:64;not null" json:"user_id"`
	CreatureID   string    `gorm:"size:64" json:"creature_id"`
	Damage       int       `gorm:"not null" json:"damage"`
	CounterDmg   int       `gorm:"default:0" json:"counter_dmg"`
	CreatureDied bool      `gorm:"default:false" json:"creature_died"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (GymAttackResult) TableName() string { return "gym_attack_results" }

// GymParticipant records badge eligibility. Only attackers of the final
// round are recorded; earlier rounds do not count toward the badge.
type GymParticipant struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GymID     string    `gorm:"uniqueIndex:idx_gym_user;size:64;not null" json:"gym_id"`
	UserID    string    `gorm:"uniqueIndex:idx_gym_user;size:64;not null" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (GymParticipant) TableName() string { return "gym_participants" }
