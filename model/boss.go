package model

import "time"

// BossState is the single active boss. At most one row exists at a
// time; the row is deleted on defeat.
type BossState struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	HP        int       `gorm:"not null" json:"hp"`
	MaxHP     int       `gorm:"not null" json:"max_hp"`
	Attack    int       `gorm:"not null" json:"attack"`
	Defense   int       `gorm:"not null" json:"defense"`
	SpawnerID string    `gorm:"size:64" json:"spawner_id"`
	ImageURL  string    `gorm:"size:255" json:"image_url"`
	SpawnedAt time.Time `gorm:"autoCreateTime" json:"spawned_at"`
}

func (BossState) TableName() string { return "boss_state" }

// BossAttack logs one attack exchange against a boss or gym boss.
type BossAttack struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BossID       string    `gorm:"index:idx_boss_attack;size:64;not null" json:"boss_id"`
	UserID       string    `gorm:"index;size:64;not null" json:"user_id"`
	CreatureID   string    `gorm:"size:64" json:"creature_id"`
	Damage       int       `gorm:"not null" json:"damage"`
	CounterDmg   int       `gorm:"default:0" json:"counter_dmg"`
	CreatureDied bool      `gorm:"default:false" json:"creature_died"`
	KillingBlow  bool      `gorm:"default:false" json:"killing_blow"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (BossAttack) TableName() string { return "boss_attacks" }

// AttackKind separates boss and gym cooldown tracking.
type AttackKind string

const (
	AttackBoss AttackKind = "boss"
	AttackGym  AttackKind = "gym"
)

// UserAttackStats tracks per-user attack counters for one kind. The
// count is informational; only the 30s cooldown is enforced.
type UserAttackStats struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string     `gorm:"uniqueIndex:idx_user_kind;size:64;not null" json:"user_id"`
	Kind         AttackKind `gorm:"uniqueIndex:idx_user_kind;size:8;not null" json:"kind"`
	Attacks      int        `gorm:"default:0" json:"attacks"`
	TotalDamage  int64      `gorm:"default:0" json:"total_damage"`
	LastAttackAt time.Time  `json:"last_attack_at"`
}

func (UserAttackStats) TableName() string { return "user_attack_stats" }
