package model

import "time"

// ChallengeStatus is a stored state, including the terminal ones.
// Declined and expired challenges stay on record but are hidden from
// pending-challenge queries.
type ChallengeStatus string

const (
	ChallengePending   ChallengeStatus = "pending"
	ChallengeAccepted  ChallengeStatus = "accepted"
	ChallengeDeclined  ChallengeStatus = "declined"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeExpired   ChallengeStatus = "expired"
)

// Active reports whether the challenge still binds its participants.
func (s ChallengeStatus) Active() bool {
	return s == ChallengePending || s == ChallengeAccepted
}

// Challenge is one PvP challenge between two users. Creature ids fill
// in during the selection handshake.
type Challenge struct {
	ID                 string          `gorm:"primaryKey;size:64" json:"id"`
	ChallengerID       string          `gorm:"index:idx_challenger;size:64;not null" json:"challenger_id"`
	OpponentID         string          `gorm:"index:idx_opponent;size:64;not null" json:"opponent_id"`
	ChallengerCreature string          `gorm:"size:64" json:"challenger_creature"`
	OpponentCreature   string          `gorm:"size:64" json:"opponent_creature"`
	Status             ChallengeStatus `gorm:"index;size:16;not null" json:"status"`
	WinnerID           string          `gorm:"size:64" json:"winner_id"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Challenge) TableName() string { return "challenges" }
