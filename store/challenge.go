package store

import (
	"errors"
	"time"

	"github.com/e9games/creaturebot/model"
	"gorm.io/gorm"
)

// GetChallenge fetches a challenge by id.
func (s *Store) GetChallenge(id string) (*model.Challenge, error) {
	var ch model.Challenge
	err := s.db.First(&ch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// CreateChallenge inserts a new challenge record.
func (s *Store) CreateChallenge(ch *model.Challenge) error {
	return s.db.Create(ch).Error
}

// UpdateChallenge runs fn on the challenge under its lock and persists
// the result. State transitions racing on the same challenge serialize
// here.
func (s *Store) UpdateChallenge(id string, fn func(ch *model.Challenge) error) error {
	unlock := s.acquire(challengeKey(id))
	defer unlock()

	ch, err := s.GetChallenge(id)
	if err != nil {
		return err
	}
	if err := fn(ch); err != nil {
		return err
	}
	return s.db.Save(ch).Error
}

// ActiveChallengeForUser returns the user's pending or accepted
// challenge on either side, or ErrNotFound. A user is party to at most
// one at a time.
func (s *Store) ActiveChallengeForUser(userID string) (*model.Challenge, error) {
	var ch model.Challenge
	err := s.db.
		Where("(challenger_id = ? OR opponent_id = ?) AND status IN ?",
			userID, userID,
			[]model.ChallengeStatus{model.ChallengePending, model.ChallengeAccepted}).
		First(&ch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// StaleChallenges lists challenges whose status has outlived the given
// age, for the cleanup sweep.
func (s *Store) StaleChallenges(status model.ChallengeStatus, olderThan time.Time) ([]model.Challenge, error) {
	var out []model.Challenge
	err := s.db.
		Where("status = ? AND updated_at < ?", status, olderThan).
		Find(&out).Error
	return out, err
}

// DeleteChallengesWithStatus removes all challenges in the given
// statuses. Admin and cleanup use.
func (s *Store) DeleteChallengesWithStatus(statuses ...model.ChallengeStatus) (int64, error) {
	res := s.db.Where("status IN ?", statuses).Delete(&model.Challenge{})
	return res.RowsAffected, res.Error
}
