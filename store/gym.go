package store

import (
	"errors"
	"strings"

	"github.com/e9games/creaturebot/model"
	"gorm.io/gorm"
)

// GetActiveGym returns the running gym, or ErrNotFound.
func (s *Store) GetActiveGym() (*model.GymBattle, error) {
	var g model.GymBattle
	err := s.db.Where("status = ?", model.GymActive).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGym fetches any gym by id, including finished ones.
func (s *Store) GetGym(id string) (*model.GymBattle, error) {
	var g model.GymBattle
	err := s.db.First(&g, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// StartGym inserts a gym if no active one exists. Returns false when
// one is already running.
func (s *Store) StartGym(g *model.GymBattle) (bool, error) {
	unlock := s.acquire(gymKey)
	defer unlock()

	if _, err := s.GetActiveGym(); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	return true, s.db.Create(g).Error
}

// UpdateActiveGym runs fn on the active gym under the gym lock and
// persists it. Round advancement and expiry transitions serialize here.
func (s *Store) UpdateActiveGym(fn func(g *model.GymBattle) error) error {
	unlock := s.acquire(gymKey)
	defer unlock()

	g, err := s.GetActiveGym()
	if err != nil {
		return err
	}
	if err := fn(g); err != nil {
		return err
	}
	return s.db.Save(g).Error
}

// LogGymAttack appends one attack record.
func (s *Store) LogGymAttack(a *model.GymAttackResult) error {
	return s.db.Create(a).Error
}

// AddGymParticipant records badge eligibility. Duplicate attacks by the
// same user are collapsed by the unique index.
func (s *Store) AddGymParticipant(gymID, userID string) error {
	err := s.db.Create(&model.GymParticipant{GymID: gymID, UserID: userID}).Error
	if err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err)) {
		return nil
	}
	return err
}

// GymParticipants lists badge-eligible users for a gym.
func (s *Store) GymParticipants(gymID string) ([]string, error) {
	var rows []model.GymParticipant
	if err := s.db.Where("gym_id = ?", gymID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.UserID
	}
	return out, nil
}

// isUniqueViolation matches driver-specific duplicate-key errors that
// gorm does not translate for every dialect.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}
