package store

import (
	"errors"
	"time"

	"github.com/e9games/creaturebot/model"
	"gorm.io/gorm"
)

// loadOrCreateInventory fetches a user's row, creating it lazily on
// first access. Callers must hold the user lock.
func (s *Store) loadOrCreateInventory(userID string) (*model.UserInventory, error) {
	var inv model.UserInventory
	err := s.db.Where("user_id = ?", userID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		inv = model.UserInventory{UserID: userID, QuotaResetAt: time.Now()}
		inv.SetCreatures(nil)
		inv.SetItems(nil)
		inv.SetBadges(nil)
		if err := s.db.Create(&inv).Error; err != nil {
			return nil, err
		}
		return &inv, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInventory returns a user's inventory, creating an empty one on
// first access.
func (s *Store) GetInventory(userID string) (*model.UserInventory, error) {
	unlock := s.acquire(userKey(userID))
	defer unlock()
	return s.loadOrCreateInventory(userID)
}

// UpdateUser runs fn on the user's inventory under the user lock and
// persists the result. If fn errors, nothing is written.
func (s *Store) UpdateUser(userID string, fn func(inv *model.UserInventory) error) error {
	unlock := s.acquire(userKey(userID))
	defer unlock()

	inv, err := s.loadOrCreateInventory(userID)
	if err != nil {
		return err
	}
	if err := fn(inv); err != nil {
		return err
	}
	return s.db.Save(inv).Error
}

// UpdateTwoUsers runs fn with both inventories held, for duel
// resolution that mutates winner and loser together.
func (s *Store) UpdateTwoUsers(userA, userB string, fn func(a, b *model.UserInventory) error) error {
	unlock := s.acquireOrdered(userA, userB)
	defer unlock()

	invA, err := s.loadOrCreateInventory(userA)
	if err != nil {
		return err
	}
	invB, err := s.loadOrCreateInventory(userB)
	if err != nil {
		return err
	}
	if err := fn(invA, invB); err != nil {
		return err
	}
	if err := s.db.Save(invA).Error; err != nil {
		return err
	}
	return s.db.Save(invB).Error
}

// GetPendingCreature returns the user's held catch, or ErrNotFound.
func (s *Store) GetPendingCreature(userID string) (*model.PendingCreature, error) {
	var p model.PendingCreature
	err := s.db.Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePendingCreature upserts the user's held catch.
func (s *Store) SavePendingCreature(p *model.PendingCreature) error {
	unlock := s.acquire(userKey(p.UserID))
	defer unlock()
	var existing model.PendingCreature
	err := s.db.Where("user_id = ?", p.UserID).First(&existing).Error
	if err == nil {
		p.ID = existing.ID
		return s.db.Save(p).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.db.Create(p).Error
}

// DeletePendingCreature drops the user's held catch. Idempotent.
func (s *Store) DeletePendingCreature(userID string) error {
	return s.db.Where("user_id = ?", userID).Delete(&model.PendingCreature{}).Error
}

// ExpiredPendingCreatures lists held catches past their deadline.
func (s *Store) ExpiredPendingCreatures(now time.Time) ([]model.PendingCreature, error) {
	var out []model.PendingCreature
	err := s.db.Where("expires_at < ?", now).Find(&out).Error
	return out, err
}

// DeleteInventory removes a user's inventory row. Admin use.
func (s *Store) DeleteInventory(userID string) error {
	unlock := s.acquire(userKey(userID))
	defer unlock()
	return s.db.Where("user_id = ?", userID).Delete(&model.UserInventory{}).Error
}
