package store

import (
	"errors"
	"time"

	"github.com/e9games/creaturebot/model"
	"gorm.io/gorm"
)

// GetBoss returns the active boss, or ErrNotFound when none is up.
func (s *Store) GetBoss() (*model.BossState, error) {
	var b model.BossState
	err := s.db.First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SpawnBoss inserts a boss if none is active. Returns false when one
// already exists.
func (s *Store) SpawnBoss(b *model.BossState) (bool, error) {
	unlock := s.acquire(bossKey)
	defer unlock()

	if _, err := s.GetBoss(); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	return true, s.db.Create(b).Error
}

// UpdateBoss runs fn on the active boss under the boss lock. fn may
// return deleteBoss=true to remove the singleton (boss defeated).
// Returns ErrNotFound if no boss is active at lock time, which catches
// in-flight attacks against an already-killed boss.
func (s *Store) UpdateBoss(fn func(b *model.BossState) (deleteBoss bool, err error)) error {
	unlock := s.acquire(bossKey)
	defer unlock()

	b, err := s.GetBoss()
	if err != nil {
		return err
	}
	deleteBoss, err := fn(b)
	if err != nil {
		return err
	}
	if deleteBoss {
		return s.db.Delete(b).Error
	}
	return s.db.Save(b).Error
}

// LogBossAttack appends one attack record.
func (s *Store) LogBossAttack(a *model.BossAttack) error {
	return s.db.Create(a).Error
}

// BossAttacks lists the attack log for one boss, newest first.
func (s *Store) BossAttacks(bossID string, limit int) ([]model.BossAttack, error) {
	var out []model.BossAttack
	err := s.db.
		Where("boss_id = ?", bossID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// TouchAttackStats records an attack for cooldown display and totals.
func (s *Store) TouchAttackStats(userID string, kind model.AttackKind, damage int, now time.Time) error {
	var st model.UserAttackStats
	err := s.db.Where("user_id = ? AND kind = ?", userID, kind).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		st = model.UserAttackStats{UserID: userID, Kind: kind}
	} else if err != nil {
		return err
	}
	st.Attacks++
	st.TotalDamage += int64(damage)
	st.LastAttackAt = now
	return s.db.Save(&st).Error
}

// GetAttackStats returns the user's attack stats for one kind, or a
// zero record if they never attacked.
func (s *Store) GetAttackStats(userID string, kind model.AttackKind) (*model.UserAttackStats, error) {
	var st model.UserAttackStats
	err := s.db.Where("user_id = ? AND kind = ?", userID, kind).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.UserAttackStats{UserID: userID, Kind: kind}, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}
