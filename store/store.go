package store

import (
	"errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence gateway. Every game operation goes through
// it as a single read-modify-write under a per-key mutex, so two
// attackers racing on the same boss serialize instead of both reading
// the same HP and both claiming the kill.
type Store struct {
	db     *gorm.DB
	locks  sync.Map // key → *sync.Mutex
	logger *zap.Logger
}

// New creates a Store.
func New(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// DB exposes the underlying handle for read-only queries that need no
// serialization (status views, leaderboards, admin listings).
func (s *Store) DB() *gorm.DB {
	return s.db
}

const (
	bossKey = "boss"
	gymKey  = "gym"
)

func userKey(userID string) string  { return "user:" + userID }
func challengeKey(id string) string { return "challenge:" + id }

// acquire locks the named key and returns its unlock func. Mutexes are
// created on first use and never removed; the key space is small.
func (s *Store) acquire(key string) func() {
	v, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// acquireOrdered locks two user keys in deterministic order so that
// concurrent duels between the same pair cannot deadlock.
func (s *Store) acquireOrdered(a, b string) func() {
	if b < a {
		a, b = b, a
	}
	unlockA := s.acquire(userKey(a))
	if a == b {
		return unlockA
	}
	unlockB := s.acquire(userKey(b))
	return func() {
		unlockB()
		unlockA()
	}
}
