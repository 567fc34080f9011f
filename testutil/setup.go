package testutil

import (
	"testing"

	"github.com/e9games/creaturebot/cache"
	"github.com/e9games/creaturebot/config"
	"github.com/e9games/creaturebot/db"
	"github.com/e9games/creaturebot/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB opens an isolated in-memory database with all tables
// migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(config.DatabaseConfig{Mode: db.ModeSQLiteMemory})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(gdb))
	return gdb
}

// SetupTestCache returns an in-process cache.
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewLocal()
	require.NoError(t, err)
	return c
}
