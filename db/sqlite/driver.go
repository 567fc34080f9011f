package sqlite

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open creates a GORM *DB backed by a SQLite file.
func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// OpenMemory creates a GORM *DB backed by a private in-memory SQLite
// database. Each call returns an independent database; the shared-cache
// DSN keeps all pooled connections pointed at the same one.
func OpenMemory() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	return Open(dsn)
}
