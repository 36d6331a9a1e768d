package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"solispdv/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the terminal's local SQLite file and migrates the tables
// of the durable state: sync timestamps, preferences and the open-caixa
// snapshot. The agent keeps everything else.
func NewDatabase(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("database: create dir: %w", err)
		}
	}

	// WAL + busy timeout: the HTTP handlers and the background jobs share the file.
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates the local tables. Also used by tests that
// open their own database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.RegistroSincronizacao{},
		&model.Preferencia{},
		&model.CaixaSnapshot{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return nil
}
