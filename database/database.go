package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"warbler/models"
)

const sqlitePrefix = "sqlite://"

type DB struct {
	*gorm.DB
}

// New opens the database named by url. postgres:// and postgresql:// URLs
// use the PostgreSQL driver, sqlite://<path> opens a SQLite file or
// in-memory database.
func New(url string) (*DB, error) {
	dialector, isSQLite, err := dialectorFor(url)
	if err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if isSQLite {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		// one connection keeps in-memory databases alive and avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
		if err := gormDB.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return &DB{gormDB}, nil
}

// Migrate creates or updates the tables for every model.
func (db *DB) Migrate() error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (db *DB) Ping() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(url string) (gorm.Dialector, bool, error) {
	switch {
	case strings.HasPrefix(url, sqlitePrefix):
		return sqlite.Open(strings.TrimPrefix(url, sqlitePrefix)), true, nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), false, nil
	default:
		return nil, false, fmt.Errorf("unsupported database url %q", url)
	}
}
