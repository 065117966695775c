package database

import (
	"fmt"

	"github.com/google/uuid"
)

// NewMemory opens a fresh, migrated in-memory SQLite database. Every call
// gets its own database.
func NewMemory() (*DB, error) {
	url := fmt.Sprintf("%sfile:%s?mode=memory&cache=shared", sqlitePrefix, uuid.NewString())
	db, err := New(url)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
