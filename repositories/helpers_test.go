package repositories

import (
	"context"
	"testing"

	"warbler/database"
	"warbler/models"
)

func setupDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func signup(t *testing.T, users UserRepository, username string) *models.User {
	t.Helper()
	u, err := users.Signup(context.Background(), username, username+"@test.com", "password", "")
	if err != nil {
		t.Fatalf("Failed to sign up %s: %v", username, err)
	}
	return u
}

func post(t *testing.T, messages MessageRepository, userID uint, text string) *models.Message {
	t.Helper()
	m := &models.Message{Text: text, UserID: userID}
	if err := messages.Create(context.Background(), m); err != nil {
		t.Fatalf("Failed to create message: %v", err)
	}
	return m
}
