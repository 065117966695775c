package repositories

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"warbler/models"
)

func TestMessageModel(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db.DB)
	messages := NewMessageRepository(db.DB)
	ctx := context.Background()

	u := signup(t, users, "testuser")
	before := time.Now().Add(-time.Second)
	m := post(t, messages, u.ID, "test message")

	if m.ID == 0 {
		t.Fatal("Expected message to be persisted")
	}
	if m.Timestamp.Before(before) {
		t.Errorf("Expected timestamp to default to now, got %s", m.Timestamp)
	}

	own, err := messages.ByUser(ctx, u.ID, 100)
	if err != nil {
		t.Fatalf("ByUser failed: %v", err)
	}
	if len(own) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(own))
	}
	if own[0].User.Username != "testuser" {
		t.Errorf("Expected author to be preloaded, got %q", own[0].User.Username)
	}
}

func TestCreateMessageValidation(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db.DB)
	messages := NewMessageRepository(db.DB)
	ctx := context.Background()

	u := signup(t, users, "testuser")

	cases := map[string]*models.Message{
		"empty":    {Text: "   ", UserID: u.ID},
		"too long": {Text: strings.Repeat("a", models.MaxMessageLength+1), UserID: u.ID},
		"no owner": {Text: "hi"},
	}
	for name, m := range cases {
		if err := messages.Create(ctx, m); !errors.Is(err, ErrInvalidMessage) {
			t.Errorf("%s: expected ErrInvalidMessage, got %v", name, err)
		}
	}

	exact := &models.Message{Text: strings.Repeat("é", models.MaxMessageLength), UserID: u.ID}
	if err := messages.Create(ctx, exact); err != nil {
		t.Errorf("Expected %d characters to be accepted, got %v", models.MaxMessageLength, err)
	}
}

func TestDeleteMessage(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db.DB)
	messages := NewMessageRepository(db.DB)
	ctx := context.Background()

	u := signup(t, users, "testuser")
	fan := signup(t, users, "fan")
	m := post(t, messages, u.ID, "Hello")
	messages.ToggleLike(ctx, fan.ID, m.ID)

	if err := messages.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := messages.GetByID(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	liked, _ := messages.LikedBy(ctx, fan.ID)
	if len(liked) != 0 {
		t.Errorf("Expected likes to be removed with the message, got %d", len(liked))
	}
	if err := messages.Delete(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestTimeline(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db.DB)
	messages := NewMessageRepository(db.DB)
	ctx := context.Background()

	me := signup(t, users, "me")
	friend := signup(t, users, "friend")
	stranger := signup(t, users, "stranger")
	users.Follow(ctx, me.ID, friend.ID)

	post(t, messages, me.ID, "mine")
	post(t, messages, friend.ID, "friend's")
	post(t, messages, stranger.ID, "stranger's")

	timeline, err := messages.Timeline(ctx, me.ID, 100)
	if err != nil {
		t.Fatalf("Timeline failed: %v", err)
	}
	if len(timeline) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(timeline))
	}
	if timeline[0].Text != "friend's" || timeline[1].Text != "mine" {
		t.Errorf("Expected newest first, got %q then %q", timeline[0].Text, timeline[1].Text)
	}
	for _, m := range timeline {
		if m.UserID == stranger.ID {
			t.Error("Did not expect messages from unfollowed users")
		}
	}

	limited, _ := messages.Timeline(ctx, me.ID, 1)
	if len(limited) != 1 {
		t.Errorf("Expected limit to apply, got %d", len(limited))
	}
}

func TestToggleLike(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db.DB)
	messages := NewMessageRepository(db.DB)
	ctx := context.Background()

	author := signup(t, users, "author")
	fan := signup(t, users, "fan")
	m := post(t, messages, author.ID, "Like me")

	liked, err := messages.ToggleLike(ctx, fan.ID, m.ID)
	if err != nil || !liked {
		t.Fatalf("Expected like, got %v, %v", liked, err)
	}

	ids, _ := messages.LikedIDs(ctx, fan.ID)
	if !ids[m.ID] {
		t.Error("Expected message in liked ids")
	}
	list, _ := messages.LikedBy(ctx, fan.ID)
	if len(list) != 1 || list[0].User.Username != "author" {
		t.Errorf("Expected one liked message by author, got %v", list)
	}

	liked, err = messages.ToggleLike(ctx, fan.ID, m.ID)
	if err != nil || liked {
		t.Fatalf("Expected unlike, got %v, %v", liked, err)
	}
	list, _ = messages.LikedBy(ctx, fan.ID)
	if len(list) != 0 {
		t.Errorf("Expected no liked messages, got %d", len(list))
	}
}
