package repositories

import (
	"context"

	"warbler/models"
)

type UserRepository interface {
	Signup(ctx context.Context, username, email, password, imageURL string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	Search(ctx context.Context, q string) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	Follow(ctx context.Context, followerID, followedID uint) error
	Unfollow(ctx context.Context, followerID, followedID uint) error
	IsFollowing(ctx context.Context, userID, otherID uint) (bool, error)
	IsFollowedBy(ctx context.Context, userID, otherID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
	Stats(ctx context.Context, userID uint) (UserStats, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	Delete(ctx context.Context, id uint) error
	ByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	Timeline(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	LikedBy(ctx context.Context, userID uint) ([]models.Message, error)
	LikedIDs(ctx context.Context, userID uint) (map[uint]bool, error)
	ToggleLike(ctx context.Context, userID, messageID uint) (bool, error)
}

// UserStats are the counters shown on a profile.
type UserStats struct {
	Messages  int64
	Following int64
	Followers int64
	Likes     int64
}
