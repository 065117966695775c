package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"warbler/models"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create validates and stores message. The timestamp defaults to now.
func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	message.Text = strings.TrimSpace(message.Text)
	if message.Text == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidMessage)
	}
	if utf8.RuneCountInString(message.Text) > models.MaxMessageLength {
		return fmt.Errorf("%w: text is longer than %d characters", ErrInvalidMessage, models.MaxMessageLength)
	}
	if message.UserID == 0 {
		return fmt.Errorf("%w: owner is required", ErrInvalidMessage)
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetByID loads a message with its author.
func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).Preload("User").First(&message, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &message, nil
}

// Delete removes a message and the likes pointing at it.
func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes: %w", err)
		}
		res := tx.Delete(&models.Message{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete message: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ByUser returns the newest messages written by userID.
func (r *messageRepository) ByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("User").
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get messages for user: %w", err)
	}
	return messages, nil
}

// Timeline returns the newest messages by userID and the users they follow.
func (r *messageRepository) Timeline(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	db := r.db.WithContext(ctx)
	followed := db.Model(&models.Follow{}).
		Select("user_being_followed_id").
		Where("user_following_id = ?", userID)

	var messages []models.Message
	err := db.
		Where("user_id = ? OR user_id IN (?)", userID, followed).
		Preload("User").
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get timeline: %w", err)
	}
	return messages, nil
}

// LikedBy returns the messages userID liked, newest first.
func (r *messageRepository) LikedBy(ctx context.Context, userID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Preload("User").
		Order("messages.timestamp DESC, messages.id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get liked messages: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) LikedIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Pluck("message_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get likes: %w", err)
	}
	liked := make(map[uint]bool, len(ids))
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// ToggleLike likes the message, or unlikes it when already liked. It
// reports whether the message is liked afterwards.
func (r *messageRepository) ToggleLike(ctx context.Context, userID, messageID uint) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		like := models.Like{UserID: userID, MessageID: messageID}
		res := tx.Where("user_id = ? AND message_id = ?", userID, messageID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}
	return liked, nil
}
