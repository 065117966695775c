package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"warbler/models"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Signup hashes the password and inserts a new user.
func (r *userRepository) Signup(ctx context.Context, username, email, password, imageURL string) (*models.User, error) {
	if err := r.checkUnique(ctx, 0, username, email); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if imageURL == "" {
		imageURL = models.DefaultImageURL
	}
	user := &models.User{
		Username:       username,
		Email:          email,
		Password:       string(hashedPassword),
		ImageURL:       imageURL,
		HeaderImageURL: models.DefaultHeaderImageURL,
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueErr(err) {
			return nil, r.whichTaken(ctx, 0, username, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user whose username and password match. Unknown
// usernames and wrong passwords both yield ErrInvalidCredentials.
func (r *userRepository) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Search lists users whose username contains q, ignoring case. An empty q
// lists everyone.
func (r *userRepository) Search(ctx context.Context, q string) ([]models.User, error) {
	var users []models.User
	query := r.db.WithContext(ctx).Order("username")
	if q = strings.TrimSpace(q); q != "" {
		query = query.Where(`LOWER(username) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(q))+"%")
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// Update saves every profile field of user. Username and email clashes
// with other users come back as ErrUsernameTaken / ErrEmailTaken.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.checkUnique(ctx, user.ID, user.Username, user.Email); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueErr(err) {
			return r.whichTaken(ctx, user.ID, user.Username, user.Email)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes the user with every row that depends on it in one
// transaction: likes on their messages, their own likes, follow edges in
// both directions, their messages and finally the user.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var messageIDs []uint
		if err := tx.Model(&models.Message{}).Where("user_id = ?", id).Pluck("id", &messageIDs).Error; err != nil {
			return fmt.Errorf("failed to list messages: %w", err)
		}
		if len(messageIDs) > 0 {
			if err := tx.Where("message_id IN ?", messageIDs).Delete(&models.Like{}).Error; err != nil {
				return fmt.Errorf("failed to delete likes on messages: %w", err)
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes: %w", err)
		}
		if err := tx.Where("user_being_followed_id = ? OR user_following_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return fmt.Errorf("failed to delete follows: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Follow a user. Following twice is a no-op.
func (r *userRepository) Follow(ctx context.Context, followerID, followedID uint) error {
	follow := models.Follow{UserBeingFollowedID: followedID, UserFollowingID: followerID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error
	if err != nil {
		return fmt.Errorf("failed to follow user: %w", err)
	}
	return nil
}

// Unfollow a user
func (r *userRepository) Unfollow(ctx context.Context, followerID, followedID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_being_followed_id = ? AND user_following_id = ?", followedID, followerID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}
	return nil
}

// IsFollowing reports whether userID follows otherID.
func (r *userRepository) IsFollowing(ctx context.Context, userID, otherID uint) (bool, error) {
	return r.edgeExists(ctx, userID, otherID)
}

// IsFollowedBy reports whether otherID follows userID.
func (r *userRepository) IsFollowedBy(ctx context.Context, userID, otherID uint) (bool, error) {
	return r.edgeExists(ctx, otherID, userID)
}

// Followers lists the users following userID.
func (r *userRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.user_following_id = users.id").
		Where("follows.user_being_followed_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return users, nil
}

// Following lists the users userID follows.
func (r *userRepository) Following(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.user_being_followed_id = users.id").
		Where("follows.user_following_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return users, nil
}

func (r *userRepository) Stats(ctx context.Context, userID uint) (UserStats, error) {
	var s UserStats
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Message{}).Where("user_id = ?", userID).Count(&s.Messages).Error; err != nil {
		return s, fmt.Errorf("failed to count messages: %w", err)
	}
	if err := db.Model(&models.Follow{}).Where("user_following_id = ?", userID).Count(&s.Following).Error; err != nil {
		return s, fmt.Errorf("failed to count following: %w", err)
	}
	if err := db.Model(&models.Follow{}).Where("user_being_followed_id = ?", userID).Count(&s.Followers).Error; err != nil {
		return s, fmt.Errorf("failed to count followers: %w", err)
	}
	if err := db.Model(&models.Like{}).Where("user_id = ?", userID).Count(&s.Likes).Error; err != nil {
		return s, fmt.Errorf("failed to count likes: %w", err)
	}
	return s, nil
}

func (r *userRepository) edgeExists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return count > 0, nil
}

// checkUnique fails when another user (any id but selfID) already holds
// username or email.
func (r *userRepository) checkUnique(ctx context.Context, selfID uint, username, email string) error {
	taken, err := r.taken(ctx, selfID, "username", username)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}
	taken, err = r.taken(ctx, selfID, "email", email)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

// whichTaken names the clashing column after the insert lost a race.
func (r *userRepository) whichTaken(ctx context.Context, selfID uint, username, email string) error {
	if err := r.checkUnique(ctx, selfID, username, email); err != nil {
		return err
	}
	return ErrUsernameTaken
}

func (r *userRepository) taken(ctx context.Context, selfID uint, column, value string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where(column+" = ? AND id <> ?", value, selfID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", column, err)
	}
	return count > 0, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
