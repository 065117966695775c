package models

import "fmt"

const (
	DefaultImageURL       = "/static/images/default-pic.svg"
	DefaultHeaderImageURL = "/static/images/warbler-hero.svg"
)

// User represents a user in the database. Password holds a bcrypt hash.
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Username       string `gorm:"uniqueIndex;not null"`
	Email          string `gorm:"uniqueIndex;not null"`
	Password       string `gorm:"not null"`
	ImageURL       string
	HeaderImageURL string
	Bio            string `gorm:"type:text"`
	Location       string
}

func (u User) String() string {
	return fmt.Sprintf("<User #%d: %s, %s>", u.ID, u.Username, u.Email)
}

// Avatar returns the profile image, falling back to the default picture.
func (u User) Avatar() string {
	if u.ImageURL == "" {
		return DefaultImageURL
	}
	return u.ImageURL
}

func (u User) Header() string {
	if u.HeaderImageURL == "" {
		return DefaultHeaderImageURL
	}
	return u.HeaderImageURL
}
