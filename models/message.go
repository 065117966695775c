package models

import "time"

// MaxMessageLength bounds Message.Text, counted in characters.
const MaxMessageLength = 140

// Message represents a warble posted by a user
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	Text      string    `gorm:"size:140;not null"`
	Timestamp time.Time `gorm:"not null;autoCreateTime;index"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
