package models

// Like records that a user liked a message. The composite key allows one
// like per user and message.
type Like struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	MessageID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName overrides the table name used by GORM
func (Like) TableName() string {
	return "likes"
}
