package models

// Follow is a directed edge: UserFollowingID follows UserBeingFollowedID.
type Follow struct {
	UserBeingFollowedID uint `gorm:"primaryKey;autoIncrement:false"`
	UserFollowingID     uint `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName overrides the table name used by GORM
func (Follow) TableName() string {
	return "follows"
}
