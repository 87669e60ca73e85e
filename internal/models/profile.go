package models

import "gorm.io/gorm"

// Profile is created lazily on a user's first login. The unique index on
// UserID is what guarantees at most one profile per user: two simultaneous
// first logins race to insert, the loser gets a duplicate-key error and
// re-fetches the winner's row.
type Profile struct {
	gorm.Model
	UserID    uint   `gorm:"uniqueIndex;not null"`
	Username  string `gorm:"size:255;unique;not null"`
	Bio       string
	AvatarKey string `gorm:"size:512"`
	IsAdmin   bool   `gorm:"not null;default:false"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}
