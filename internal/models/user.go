package models

import "gorm.io/gorm"

// User represents an account in the system. Everything other users can see
// lives on Profile; this row only carries credentials.
type User struct {
	gorm.Model
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	DisplayName  string `gorm:"size:255"`
}
