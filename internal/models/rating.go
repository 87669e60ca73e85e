package models

import "gorm.io/gorm"

// Rating is a single user's star rating for a recipe. The composite unique
// index enforces at most one row per (user, recipe); resubmitting overwrites
// the value in place.
type Rating struct {
	gorm.Model
	RecipeID uint `gorm:"not null;index;uniqueIndex:idx_ratings_user_recipe"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_ratings_user_recipe"`
	Rating   int  `gorm:"not null;check:rating >= 1 AND rating <= 5"`

	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}
