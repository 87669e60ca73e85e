package models

import "time"

// Favorite is a join row marking a recipe as favorited by a user.
// The primary key is a composite of (UserID, RecipeID); presence of the row
// is the membership state.
type Favorite struct {
	UserID    uint `gorm:"primaryKey"`
	RecipeID  uint `gorm:"primaryKey"`
	CreatedAt time.Time

	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
