package models

import "gorm.io/gorm"

// Comment is a user comment on a recipe. ParentCommentID allows threading;
// it is not validated against an existing comment.
type Comment struct {
	gorm.Model
	RecipeID        uint   `gorm:"not null;index"`
	UserID          uint   `gorm:"not null"`
	Content         string `gorm:"not null"`
	ParentCommentID *uint  `gorm:"index"`

	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
	User   User   `gorm:"foreignKey:UserID"`
}
