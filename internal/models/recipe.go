package models

import "gorm.io/gorm"

// Recipe represents a published recipe.
//
// AverageRating and TotalRatings are derived fields: they are recomputed from
// the full set of Rating rows every time a rating changes and must never be
// edited directly.
type Recipe struct {
	gorm.Model
	Title            string   `gorm:"size:255;not null"`
	Description      string
	Ingredients      []string `gorm:"serializer:json"`
	Steps            []string `gorm:"serializer:json"`
	ImageKeys        []string `gorm:"serializer:json"`
	Cuisine          string   `gorm:"size:100;not null;index"`
	Tags             []string `gorm:"serializer:json"`
	PrepTime         int      `gorm:"not null"` // minutes
	Servings         int      `gorm:"not null"`
	AuthorID         uint     `gorm:"not null;index"`
	IsApproved       bool     `gorm:"not null;default:false;index"`
	AverageRating    float64  `gorm:"not null;default:0"`
	TotalRatings     int64    `gorm:"not null;default:0"`
	Version          int      `gorm:"not null;default:1"`
	OriginalRecipeID *uint

	Author User `gorm:"foreignKey:AuthorID"`
}

// RecipeVersion is an append-only snapshot of a recipe's editable fields,
// one row per edit.
type RecipeVersion struct {
	gorm.Model
	RecipeID    uint     `gorm:"not null;index"`
	Version     int      `gorm:"not null"`
	Title       string   `gorm:"size:255;not null"`
	Description string
	Ingredients []string `gorm:"serializer:json"`
	Steps       []string `gorm:"serializer:json"`
	ImageKeys   []string `gorm:"serializer:json"`
	Cuisine     string   `gorm:"size:100;not null"`
	Tags        []string `gorm:"serializer:json"`
	PrepTime    int      `gorm:"not null"`
	Servings    int      `gorm:"not null"`
	EditedBy    uint     `gorm:"not null"`

	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
}
