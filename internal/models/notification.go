package models

import "gorm.io/gorm"

// NotificationType identifies the event a notification was fanned out from.
type NotificationType string

const (
	NotificationComment        NotificationType = "comment"
	NotificationRating         NotificationType = "rating"
	NotificationFollow         NotificationType = "follow"
	NotificationRecipeApproved NotificationType = "recipe_approved"
)

// Notification is created as a side effect of another user's mutation and is
// owned by its recipient: only the recipient may mark it read, and the only
// mutation after creation is flipping IsRead false to true.
type Notification struct {
	gorm.Model
	UserID          uint             `gorm:"not null;index"`
	Type            NotificationType `gorm:"size:50;not null"`
	Message         string           `gorm:"not null"`
	IsRead          bool             `gorm:"not null;default:false"`
	RelatedRecipeID *uint
	RelatedUserID   *uint

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}
