package models

import (
	"time"
)

// Notification is an append-only user-facing message written as a side
// effect of workflow transitions and account creation. Only the read flag
// is ever mutated after creation.
type Notification struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	UserID  uint   `json:"user_id" gorm:"not null;index"`
	Title   string `json:"title" gorm:"not null;size:200"`
	Message string `json:"message" gorm:"type:text"`

	AssignmentID *uint `json:"assignment_id" gorm:"index"`
	Read         bool  `json:"read" gorm:"not null;default:false;index"`

	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
