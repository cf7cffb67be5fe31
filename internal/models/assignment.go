package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssignmentStatus string

const (
	StatusDraft     AssignmentStatus = "Draft"
	StatusSubmitted AssignmentStatus = "Submitted"
	StatusApproved  AssignmentStatus = "Approved"
	StatusRejected  AssignmentStatus = "Rejected"
)

type AssignmentCategory string

const (
	CategoryAssignment AssignmentCategory = "Assignment"
	CategoryThesis     AssignmentCategory = "Thesis"
	CategoryReport     AssignmentCategory = "Report"
)

// FileMeta describes one stored upload. Persisted as a JSON column so the
// current file and the prior-version history share a shape.
type FileMeta struct {
	StoredName   string    `json:"stored_name"`
	OriginalName string    `json:"original_name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// ReviewRecord is one entry of the decision audit trail.
type ReviewRecord struct {
	Action       AssignmentStatus `json:"action"`
	ReviewerID   uint             `json:"reviewer_id"`
	ReviewerName string           `json:"reviewer_name"`
	Remarks      string           `json:"remarks"`
	DecidedAt    time.Time        `json:"decided_at"`
}

// FileVersion captures a replaced upload together with the description it
// accompanied, mirroring the edit history kept for re-submissions.
type FileVersion struct {
	File        FileMeta  `json:"file"`
	Description string    `json:"description"`
	ReplacedAt  time.Time `json:"replaced_at"`
}

type Assignment struct {
	ID          uint               `json:"id" gorm:"primaryKey"`
	Title       string             `json:"title" gorm:"not null;size:200;index"`
	Description string             `json:"description" gorm:"type:text"`
	Category    AssignmentCategory `json:"category" gorm:"not null;size:20;default:Assignment"`
	Status      AssignmentStatus   `json:"status" gorm:"not null;size:20;default:Draft;index"`

	OwnerID uint  `json:"owner_id" gorm:"not null;index"`
	Owner   *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`

	ReviewerID   *uint  `json:"reviewer_id" gorm:"index"`
	Reviewer     *User  `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
	ReviewerName string `json:"reviewer_name" gorm:"size:100"`

	SubmittedAt      *time.Time `json:"submitted_at"`
	StudentMessage   string     `json:"student_message" gorm:"type:text"`
	RejectionRemarks string     `json:"rejection_remarks" gorm:"type:text"`

	File          datatypes.JSONType[*FileMeta]     `json:"file"`
	FileHistory   datatypes.JSONSlice[FileVersion]  `json:"file_history"`
	ReviewHistory datatypes.JSONSlice[ReviewRecord] `json:"review_history"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// Editable reports whether the owning student may still change the
// assignment. Only Draft and Rejected work is open for edits.
func (a *Assignment) Editable() bool {
	return a.Status == StatusDraft || a.Status == StatusRejected
}
