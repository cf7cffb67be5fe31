package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/UniPortal-2026/submission-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role         *models.UserRole `json:"role"`
	DepartmentID *uint            `json:"department_id"`
	Query        string           `json:"query"` // matches name or email
	Limit        int              `json:"limit"`
	Offset       int              `json:"offset"`
	SortBy       string           `json:"sort_by"`    // "full_name", "email", "created_at"
	SortOrder    string           `json:"sort_order"` // "asc", "desc"
}

type AssignmentFilters struct {
	Status     *models.AssignmentStatus   `json:"status"`
	Category   *models.AssignmentCategory `json:"category"`
	OwnerID    *uint                      `json:"owner_id"`
	ReviewerID *uint                      `json:"reviewer_id"`
	Limit      int                        `json:"limit"`
	Offset     int                        `json:"offset"`
	SortBy     string                     `json:"sort_by"`    // "created_at", "submitted_at", "title"
	SortOrder  string                     `json:"sort_order"` // "asc", "desc"
}

type NotificationFilters struct {
	UnreadOnly bool `json:"unread_only"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

// StatusCounts is the per-status assignment breakdown behind the student
// dashboard.
type StatusCounts struct {
	Draft     int64 `json:"draft"`
	Submitted int64 `json:"submitted"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
}

// ReviewerStats is the professor dashboard breakdown.
type ReviewerStats struct {
	Pending       int64 `json:"pending"`
	Approved      int64 `json:"approved"`
	Rejected      int64 `json:"rejected"`
	TotalReviewed int64 `json:"total_reviewed"`
}

// ===== ENTITY REPOSITORIES =====

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)

	// ProfessorsByDepartment returns reviewer options for a student.
	ProfessorsByDepartment(ctx context.Context, tx *gorm.DB, departmentID uint) ([]*models.User, error)

	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error)
	Update(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters AssignmentFilters) ([]*models.Assignment, int64, error)

	// UpdateStatusGuarded applies the given mutation only while the row still
	// holds fromStatus, reporting ErrStaleStatus when another writer won the
	// race. This is the sole path for Submit and Decide transitions.
	UpdateStatusGuarded(ctx context.Context, tx *gorm.DB, id uint, fromStatus []models.AssignmentStatus, updates map[string]interface{}) error

	StatusCountsByOwner(ctx context.Context, tx *gorm.DB, ownerID uint) (*StatusCounts, error)
	ReviewerStats(ctx context.Context, tx *gorm.DB, reviewerID uint) (*ReviewerStats, error)
	RecentByOwner(ctx context.Context, tx *gorm.DB, ownerID uint, limit int) ([]*models.Assignment, error)

	// CountByOwner backs the no-delete-while-owning-assignments invariant.
	CountByOwner(ctx context.Context, tx *gorm.DB, ownerID uint) (int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint, filters NotificationFilters) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id, userID uint) error
	MarkAllRead(ctx context.Context, tx *gorm.DB, userID uint) error
	CountUnread(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}

type DepartmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, department *models.Department) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Department, error)
	Update(ctx context.Context, tx *gorm.DB, department *models.Department) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB) ([]*models.Department, error)
	ExistsByName(ctx context.Context, tx *gorm.DB, name string) (bool, error)
}

// ===== SHARED ERRORS =====

// ErrStaleStatus reports a guarded status update that matched no row: the
// id is unknown or a concurrent transition already moved the assignment on.
var ErrStaleStatus = errors.New("assignment status changed concurrently")

// IsNotFoundError reports whether err means the record does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
