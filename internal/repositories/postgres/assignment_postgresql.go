package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
)

type AssignmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{db: db}
}

func (a *AssignmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AssignmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error {
	if err := a.getDB(tx).WithContext(ctx).Create(assignment).Error; err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (a *AssignmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error) {
	var assignment models.Assignment
	err := a.getDB(tx).WithContext(ctx).
		Preload("Owner").
		Preload("Owner.Department").
		Preload("Reviewer").
		First(&assignment, id).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (a *AssignmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error {
	if err := a.getDB(tx).WithContext(ctx).Save(assignment).Error; err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	return nil
}

func (a *AssignmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := a.getDB(tx).WithContext(ctx).Delete(&models.Assignment{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *AssignmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AssignmentFilters) ([]*models.Assignment, int64, error) {
	query := a.getDB(tx).WithContext(ctx).Model(&models.Assignment{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}
	if filters.ReviewerID != nil {
		query = query.Where("reviewer_id = ?", *filters.ReviewerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count assignments: %w", err)
	}

	sortBy := filters.SortBy
	switch sortBy {
	case "created_at", "submitted_at", "title":
	default:
		sortBy = "created_at"
	}
	order := sortBy + " DESC"
	if filters.SortOrder == "asc" {
		order = sortBy + " ASC"
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var assignments []*models.Assignment
	err := query.Preload("Owner").Preload("Reviewer").Order(order).Find(&assignments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, total, nil
}

// UpdateStatusGuarded flips the status (and any companion columns) only
// while the row still holds one of fromStatus. Zero matched rows means the
// assignment vanished or a concurrent writer already transitioned it.
func (a *AssignmentPostgreSQL) UpdateStatusGuarded(ctx context.Context, tx *gorm.DB, id uint, fromStatus []models.AssignmentStatus, updates map[string]interface{}) error {
	result := a.getDB(tx).WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND status IN ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update assignment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrStaleStatus
	}
	return nil
}

func (a *AssignmentPostgreSQL) StatusCountsByOwner(ctx context.Context, tx *gorm.DB, ownerID uint) (*repositories.StatusCounts, error) {
	rows := []struct {
		Status models.AssignmentStatus
		Count  int64
	}{}
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.Assignment{}).
		Select("status, COUNT(*) AS count").
		Where("owner_id = ?", ownerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count assignments by status: %w", err)
	}

	counts := &repositories.StatusCounts{}
	for _, row := range rows {
		switch row.Status {
		case models.StatusDraft:
			counts.Draft = row.Count
		case models.StatusSubmitted:
			counts.Submitted = row.Count
		case models.StatusApproved:
			counts.Approved = row.Count
		case models.StatusRejected:
			counts.Rejected = row.Count
		}
	}
	return counts, nil
}

func (a *AssignmentPostgreSQL) ReviewerStats(ctx context.Context, tx *gorm.DB, reviewerID uint) (*repositories.ReviewerStats, error) {
	rows := []struct {
		Status models.AssignmentStatus
		Count  int64
	}{}
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.Assignment{}).
		Select("status, COUNT(*) AS count").
		Where("reviewer_id = ?", reviewerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count reviewer assignments: %w", err)
	}

	stats := &repositories.ReviewerStats{}
	for _, row := range rows {
		switch row.Status {
		case models.StatusSubmitted:
			stats.Pending = row.Count
		case models.StatusApproved:
			stats.Approved = row.Count
		case models.StatusRejected:
			stats.Rejected = row.Count
		}
	}
	stats.TotalReviewed = stats.Approved + stats.Rejected
	return stats, nil
}

func (a *AssignmentPostgreSQL) RecentByOwner(ctx context.Context, tx *gorm.DB, ownerID uint, limit int) ([]*models.Assignment, error) {
	var assignments []*models.Assignment
	err := a.getDB(tx).WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent assignments: %w", err)
	}
	return assignments, nil
}

func (a *AssignmentPostgreSQL) CountByOwner(ctx context.Context, tx *gorm.DB, ownerID uint) (int64, error) {
	var count int64
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.Assignment{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}
	return count, nil
}
