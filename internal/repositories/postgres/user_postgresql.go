package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/UniPortal-2026/submission-service/internal/cache"
	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
)

type UserPostgreSQL struct {
	db            *gorm.DB
	reviewerCache *cache.CacheHelper
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:            db,
		reviewerCache: cache.NewCacheHelper(redisClient, cache.ReviewerCacheConfig.Prefix),
	}
}

// getDB returns the transaction DB if provided, otherwise the default DB.
func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := u.getDB(tx).WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	if user.DepartmentID != nil {
		cache.InvalidateReviewerList(ctx, u.reviewerCache, *user.DepartmentID)
	}
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	err := u.getDB(tx).WithContext(ctx).
		Preload("Department").
		First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := u.getDB(tx).WithContext(ctx).
		Preload("Department").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := u.getDB(tx).WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if user.DepartmentID != nil {
		cache.InvalidateReviewerList(ctx, u.reviewerCache, *user.DepartmentID)
	}
	return nil
}

func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := u.getDB(tx).WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	query := u.getDB(tx).WithContext(ctx).Model(&models.User{})

	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.DepartmentID != nil {
		query = query.Where("department_id = ?", *filters.DepartmentID)
	}
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	sortBy := filters.SortBy
	switch sortBy {
	case "full_name", "email", "created_at":
	default:
		sortBy = "full_name"
	}
	order := sortBy + " ASC"
	if filters.SortOrder == "desc" {
		order = sortBy + " DESC"
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var users []*models.User
	err := query.Preload("Department").Order(order).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (u *UserPostgreSQL) ProfessorsByDepartment(ctx context.Context, tx *gorm.DB, departmentID uint) ([]*models.User, error) {
	cacheKey := fmt.Sprintf("dept:%d", departmentID)
	var professors []*models.User

	err := u.reviewerCache.CacheOrExecute(ctx, cacheKey, &professors, cache.ReviewerCacheConfig.TTL, func() (interface{}, error) {
		var dbProfessors []*models.User
		err := u.getDB(tx).WithContext(ctx).
			Where("role = ? AND department_id = ?", models.RoleProfessor, departmentID).
			Order("full_name ASC").
			Find(&dbProfessors).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list professors: %w", err)
		}
		return dbProfessors, nil
	})
	if err != nil {
		return nil, err
	}
	return professors, nil
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	err := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}
