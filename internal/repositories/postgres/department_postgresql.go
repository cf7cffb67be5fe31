package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
)

type DepartmentPostgreSQL struct {
	db *gorm.DB
}

func NewDepartmentPostgreSQL(db *gorm.DB) repositories.DepartmentRepository {
	return &DepartmentPostgreSQL{db: db}
}

func (d *DepartmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return d.db
}

func (d *DepartmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, department *models.Department) error {
	if err := d.getDB(tx).WithContext(ctx).Create(department).Error; err != nil {
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

func (d *DepartmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Department, error) {
	var department models.Department
	if err := d.getDB(tx).WithContext(ctx).First(&department, id).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

func (d *DepartmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, department *models.Department) error {
	if err := d.getDB(tx).WithContext(ctx).Save(department).Error; err != nil {
		return fmt.Errorf("failed to update department: %w", err)
	}
	return nil
}

func (d *DepartmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := d.getDB(tx).WithContext(ctx).Delete(&models.Department{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete department: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (d *DepartmentPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Department, error) {
	var departments []*models.Department
	err := d.getDB(tx).WithContext(ctx).Order("name ASC").Find(&departments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}

func (d *DepartmentPostgreSQL) ExistsByName(ctx context.Context, tx *gorm.DB, name string) (bool, error) {
	var count int64
	err := d.getDB(tx).WithContext(ctx).
		Model(&models.Department{}).
		Where("name = ?", name).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check department name: %w", err)
	}
	return count > 0, nil
}
