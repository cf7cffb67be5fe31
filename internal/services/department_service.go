package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
	"github.com/UniPortal-2026/submission-service/internal/validator"
)

type departmentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewDepartmentService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) DepartmentService {
	return &departmentService{repo: repo, logger: logger, validator: v}
}

func (s *departmentService) Create(ctx context.Context, req *DepartmentRequest) (*models.Department, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	taken, err := s.repo.Department().ExistsByName(ctx, nil, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check department name: %w", err)
	}
	if taken {
		return nil, ErrDepartmentTaken
	}

	department := &models.Department{Name: req.Name}
	if err := s.repo.Department().Create(ctx, nil, department); err != nil {
		return nil, err
	}

	s.logger.Info("department created", "department_id", department.ID, "name", department.Name)
	return department, nil
}

func (s *departmentService) List(ctx context.Context) ([]*models.Department, error) {
	return s.repo.Department().List(ctx, nil)
}

func (s *departmentService) Update(ctx context.Context, id uint, req *DepartmentRequest) (*models.Department, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	department, err := s.repo.Department().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}

	if req.Name != department.Name {
		taken, err := s.repo.Department().ExistsByName(ctx, nil, req.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check department name: %w", err)
		}
		if taken {
			return nil, ErrDepartmentTaken
		}
	}

	department.Name = req.Name
	if err := s.repo.Department().Update(ctx, nil, department); err != nil {
		return nil, err
	}

	s.logger.Info("department updated", "department_id", id, "name", department.Name)
	return department, nil
}

func (s *departmentService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Department().GetByID(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrDepartmentNotFound
		}
		return err
	}

	departmentID := id
	members, _, err := s.repo.User().List(ctx, nil, repositories.UserFilters{DepartmentID: &departmentID, Limit: 1})
	if err != nil {
		return fmt.Errorf("failed to check department members: %w", err)
	}
	if len(members) > 0 {
		return ErrDepartmentInUse
	}

	if err := s.repo.Department().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrDepartmentNotFound
		}
		return err
	}

	s.logger.Info("department deleted", "department_id", id)
	return nil
}
