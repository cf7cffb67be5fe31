package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
)

// reportListLimit bounds the rows pulled into a single workbook.
const reportListLimit = 10000

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

func (s *reportService) UsersReport(ctx context.Context) ([]byte, error) {
	users, _, err := s.repo.User().List(ctx, nil, repositories.UserFilters{
		Limit:     reportListLimit,
		SortBy:    "full_name",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Users"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"ID", "Full Name", "Email", "Phone", "Role", "Department"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, user := range users {
		department := ""
		if user.Department != nil {
			department = user.Department.Name
		}
		values := []interface{}{user.ID, user.FullName, user.Email, user.Phone, string(user.Role), department}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(sheet, "B", "F", 24); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("users report generated", "rows", len(users))
	return buf.Bytes(), nil
}

func (s *reportService) AssignmentsReport(ctx context.Context) ([]byte, error) {
	assignments, _, err := s.repo.Assignment().List(ctx, nil, repositories.AssignmentFilters{
		Limit:     reportListLimit,
		SortBy:    "created_at",
		SortOrder: "desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Assignments"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"ID", "Title", "Category", "Status", "Owner", "Reviewer", "Submitted At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	var byStatus = map[models.AssignmentStatus]int{}
	for row, a := range assignments {
		byStatus[a.Status]++

		owner := ""
		if a.Owner != nil {
			owner = a.Owner.FullName
		}
		submittedAt := ""
		if a.SubmittedAt != nil {
			submittedAt = a.SubmittedAt.Format(time.RFC3339)
		}
		values := []interface{}{a.ID, a.Title, string(a.Category), string(a.Status), owner, a.ReviewerName, submittedAt}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	// Second sheet with the per-status rollup.
	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, err
	}
	statuses := []models.AssignmentStatus{models.StatusDraft, models.StatusSubmitted, models.StatusApproved, models.StatusRejected}
	if err := f.SetCellValue(summary, "A1", "Status"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(summary, "B1", "Count"); err != nil {
		return nil, err
	}
	for i, status := range statuses {
		if err := f.SetCellValue(summary, fmt.Sprintf("A%d", i+2), string(status)); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(summary, fmt.Sprintf("B%d", i+2), byStatus[status]); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheet, "B", "G", 24); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("assignments report generated", "rows", len(assignments))
	return buf.Bytes(), nil
}
