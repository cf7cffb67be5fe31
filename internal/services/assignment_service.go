package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"gorm.io/datatypes"

	"github.com/UniPortal-2026/submission-service/internal/events"
	"github.com/UniPortal-2026/submission-service/internal/mailer"
	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
	"github.com/UniPortal-2026/submission-service/internal/storage"
	"github.com/UniPortal-2026/submission-service/internal/validator"
)

const recentAssignmentsLimit = 5

type assignmentService struct {
	repo      repositories.Repository
	fileStore storage.FileStore
	publisher events.EventPublisher
	mailer    mailer.Mailer
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAssignmentService(
	repo repositories.Repository,
	fileStore storage.FileStore,
	publisher events.EventPublisher,
	m mailer.Mailer,
	logger *slog.Logger,
	v *validator.Validator,
) AssignmentService {
	return &assignmentService{
		repo:      repo,
		fileStore: fileStore,
		publisher: publisher,
		mailer:    m,
		logger:    logger,
		validator: v,
	}
}

func (s *assignmentService) Create(ctx context.Context, req *AssignmentCreateRequest, file *models.FileMeta, ownerID uint) (*models.Assignment, error) {
	s.logger.Info("creating assignment", "owner_id", ownerID, "title", req.Title)

	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}
	if file == nil {
		return nil, ErrFileRequired
	}

	owner, err := s.loadUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Status:         models.StatusDraft,
		OwnerID:        owner.ID,
		StudentMessage: req.StudentMessage,
	}
	assignment.File = datatypes.NewJSONType(file)

	// A preselected reviewer is validated now so the upload form cannot
	// park an ineligible professor on the draft.
	if req.ReviewerID != nil {
		reviewer, err := s.loadUser(ctx, *req.ReviewerID)
		if err != nil {
			return nil, err
		}
		if errs := s.validator.GetBusinessValidator().ValidateReviewer(owner, reviewer); len(errs) > 0 {
			return nil, errs
		}
		assignment.ReviewerID = &reviewer.ID
		assignment.ReviewerName = reviewer.FullName
	}

	if err := s.repo.Assignment().Create(ctx, nil, assignment); err != nil {
		return nil, err
	}

	s.logger.Info("assignment created", "assignment_id", assignment.ID, "owner_id", ownerID)
	return assignment, nil
}

func (s *assignmentService) GetByID(ctx context.Context, id uint, callerID uint) (*models.Assignment, error) {
	assignment, caller, err := s.loadAssignmentAndCaller(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(OpView, caller, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *assignmentService) List(ctx context.Context, ownerID uint, filters repositories.AssignmentFilters) (*AssignmentListResponse, error) {
	filters.OwnerID = &ownerID
	assignments, total, err := s.repo.Assignment().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}
	return &AssignmentListResponse{Assignments: assignments, Total: total}, nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, req *AssignmentUpdateRequest, replacement *models.FileMeta, callerID uint) (*models.Assignment, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	assignment, caller, err := s.loadAssignmentAndCaller(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(OpEdit, caller, assignment); err != nil {
		return nil, err
	}
	if !assignment.Editable() {
		return nil, ErrNotEditable
	}

	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Description != nil {
		assignment.Description = *req.Description
	}
	if req.Category != nil {
		assignment.Category = *req.Category
	}
	if req.StudentMessage != nil {
		assignment.StudentMessage = *req.StudentMessage
	}

	var replaced *models.FileMeta
	if replacement != nil {
		replaced = assignment.File.Data()
		if replaced != nil {
			assignment.FileHistory = append(assignment.FileHistory, models.FileVersion{
				File:        *replaced,
				Description: assignment.Description,
				ReplacedAt:  time.Now().UTC(),
			})
		}
		assignment.File = datatypes.NewJSONType(replacement)
	}

	if err := s.repo.Assignment().Update(ctx, nil, assignment); err != nil {
		return nil, err
	}

	// The database row is authoritative; the superseded file is removed
	// only after the update lands. A failed removal leaves an orphan on
	// disk, never a dangling reference.
	if replaced != nil {
		if err := s.fileStore.Remove(replaced.StoredName); err != nil {
			s.logger.Warn("failed to remove replaced file", "assignment_id", id, "stored_name", replaced.StoredName, "error", err)
		}
	}

	s.logger.Info("assignment updated", "assignment_id", id, "owner_id", callerID, "file_replaced", replacement != nil)
	return assignment, nil
}

func (s *assignmentService) Submit(ctx context.Context, id uint, req *SubmitRequest, callerID uint) (*models.Assignment, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	assignment, caller, err := s.loadAssignmentAndCaller(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(OpSubmit, caller, assignment); err != nil {
		return nil, err
	}

	bv := s.validator.GetBusinessValidator()
	if errs := bv.ValidateStatusTransition(assignment.Status, models.StatusSubmitted); len(errs) > 0 {
		return nil, errs
	}

	reviewer, err := s.loadUser(ctx, req.ReviewerID)
	if err != nil {
		return nil, err
	}
	if errs := bv.ValidateReviewer(caller, reviewer); len(errs) > 0 {
		return nil, errs
	}

	submittedAt := time.Now().UTC()
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		updates := map[string]interface{}{
			"status":            models.StatusSubmitted,
			"reviewer_id":       reviewer.ID,
			"reviewer_name":     reviewer.FullName,
			"submitted_at":      submittedAt,
			"rejection_remarks": "",
		}
		fromStatus := []models.AssignmentStatus{models.StatusDraft, models.StatusRejected}
		if err := txRepo.Assignment().UpdateStatusGuarded(ctx, nil, id, fromStatus, updates); err != nil {
			return err
		}

		return txRepo.Notification().Create(ctx, nil, &models.Notification{
			UserID:       reviewer.ID,
			Title:        "New submission to review",
			Message:      fmt.Sprintf("%s submitted %q for your review.", caller.FullName, assignment.Title),
			AssignmentID: &assignment.ID,
		})
	})
	if err != nil {
		if errors.Is(err, repositories.ErrStaleStatus) {
			return nil, ErrDecisionConflict
		}
		return nil, err
	}

	s.publishEvent(ctx, events.TypeAssignmentSubmitted, map[string]interface{}{
		"assignment_id": assignment.ID,
		"owner_id":      caller.ID,
		"reviewer_id":   reviewer.ID,
	})

	s.mailer.SendMessages(&mailer.EmailMessage{
		To:      []mail.Address{{Name: reviewer.FullName, Address: reviewer.Email}},
		Subject: "New submission awaiting review",
		Body:    fmt.Sprintf("%s submitted %q for your review.", caller.FullName, assignment.Title),
	})

	s.logger.Info("assignment submitted", "assignment_id", id, "owner_id", caller.ID, "reviewer_id", reviewer.ID)
	return s.repo.Assignment().GetByID(ctx, nil, id)
}

func (s *assignmentService) Delete(ctx context.Context, id uint, callerID uint) error {
	assignment, caller, err := s.loadAssignmentAndCaller(ctx, id, callerID)
	if err != nil {
		return err
	}
	if err := Authorize(OpDelete, caller, assignment); err != nil {
		return err
	}
	if assignment.Status == models.StatusApproved {
		return ErrApprovedImmutable
	}

	if err := s.repo.Assignment().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if file := assignment.File.Data(); file != nil {
		if err := s.fileStore.Remove(file.StoredName); err != nil {
			s.logger.Warn("failed to remove stored file", "assignment_id", id, "stored_name", file.StoredName, "error", err)
		}
	}

	s.logger.Info("assignment deleted", "assignment_id", id, "owner_id", callerID)
	return nil
}

func (s *assignmentService) Dashboard(ctx context.Context, ownerID uint) (*StudentDashboardResponse, error) {
	counts, err := s.repo.Assignment().StatusCountsByOwner(ctx, nil, ownerID)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.Assignment().RecentByOwner(ctx, nil, ownerID, recentAssignmentsLimit)
	if err != nil {
		return nil, err
	}
	return &StudentDashboardResponse{Counts: counts, Recent: recent}, nil
}

func (s *assignmentService) ReviewerOptions(ctx context.Context, studentID uint) ([]*models.User, error) {
	student, err := s.loadUser(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.DepartmentID == nil {
		// No department means no eligible reviewers, not an error.
		return []*models.User{}, nil
	}
	return s.repo.User().ProfessorsByDepartment(ctx, nil, *student.DepartmentID)
}

func (s *assignmentService) loadUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *assignmentService) loadAssignmentAndCaller(ctx context.Context, id, callerID uint) (*models.Assignment, *models.User, error) {
	assignment, err := s.repo.Assignment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrAssignmentNotFound
		}
		return nil, nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	caller, err := s.loadUser(ctx, callerID)
	if err != nil {
		return nil, nil, err
	}
	return assignment, caller, nil
}

func (s *assignmentService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	err := s.publisher.Publish(ctx, events.Event{Type: eventType, Data: data})
	if err != nil {
		s.logger.Warn("failed to publish event", "type", eventType, "error", err)
	}
}
