package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/UniPortal-2026/submission-service/internal/events"
	"github.com/UniPortal-2026/submission-service/internal/mailer"
	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
	"github.com/UniPortal-2026/submission-service/internal/validator"
)

type reviewService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	mailer    mailer.Mailer
	logger    *slog.Logger
	validator *validator.Validator
}

func NewReviewService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	m mailer.Mailer,
	logger *slog.Logger,
	v *validator.Validator,
) ReviewService {
	return &reviewService{
		repo:      repo,
		publisher: publisher,
		mailer:    m,
		logger:    logger,
		validator: v,
	}
}

func (s *reviewService) Queue(ctx context.Context, reviewerID uint, filters repositories.AssignmentFilters) (*AssignmentListResponse, error) {
	filters.ReviewerID = &reviewerID
	if filters.Status == nil {
		submitted := models.StatusSubmitted
		filters.Status = &submitted
	}
	assignments, total, err := s.repo.Assignment().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}
	return &AssignmentListResponse{Assignments: assignments, Total: total}, nil
}

func (s *reviewService) GetForReview(ctx context.Context, id uint, reviewerID uint) (*models.Assignment, error) {
	assignment, caller, err := s.load(ctx, id, reviewerID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(OpView, caller, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *reviewService) Decide(ctx context.Context, id uint, req *DecisionRequest, reviewerID uint) (*models.Assignment, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	assignment, reviewer, err := s.load(ctx, id, reviewerID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(OpDecide, reviewer, assignment); err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateStatusTransition(assignment.Status, req.Verdict); len(errs) > 0 {
		return nil, errs
	}

	decidedAt := time.Now().UTC()
	history := append(assignment.ReviewHistory, models.ReviewRecord{
		Action:       req.Verdict,
		ReviewerID:   reviewer.ID,
		ReviewerName: reviewer.FullName,
		Remarks:      req.Remarks,
		DecidedAt:    decidedAt,
	})

	updates := map[string]interface{}{
		"status":         req.Verdict,
		"review_history": history,
	}
	if req.Verdict == models.StatusRejected {
		updates["rejection_remarks"] = req.Remarks
	}

	title := "Assignment approved"
	body := fmt.Sprintf("%s approved %q.", reviewer.FullName, assignment.Title)
	if req.Verdict == models.StatusRejected {
		title = "Assignment rejected"
		body = fmt.Sprintf("%s rejected %q.", reviewer.FullName, assignment.Title)
		if req.Remarks != "" {
			body += " Remarks: " + req.Remarks
		}
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		fromStatus := []models.AssignmentStatus{models.StatusSubmitted}
		if err := txRepo.Assignment().UpdateStatusGuarded(ctx, nil, id, fromStatus, updates); err != nil {
			return err
		}

		return txRepo.Notification().Create(ctx, nil, &models.Notification{
			UserID:       assignment.OwnerID,
			Title:        title,
			Message:      body,
			AssignmentID: &assignment.ID,
		})
	})
	if err != nil {
		if errors.Is(err, repositories.ErrStaleStatus) {
			return nil, ErrDecisionConflict
		}
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.Event{
		Type: events.TypeAssignmentDecided,
		Data: map[string]interface{}{
			"assignment_id": assignment.ID,
			"owner_id":      assignment.OwnerID,
			"reviewer_id":   reviewer.ID,
			"verdict":       req.Verdict,
		},
	}); err != nil {
		s.logger.Warn("failed to publish event", "type", events.TypeAssignmentDecided, "error", err)
	}

	if assignment.Owner != nil {
		s.mailer.SendMessages(&mailer.EmailMessage{
			To:      []mail.Address{{Name: assignment.Owner.FullName, Address: assignment.Owner.Email}},
			Subject: title,
			Body:    body,
		})
	}

	s.logger.Info("assignment decided",
		"assignment_id", id, "reviewer_id", reviewer.ID, "verdict", req.Verdict)
	return s.repo.Assignment().GetByID(ctx, nil, id)
}

func (s *reviewService) Dashboard(ctx context.Context, reviewerID uint) (*ProfessorDashboardResponse, error) {
	stats, err := s.repo.Assignment().ReviewerStats(ctx, nil, reviewerID)
	if err != nil {
		return nil, err
	}

	submitted := models.StatusSubmitted
	pending, _, err := s.repo.Assignment().List(ctx, nil, repositories.AssignmentFilters{
		ReviewerID: &reviewerID,
		Status:     &submitted,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	queue := make([]*ReviewQueueItem, 0, len(pending))
	for _, a := range pending {
		days := 0
		if a.SubmittedAt != nil {
			days = int(now.Sub(*a.SubmittedAt).Hours() / 24)
		}
		queue = append(queue, &ReviewQueueItem{Assignment: a, DaysPending: days})
	}

	return &ProfessorDashboardResponse{Counts: stats, Queue: queue}, nil
}

func (s *reviewService) load(ctx context.Context, id, callerID uint) (*models.Assignment, *models.User, error) {
	assignment, err := s.repo.Assignment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrAssignmentNotFound
		}
		return nil, nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	caller, err := s.repo.User().GetByID(ctx, nil, callerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	return assignment, caller, nil
}
