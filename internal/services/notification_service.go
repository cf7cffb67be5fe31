package services

import (
	"context"
	"log/slog"

	"github.com/UniPortal-2026/submission-service/internal/repositories"
)

type notificationService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewNotificationService(repo repositories.Repository, logger *slog.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) List(ctx context.Context, userID uint, filters repositories.NotificationFilters) (*NotificationListResponse, error) {
	notifications, total, err := s.repo.Notification().ListByUser(ctx, nil, userID, filters)
	if err != nil {
		return nil, err
	}
	return &NotificationListResponse{Notifications: notifications, Total: total}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID uint) error {
	if err := s.repo.Notification().MarkRead(ctx, nil, id, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.Notification().MarkAllRead(ctx, nil, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.Notification().CountUnread(ctx, nil, userID)
}
