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

type NotificationPostgreSQL struct {
	db         *gorm.DB
	countCache *cache.CacheHelper
}

func NewNotificationPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.NotificationRepository {
	return &NotificationPostgreSQL{
		db:         db,
		countCache: cache.NewCacheHelper(redisClient, cache.NotificationCacheConfig.Prefix),
	}
}

func (n *NotificationPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return n.db
}

func (n *NotificationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	if err := n.getDB(tx).WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	cache.InvalidateUnreadCount(ctx, n.countCache, notification.UserID)
	return nil
}

func (n *NotificationPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID uint, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	query := n.getDB(tx).WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID)

	if filters.UnreadOnly {
		query = query.Where("read = false")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var notifications []*models.Notification
	err := query.Order("created_at DESC").Find(&notifications).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

func (n *NotificationPostgreSQL) MarkRead(ctx context.Context, tx *gorm.DB, id, userID uint) error {
	result := n.getDB(tx).WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateUnreadCount(ctx, n.countCache, userID)
	return nil
}

func (n *NotificationPostgreSQL) MarkAllRead(ctx context.Context, tx *gorm.DB, userID uint) error {
	err := n.getDB(tx).WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Update("read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	cache.InvalidateUnreadCount(ctx, n.countCache, userID)
	return nil
}

func (n *NotificationPostgreSQL) CountUnread(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	cacheKey := fmt.Sprintf("unread:%d", userID)
	var count int64

	err := n.countCache.CacheOrExecute(ctx, cacheKey, &count, cache.NotificationCacheConfig.TTL, func() (interface{}, error) {
		var dbCount int64
		err := n.getDB(tx).WithContext(ctx).
			Model(&models.Notification{}).
			Where("user_id = ? AND read = false", userID).
			Count(&dbCount).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count unread notifications: %w", err)
		}
		return dbCount, nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
