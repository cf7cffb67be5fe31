package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeDelete deletes cache keys, logging instead of propagating failures.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateUnreadCount drops the cached unread-notification counter for a
// user after any notification write.
func InvalidateUnreadCount(ctx context.Context, helper *CacheHelper, userID uint) {
	SafeDelete(ctx, helper, fmt.Sprintf("unread:%d", userID))
}

// InvalidateReviewerList drops the cached reviewer options for a department
// after a user mutation touches it.
func InvalidateReviewerList(ctx context.Context, helper *CacheHelper, departmentID uint) {
	SafeDelete(ctx, helper, fmt.Sprintf("dept:%d", departmentID))
}
