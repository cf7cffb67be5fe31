package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services; handlers map these onto HTTP
// status codes in one place.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")

	ErrEmailTaken        = errors.New("email already in use")
	ErrDepartmentTaken   = errors.New("department name already in use")
	ErrUserOwnsWork      = errors.New("user still owns assignments")
	ErrDepartmentInUse   = errors.New("department still has members")
	ErrFileRequired      = errors.New("a PDF file is required")
	ErrNotEditable       = errors.New("only Draft or Rejected assignments can be edited")
	ErrApprovedImmutable = errors.New("approved assignments cannot be deleted")

	// ErrDecisionConflict reports a guarded transition that lost the race:
	// the assignment was no longer in the expected status at update time.
	ErrDecisionConflict = errors.New("assignment is no longer awaiting this action")
)

// PermissionError reports an authorization failure with enough context to
// log meaningfully without leaking it to the caller.
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d may not %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

// IsPermissionError reports whether err is an authorization failure.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
