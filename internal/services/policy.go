package services

import (
	"github.com/UniPortal-2026/submission-service/internal/models"
)

// Operation names one guarded action on an assignment.
type Operation string

const (
	OpView   Operation = "view"
	OpEdit   Operation = "edit"
	OpSubmit Operation = "submit"
	OpDecide Operation = "decide"
	OpDelete Operation = "delete"
)

// Authorize is the single authorization policy for assignment operations,
// keyed by operation, caller role and resource ownership. It returns nil on
// allow and a *PermissionError on deny; callers never re-check roles or
// ownership inline.
func Authorize(op Operation, caller *models.User, assignment *models.Assignment) error {
	switch op {
	case OpView:
		if assignment.OwnerID == caller.ID {
			return nil
		}
		if assignment.ReviewerID != nil && *assignment.ReviewerID == caller.ID {
			return nil
		}
		if caller.Role == models.RoleAdmin {
			return nil
		}
		return NewPermissionError(caller.ID, assignment.ID, "assignment", string(op), "not owner, reviewer or admin")

	case OpEdit, OpSubmit, OpDelete:
		if caller.Role != models.RoleStudent {
			return NewPermissionError(caller.ID, assignment.ID, "assignment", string(op), "caller is not a student")
		}
		if assignment.OwnerID != caller.ID {
			return NewPermissionError(caller.ID, assignment.ID, "assignment", string(op), "not the owner")
		}
		return nil

	case OpDecide:
		if caller.Role != models.RoleProfessor {
			return NewPermissionError(caller.ID, assignment.ID, "assignment", string(op), "caller is not a professor")
		}
		if assignment.ReviewerID == nil || *assignment.ReviewerID != caller.ID {
			return NewPermissionError(caller.ID, assignment.ID, "assignment", string(op), "not the assigned reviewer")
		}
		return nil
	}

	return NewPermissionError(caller.ID, assignment.ID, "assignment", string(op), "unknown operation")
}
