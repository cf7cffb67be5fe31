package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/UniPortal-2026/submission-service/internal/models"
)

func newValidate() *validator.Validate {
	validate := validator.New()
	registerDomainRules(validate)
	return validate
}

func registerDomainRules(validate *validator.Validate) {
	// Registration only fails for empty tags or nil funcs; both are
	// programmer errors, so panics here are acceptable at init.
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	must(validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	}))

	must(validate.RegisterValidation("assignment_category", func(fl validator.FieldLevel) bool {
		switch models.AssignmentCategory(fl.Field().String()) {
		case models.CategoryAssignment, models.CategoryThesis, models.CategoryReport:
			return true
		}
		return false
	}))

	must(validate.RegisterValidation("review_verdict", func(fl validator.FieldLevel) bool {
		switch models.AssignmentStatus(fl.Field().String()) {
		case models.StatusApproved, models.StatusRejected:
			return true
		}
		return false
	}))
}

// BusinessValidator handles workflow rule validation beyond struct tags.
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{validate: newValidate()}
}

// Validate validates tag rules on any struct.
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// allowedTransitions is the review workflow: Draft and Rejected may be
// submitted; Submitted may be approved or rejected; Approved is terminal.
var allowedTransitions = map[models.AssignmentStatus][]models.AssignmentStatus{
	models.StatusDraft:     {models.StatusSubmitted},
	models.StatusSubmitted: {models.StatusApproved, models.StatusRejected},
	models.StatusRejected:  {models.StatusSubmitted},
	models.StatusApproved:  {},
}

// ValidateStatusTransition is the single gate through which every status
// change must pass.
func (bv *BusinessValidator) ValidateStatusTransition(current, next models.AssignmentStatus) ValidationErrors {
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return nil
		}
	}
	return ValidationErrors{{
		Field:   "status",
		Message: "transition from " + string(current) + " to " + string(next) + " is not allowed",
		Value:   next,
		Rule:    "status_transition",
	}}
}

// ValidateReviewer enforces the reviewer pairing rules on Submit: the
// reviewer must hold the professor role and share the student's department.
// Missing department on either side fails closed.
func (bv *BusinessValidator) ValidateReviewer(student, reviewer *models.User) ValidationErrors {
	var errors ValidationErrors

	if reviewer.Role != models.RoleProfessor {
		errors = append(errors, ValidationError{
			Field:   "reviewer_id",
			Message: "reviewer must be a professor",
			Value:   reviewer.Role,
			Rule:    "reviewer_role",
		})
	}

	if student.DepartmentID == nil || reviewer.DepartmentID == nil ||
		*student.DepartmentID != *reviewer.DepartmentID {
		errors = append(errors, ValidationError{
			Field:   "reviewer_id",
			Message: "reviewer must belong to the student's department",
			Rule:    "reviewer_department",
		})
	}

	return errors
}
