package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents one field-level validation failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// ToValidationErrors converts go-playground validator errors to the
// API-facing slice form.
func ToValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors
	if err == nil {
		return errors
	}
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			errors = append(errors, ValidationError{
				Field:   fe.Field(),
				Message: messageForTag(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return errors
	}
	return ValidationErrors{{Field: "", Message: err.Error()}}
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "user_role":
		return "must be one of: student, professor, hod, admin"
	case "assignment_category":
		return "must be one of: Assignment, Thesis, Report"
	case "review_verdict":
		return "must be Approved or Rejected"
	default:
		return fmt.Sprintf("failed validation rule %q", fe.Tag())
	}
}

// Validator bundles struct validation with the business validator.
type Validator struct {
	validate          *validator.Validate
	businessValidator *BusinessValidator
}

func New() *Validator {
	return &Validator{
		validate:          newValidate(),
		businessValidator: NewBusinessValidator(),
	}
}

// ValidateStruct validates tag rules on any request struct.
func (v *Validator) ValidateStruct(s interface{}) ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.businessValidator
}
