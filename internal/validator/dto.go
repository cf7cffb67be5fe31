package validator

import (
	"github.com/UniPortal-2026/submission-service/internal/models"
)

// ===== AUTH =====

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=4,numeric"`
}

type ResetPasswordRequest struct {
	ResetToken string `json:"reset_token" validate:"required"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
}

// ===== ASSIGNMENTS =====

// AssignmentCreateRequest carries the form fields of a multipart upload;
// the PDF itself arrives as the "file" part.
type AssignmentCreateRequest struct {
	Title          string                    `form:"title" json:"title" validate:"required,min=1,max=200"`
	Description    string                    `form:"description" json:"description" validate:"omitempty,max=2000"`
	Category       models.AssignmentCategory `form:"category" json:"category" validate:"required,assignment_category"`
	StudentMessage string                    `form:"student_message" json:"student_message" validate:"omitempty,max=1000"`
	ReviewerID     *uint                     `form:"reviewer_id" json:"reviewer_id"`
}

type AssignmentUpdateRequest struct {
	Title          *string                    `form:"title" json:"title" validate:"omitempty,min=1,max=200"`
	Description    *string                    `form:"description" json:"description" validate:"omitempty,max=2000"`
	Category       *models.AssignmentCategory `form:"category" json:"category" validate:"omitempty,assignment_category"`
	StudentMessage *string                    `form:"student_message" json:"student_message" validate:"omitempty,max=1000"`
}

type SubmitRequest struct {
	ReviewerID uint `json:"reviewer_id" validate:"required"`
}

type DecisionRequest struct {
	Verdict models.AssignmentStatus `json:"verdict" validate:"required,review_verdict"`
	Remarks string                  `json:"remarks" validate:"omitempty,max=2000"`
}

// ===== PROFILE =====

type ProfileUpdateRequest struct {
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
	NewPassword *string `json:"new_password" validate:"omitempty,min=8,max=72"`
}

// ===== ADMIN =====

type UserCreateRequest struct {
	FullName     string          `json:"full_name" validate:"required,min=1,max=100"`
	Email        string          `json:"email" validate:"required,email"`
	Phone        string          `json:"phone" validate:"omitempty,max=30"`
	Role         models.UserRole `json:"role" validate:"required,user_role"`
	DepartmentID *uint           `json:"department_id"`
	// Password is optional; a random one is generated and emailed when empty.
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
}

type UserUpdateRequest struct {
	FullName     *string          `json:"full_name" validate:"omitempty,min=1,max=100"`
	Email        *string          `json:"email" validate:"omitempty,email"`
	Phone        *string          `json:"phone" validate:"omitempty,max=30"`
	Role         *models.UserRole `json:"role" validate:"omitempty,user_role"`
	DepartmentID *uint            `json:"department_id"`
	Password     *string          `json:"password" validate:"omitempty,min=8,max=72"`
}

type DepartmentRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}
