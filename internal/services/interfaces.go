package services

import (
	"context"
	"time"

	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
	"github.com/UniPortal-2026/submission-service/internal/validator"
)

// Request DTOs live in the validator package next to their rules.
type LoginRequest = validator.LoginRequest
type ForgotPasswordRequest = validator.ForgotPasswordRequest
type VerifyOTPRequest = validator.VerifyOTPRequest
type ResetPasswordRequest = validator.ResetPasswordRequest
type AssignmentCreateRequest = validator.AssignmentCreateRequest
type AssignmentUpdateRequest = validator.AssignmentUpdateRequest
type SubmitRequest = validator.SubmitRequest
type DecisionRequest = validator.DecisionRequest
type ProfileUpdateRequest = validator.ProfileUpdateRequest
type UserCreateRequest = validator.UserCreateRequest
type UserUpdateRequest = validator.UserUpdateRequest
type DepartmentRequest = validator.DepartmentRequest

// ===== RESPONSES =====

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type VerifyOTPResponse struct {
	ResetToken string `json:"reset_token"`
}

type AssignmentListResponse struct {
	Assignments []*models.Assignment `json:"assignments"`
	Total       int64                `json:"total"`
}

type StudentDashboardResponse struct {
	Counts *repositories.StatusCounts `json:"counts"`
	Recent []*models.Assignment       `json:"recent"`
}

// ReviewQueueItem decorates a submission with how long it has waited.
type ReviewQueueItem struct {
	Assignment  *models.Assignment `json:"assignment"`
	DaysPending int                `json:"days_pending"`
}

type ProfessorDashboardResponse struct {
	Counts *repositories.ReviewerStats `json:"counts"`
	Queue  []*ReviewQueueItem          `json:"queue"`
}

type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int64                  `json:"total"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error
	VerifyOTP(ctx context.Context, req *VerifyOTPRequest) (*VerifyOTPResponse, error)
	ResetPassword(ctx context.Context, req *ResetPasswordRequest) error

	// ParseToken resolves a session token to the authenticated user id.
	ParseToken(token string) (uint, error)
}

type AssignmentService interface {
	Create(ctx context.Context, req *AssignmentCreateRequest, file *models.FileMeta, ownerID uint) (*models.Assignment, error)
	GetByID(ctx context.Context, id uint, callerID uint) (*models.Assignment, error)
	List(ctx context.Context, ownerID uint, filters repositories.AssignmentFilters) (*AssignmentListResponse, error)
	Update(ctx context.Context, id uint, req *AssignmentUpdateRequest, replacement *models.FileMeta, callerID uint) (*models.Assignment, error)
	Submit(ctx context.Context, id uint, req *SubmitRequest, callerID uint) (*models.Assignment, error)
	Delete(ctx context.Context, id uint, callerID uint) error
	Dashboard(ctx context.Context, ownerID uint) (*StudentDashboardResponse, error)

	// ReviewerOptions lists same-department professors for the upload form.
	ReviewerOptions(ctx context.Context, studentID uint) ([]*models.User, error)
}

type ReviewService interface {
	Queue(ctx context.Context, reviewerID uint, filters repositories.AssignmentFilters) (*AssignmentListResponse, error)
	GetForReview(ctx context.Context, id uint, reviewerID uint) (*models.Assignment, error)
	Decide(ctx context.Context, id uint, req *DecisionRequest, reviewerID uint) (*models.Assignment, error)
	Dashboard(ctx context.Context, reviewerID uint) (*ProfessorDashboardResponse, error)
}

type NotificationService interface {
	List(ctx context.Context, userID uint, filters repositories.NotificationFilters) (*NotificationListResponse, error)
	MarkRead(ctx context.Context, id, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

type UserService interface {
	Create(ctx context.Context, req *UserCreateRequest) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	Update(ctx context.Context, id uint, req *UserUpdateRequest) (*models.User, error)
	Delete(ctx context.Context, id uint) error

	// UpdateProfile covers the self-service phone/password form.
	UpdateProfile(ctx context.Context, userID uint, req *ProfileUpdateRequest) (*models.User, error)
}

type DepartmentService interface {
	Create(ctx context.Context, req *DepartmentRequest) (*models.Department, error)
	List(ctx context.Context) ([]*models.Department, error)
	Update(ctx context.Context, id uint, req *DepartmentRequest) (*models.Department, error)
	Delete(ctx context.Context, id uint) error
}

type ReportService interface {
	// UsersReport renders the account roster as an xlsx workbook.
	UsersReport(ctx context.Context) ([]byte, error)
	// AssignmentsReport renders the per-status assignment summary.
	AssignmentsReport(ctx context.Context) ([]byte, error)
}

// ServiceManager wires services together and owns their lifecycle.
type ServiceManager interface {
	Auth() AuthService
	Assignment() AssignmentService
	Review() ReviewService
	Notification() NotificationService
	User() UserService
	Department() DepartmentService
	Report() ReportService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
