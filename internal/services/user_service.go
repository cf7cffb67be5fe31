package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"

	"golang.org/x/crypto/bcrypt"

	"github.com/UniPortal-2026/submission-service/internal/events"
	"github.com/UniPortal-2026/submission-service/internal/mailer"
	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
	"github.com/UniPortal-2026/submission-service/internal/validator"
)

const generatedPasswordLength = 12

type userService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	mailer    mailer.Mailer
	logger    *slog.Logger
	validator *validator.Validator
	appName   string
}

func NewUserService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	m mailer.Mailer,
	logger *slog.Logger,
	v *validator.Validator,
	appName string,
) UserService {
	return &userService{
		repo:      repo,
		publisher: publisher,
		mailer:    m,
		logger:    logger,
		validator: v,
		appName:   appName,
	}
}

func (s *userService) Create(ctx context.Context, req *UserCreateRequest) (*models.User, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	taken, err := s.repo.User().ExistsByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	if req.DepartmentID != nil {
		if _, err := s.repo.Department().GetByID(ctx, nil, *req.DepartmentID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrDepartmentNotFound
			}
			return nil, fmt.Errorf("failed to load department: %w", err)
		}
	}

	password := req.Password
	generated := password == ""
	if generated {
		password, err = generatePassword(generatedPasswordLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		return nil, err
	}

	body := fmt.Sprintf("Your %s account is ready. Sign in with %s.", s.appName, user.Email)
	if generated {
		body = fmt.Sprintf("Your %s account is ready.\n\nEmail: %s\nPassword: %s\n\nPlease change the password after signing in.",
			s.appName, user.Email, password)
	}
	s.mailer.SendMessages(&mailer.EmailMessage{
		To:      []mail.Address{{Name: user.FullName, Address: user.Email}},
		Subject: fmt.Sprintf("Welcome to %s", s.appName),
		Body:    body,
	})

	if err := s.publisher.Publish(ctx, events.Event{
		Type: events.TypeUserCreated,
		Data: map[string]interface{}{
			"user_id": user.ID,
			"role":    user.Role,
		},
	}); err != nil {
		s.logger.Warn("failed to publish event", "type", events.TypeUserCreated, "error", err)
	}

	s.logger.Info("user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}
	return &UserListResponse{Users: users, Total: total}, nil
}

func (s *userService) Update(ctx context.Context, id uint, req *UserUpdateRequest) (*models.User, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.repo.User().ExistsByEmail(ctx, nil, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.DepartmentID != nil {
		if _, err := s.repo.Department().GetByID(ctx, nil, *req.DepartmentID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrDepartmentNotFound
			}
			return nil, fmt.Errorf("failed to load department: %w", err)
		}
		user.DepartmentID = req.DepartmentID
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "user_id", user.ID)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	owned, err := s.repo.Assignment().CountByOwner(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to count assignments: %w", err)
	}
	if owned > 0 {
		return ErrUserOwnsWork
	}

	if err := s.repo.User().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, req *ProfileUpdateRequest) (*models.User, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.NewPassword != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.NewPassword), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", "user_id", userID, "password_changed", req.NewPassword != nil)
	return user, nil
}

// generatePassword returns a random alphanumeric password of the given length.
func generatePassword(length int) (string, error) {
	const alphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
