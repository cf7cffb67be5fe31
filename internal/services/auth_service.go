package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/UniPortal-2026/submission-service/internal/cache"
	"github.com/UniPortal-2026/submission-service/internal/config"
	"github.com/UniPortal-2026/submission-service/internal/mailer"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
	"github.com/UniPortal-2026/submission-service/internal/validator"
)

const (
	purposeSession = "session"
	purposeReset   = "reset"

	resetTokenExpiry = 10 * time.Minute
	bcryptCost       = 10
)

type tokenClaims struct {
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type authService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	otpCache  *cache.CacheHelper
	mailer    mailer.Mailer
	jwtCfg    config.JWTConfig
	appName   string
}

func NewAuthService(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	otpCache *cache.CacheHelper,
	m mailer.Mailer,
	jwtCfg config.JWTConfig,
	appName string,
) AuthService {
	return &authService{
		repo:      repo,
		logger:    logger,
		validator: v,
		otpCache:  otpCache,
		mailer:    m,
		jwtCfg:    jwtCfg,
		appName:   appName,
	}
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Same response as a bad password so probes learn nothing.
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.jwtCfg.Expiry)
	token, err := s.generateToken(user.ID, string(user.Role), purposeSession, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (s *authService) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return errs
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	// The TTL is the whole validity window; VerifyOTP consumes the key.
	if err := s.otpCache.SetString(ctx, req.Email, otp, cache.OTPCacheConfig.TTL); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	s.mailer.SendMessages(&mailer.EmailMessage{
		To:      []mail.Address{{Name: user.FullName, Address: user.Email}},
		Subject: "Your password reset OTP",
		Body: fmt.Sprintf(
			"Use the following code to reset your %s password. It is valid for one minute.\n\n\t%s\n",
			s.appName, otp),
	})

	s.logger.Info("password reset OTP issued", "user_id", user.ID)
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, req *VerifyOTPRequest) (*VerifyOTPResponse, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	stored, err := s.otpCache.GetString(ctx, req.Email)
	if err != nil {
		if errors.Is(err, cache.ErrCacheNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("failed to read OTP: %w", err)
	}
	if stored != req.OTP {
		return nil, ErrInvalidOTP
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// One shot per code.
	cache.SafeDelete(ctx, s.otpCache, req.Email)

	resetToken, err := s.generateToken(user.ID, "", purposeReset, time.Now().Add(resetTokenExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to sign reset token: %w", err)
	}

	return &VerifyOTPResponse{ResetToken: resetToken}, nil
}

func (s *authService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return errs
	}

	userID, err := s.parseToken(req.ResetToken, purposeReset)
	if err != nil {
		return ErrInvalidResetToken
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("password reset completed", "user_id", user.ID)
	return nil
}

func (s *authService) ParseToken(token string) (uint, error) {
	return s.parseToken(token, purposeSession)
}

func (s *authService) generateToken(userID uint, role, purpose string, expiresAt time.Time) (string, error) {
	claims := tokenClaims{
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.Secret))
}

func (s *authService) parseToken(tokenString, purpose string) (uint, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Purpose != purpose {
		return 0, fmt.Errorf("token purpose mismatch")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token subject: %w", err)
	}
	return uint(userID), nil
}

// generateOTP returns a 4-digit numeric code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+1000, 10), nil
}
