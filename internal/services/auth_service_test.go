package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/UniPortal-2026/submission-service/internal/cache"
	"github.com/UniPortal-2026/submission-service/internal/config"
	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/validator"
)

func newAuthFixture(t *testing.T) (AuthService, *mockRepository, *mockMailer, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	otpCache := cache.NewCacheHelper(client, cache.OTPCacheConfig.Prefix)

	repo := newMockRepository()
	m := &mockMailer{}
	jwtCfg := config.JWTConfig{
		Secret:     "test-secret",
		Expiry:     2 * time.Hour,
		CookieName: "token",
	}

	service := NewAuthService(repo, testLogger(), validator.New(), otpCache, m, jwtCfg, "University Portal")
	return service, repo, m, mr
}

func seedAccount(t *testing.T, repo *mockRepository, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		FullName:     "Asha Student",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
	}
	if err := repo.users.Create(context.Background(), nil, user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	service, repo, _, _ := newAuthFixture(t)
	user := seedAccount(t, repo, "asha@example.edu", "correct-horse-battery")

	t.Run("valid credentials issue a session token", func(t *testing.T) {
		resp, err := service.Login(ctx, &LoginRequest{Email: user.Email, Password: "correct-horse-battery"})
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if resp.Token == "" {
			t.Fatal("expected a token")
		}

		gotID, err := service.ParseToken(resp.Token)
		if err != nil {
			t.Fatalf("parse token: %v", err)
		}
		if gotID != user.ID {
			t.Errorf("expected user %d, got %d", user.ID, gotID)
		}
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		_, badPassword := service.Login(ctx, &LoginRequest{Email: user.Email, Password: "nope-nope"})
		_, badEmail := service.Login(ctx, &LoginRequest{Email: "ghost@example.edu", Password: "whatever1"})

		if !errors.Is(badPassword, ErrInvalidCredentials) || !errors.Is(badEmail, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", badPassword, badEmail)
		}
	})
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	service, repo, m, mr := newAuthFixture(t)
	user := seedAccount(t, repo, "asha@example.edu", "original-password")

	if err := service.ForgotPassword(ctx, &ForgotPasswordRequest{Email: user.Email}); err != nil {
		t.Fatalf("forgot password: %v", err)
	}

	if len(m.sent()) != 1 {
		t.Fatalf("expected one OTP email, got %d", len(m.sent()))
	}

	otp, err := mr.Get(cache.OTPCacheConfig.Prefix + user.Email)
	if err != nil {
		t.Fatalf("expected OTP in redis: %v", err)
	}
	if len(otp) != 4 {
		t.Fatalf("expected a 4-digit OTP, got %q", otp)
	}

	t.Run("wrong OTP is rejected", func(t *testing.T) {
		wrong := "0000"
		if wrong == otp {
			wrong = "0001"
		}
		_, err := service.VerifyOTP(ctx, &VerifyOTPRequest{Email: user.Email, OTP: wrong})
		if !errors.Is(err, ErrInvalidOTP) {
			t.Fatalf("expected ErrInvalidOTP, got %v", err)
		}
	})

	var resetToken string
	t.Run("correct OTP issues a reset token and is consumed", func(t *testing.T) {
		resp, err := service.VerifyOTP(ctx, &VerifyOTPRequest{Email: user.Email, OTP: otp})
		if err != nil {
			t.Fatalf("verify OTP: %v", err)
		}
		resetToken = resp.ResetToken

		// The code is one-shot.
		_, err = service.VerifyOTP(ctx, &VerifyOTPRequest{Email: user.Email, OTP: otp})
		if !errors.Is(err, ErrInvalidOTP) {
			t.Fatalf("expected reused OTP to fail, got %v", err)
		}
	})

	t.Run("reset token is not a session token", func(t *testing.T) {
		if _, err := service.ParseToken(resetToken); err == nil {
			t.Fatal("expected reset token to be rejected as a session token")
		}
	})

	t.Run("reset token updates the password", func(t *testing.T) {
		err := service.ResetPassword(ctx, &ResetPasswordRequest{
			ResetToken: resetToken,
			Password:   "brand-new-password",
		})
		if err != nil {
			t.Fatalf("reset password: %v", err)
		}

		if _, err := service.Login(ctx, &LoginRequest{Email: user.Email, Password: "brand-new-password"}); err != nil {
			t.Fatalf("login with new password: %v", err)
		}
		if _, err := service.Login(ctx, &LoginRequest{Email: user.Email, Password: "original-password"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected old password to fail, got %v", err)
		}
	})
}

func TestAuthService_OTPExpiry(t *testing.T) {
	ctx := context.Background()
	service, repo, _, mr := newAuthFixture(t)
	user := seedAccount(t, repo, "asha@example.edu", "original-password")

	if err := service.ForgotPassword(ctx, &ForgotPasswordRequest{Email: user.Email}); err != nil {
		t.Fatalf("forgot password: %v", err)
	}

	otp, err := mr.Get(cache.OTPCacheConfig.Prefix + user.Email)
	if err != nil {
		t.Fatalf("expected OTP in redis: %v", err)
	}

	// The whole validity window elapses.
	mr.FastForward(cache.OTPCacheConfig.TTL + time.Second)

	if _, err := service.VerifyOTP(ctx, &VerifyOTPRequest{Email: user.Email, OTP: otp}); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected expired OTP to fail, got %v", err)
	}
}

func TestAuthService_ParseToken_Garbage(t *testing.T) {
	service, _, _, _ := newAuthFixture(t)

	if _, err := service.ParseToken("not-a-token"); err == nil {
		t.Fatal("expected garbage token to fail")
	}
}
