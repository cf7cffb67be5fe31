package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/UniPortal-2026/submission-service/internal/config"
	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/services"
	"github.com/UniPortal-2026/submission-service/internal/utils"
)

type stubAuthService struct{}

func (s *stubAuthService) Login(ctx context.Context, req *services.LoginRequest) (*services.LoginResponse, error) {
	return &services.LoginResponse{
		Token:     "session-token",
		ExpiresAt: time.Now().Add(2 * time.Hour),
		User:      &models.User{ID: 1, Email: req.Email, Role: models.RoleStudent},
	}, nil
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, req *services.ForgotPasswordRequest) error {
	return nil
}

func (s *stubAuthService) VerifyOTP(ctx context.Context, req *services.VerifyOTPRequest) (*services.VerifyOTPResponse, error) {
	return &services.VerifyOTPResponse{}, nil
}

func (s *stubAuthService) ResetPassword(ctx context.Context, req *services.ResetPasswordRequest) error {
	return nil
}

func (s *stubAuthService) ParseToken(token string) (uint, error) {
	return 1, nil
}

func loginCookie(t *testing.T, jwtCfg config.JWTConfig) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := NewAuthHandler(&stubAuthService{}, nil, jwtCfg, logger)

	router := gin.New()
	router.POST("/login", handler.Login)

	body := strings.NewReader(`{"email":"asha@example.edu","password":"secret123"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	cookie := w.Header().Get("Set-Cookie")
	if cookie == "" {
		t.Fatal("expected a session cookie")
	}
	return cookie
}

func TestAuthHandler_Login_CookieFlags(t *testing.T) {
	jwtCfg := config.JWTConfig{
		Secret:     "test-secret",
		Expiry:     2 * time.Hour,
		CookieName: "token",
	}

	t.Run("development cookie is http-only but not secure", func(t *testing.T) {
		cookie := loginCookie(t, jwtCfg)
		if !strings.Contains(cookie, "HttpOnly") {
			t.Errorf("expected HttpOnly cookie, got %q", cookie)
		}
		if strings.Contains(cookie, "Secure") {
			t.Errorf("expected no Secure attribute in development, got %q", cookie)
		}
	})

	t.Run("production cookie carries the Secure attribute", func(t *testing.T) {
		secureCfg := jwtCfg
		secureCfg.SecureCookie = true

		cookie := loginCookie(t, secureCfg)
		if !strings.Contains(cookie, "Secure") {
			t.Errorf("expected Secure cookie, got %q", cookie)
		}
		if !strings.Contains(cookie, "HttpOnly") {
			t.Errorf("expected HttpOnly cookie, got %q", cookie)
		}
	})
}
