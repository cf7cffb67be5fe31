package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UniPortal-2026/submission-service/internal/config"
	"github.com/UniPortal-2026/submission-service/internal/services"
	"github.com/UniPortal-2026/submission-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	userService services.UserService
	jwtCfg      config.JWTConfig
}

func NewAuthHandler(authService services.AuthService, userService services.UserService, jwtCfg config.JWTConfig, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		userService: userService,
		jwtCfg:      jwtCfg,
	}
}

// Login authenticates with email and password and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	h.LogRequest(c, "logging in")

	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	maxAge := int(h.jwtCfg.Expiry.Seconds())
	c.SetCookie(h.jwtCfg.CookieName, resp.Token, maxAge, "/", "", h.jwtCfg.SecureCookie, true)

	c.JSON(http.StatusOK, resp)
}

// Logout clears the session cookie. The token itself stays valid until
// expiry; there is no server-side session state.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(h.jwtCfg.CookieName, "", -1, "/", "", h.jwtCfg.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// ForgotPassword emails a short-lived OTP to the account address.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	h.LogRequest(c, "requesting password reset")

	var req services.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent"})
}

// VerifyOTP exchanges a valid OTP for a reset token.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	h.LogRequest(c, "verifying OTP")

	var req services.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	resp, err := h.authService.VerifyOTP(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ResetPassword consumes a reset token and stores the new password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	h.LogRequest(c, "resetting password")

	var req services.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// GetProfile returns the caller's own account.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile covers the self-service phone/password form.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	h.LogRequest(c, "updating profile")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req services.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
