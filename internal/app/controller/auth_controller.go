package controller

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/app/service"
	apperrors "github.com/taragold/taraerp-backend/internal/errors"
	"github.com/taragold/taraerp-backend/internal/middleware"
)

type AuthController struct {
	authService          service.AuthService
	passwordResetService service.PasswordResetService
	accessTokenExpiry    time.Duration
}

func NewAuthController(authService service.AuthService, passwordResetService service.PasswordResetService, accessTokenExpiry time.Duration) *AuthController {
	return &AuthController{
		authService:          authService,
		passwordResetService: passwordResetService,
		accessTokenExpiry:    accessTokenExpiry,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Mobile   string `json:"mobile"`
	Role     string `json:"role"` // defaults to User
}

// LoginRequest accepts either the email or the mobile number.
type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Mobile   string `json:"mobile" binding:"omitempty"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateProfileRequest struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type RequestResetRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Channel string `json:"channel"` // email or sms, defaults to email
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

func userPayload(user *model.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"user_code": user.UserCode,
		"email":     user.Email,
		"name":      user.Name,
		"mobile":    user.Mobile,
		"role":      user.Role,
		"is_active": user.IsActive,
	}
}

// Register handles user registration
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	log.Debug("Processing registration", map[string]interface{}{
		"email": req.Email,
		"name":  req.Name,
		"role":  req.Role,
	})

	user, tokens, err := ctrl.authService.Register(req.Email, req.Password, req.Name, req.Mobile, model.UserRole(req.Role))
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			log.Warn("Registration failed: email already exists", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "This email is already in use")
			return
		}
		if errors.Is(err, service.ErrInvalidRole) {
			log.Warn("Registration failed: unknown role", map[string]interface{}{
				"role": req.Role,
			})
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unknown user role")
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "register user")
		return
	}

	log.Info("User registered successfully", map[string]interface{}{
		"user_id":   user.ID,
		"user_code": user.UserCode,
		"email":     user.Email,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    userPayload(user),
		"tokens":  tokens,
	})
}

// Login handles user login
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	identifier := req.Email
	if identifier == "" {
		identifier = req.Mobile
	}
	if identifier == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Email or mobile number is required")
		return
	}

	log.Debug("Processing login", map[string]interface{}{
		"identifier": identifier,
	})

	user, tokens, err := ctrl.authService.Login(identifier, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("Login failed: invalid credentials", map[string]interface{}{
				"identifier": identifier,
			})
			apperrors.Unauthorized(c, "Incorrect email or password")
			return
		}
		if errors.Is(err, service.ErrUserInactive) {
			log.Warn("Login failed: account deactivated", map[string]interface{}{
				"identifier": identifier,
			})
			apperrors.Forbidden(c, "This account has been deactivated")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"identifier": identifier,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "login")
		return
	}

	log.Info("Login successful", map[string]interface{}{
		"user_id":   user.ID,
		"user_code": user.UserCode,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    userPayload(user),
		"tokens":  tokens,
	})
}

// Logout revokes the presented access token
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	authHeader := c.GetHeader("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" || token == authHeader {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	if err := ctrl.authService.Logout(token, ctrl.accessTokenExpiry); err != nil {
		// Logout always succeeds from the user's perspective. Without a
		// blacklist entry the token simply ages out.
		log.Error("Failed to blacklist token during logout", err, nil)
	}

	if userID, ok := middleware.GetUserID(c); ok {
		log.Info("User logged out", map[string]interface{}{
			"user_id": userID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// RefreshToken handles token refresh
// POST /api/v1/auth/refresh
func (ctrl *AuthController) RefreshToken(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid refresh token request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	log.Debug("Processing token refresh")

	tokens, err := ctrl.authService.Refresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("Token refresh failed: invalid or expired token", nil)
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid or expired refresh token, please log in again")
			return
		}
		if errors.Is(err, service.ErrUserInactive) {
			log.Warn("Token refresh failed: account deactivated", nil)
			apperrors.Forbidden(c, "This account has been deactivated")
			return
		}
		log.Error("Failed to refresh token", err, nil)
		apperrors.InternalError(c, "Failed to refresh token")
		return
	}

	log.Info("Token refreshed successfully")

	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed successfully",
		"tokens":  tokens,
	})
}

// GetMe returns current user information
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			log.Warn("User not found", map[string]interface{}{
				"user_id": userID,
			})
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to get user information", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userPayload(user),
	})
}

// UpdateMe updates current user's profile
// PUT /api/v1/auth/me
func (ctrl *AuthController) UpdateMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update profile request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	user, err := ctrl.authService.UpdateProfile(userID, req.Name, req.Mobile)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to update user profile", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update profile")
		return
	}

	log.Info("User profile updated successfully", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    userPayload(user),
	})
}

// ChangePassword replaces the current user's password
// POST /api/v1/auth/change-password
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid change password request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	if err := ctrl.authService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.Unauthorized(c, "Current password is incorrect")
			return
		}
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to change password", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "change password")
		return
	}

	log.Info("Password changed successfully", map[string]interface{}{
		"user_id": userID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Password changed successfully",
	})
}

// RequestPasswordReset sends a one-time code over the requested channel
// POST /api/v1/auth/password-reset/request
func (ctrl *AuthController) RequestPasswordReset(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RequestResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid password reset request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	channel := model.ResetChannel(req.Channel)
	if req.Channel == "" {
		channel = model.ResetChannelEmail
	}

	if err := ctrl.passwordResetService.RequestReset(req.Email, channel); err != nil {
		if errors.Is(err, service.ErrInvalidChannel) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Delivery channel must be email or sms")
			return
		}
		if errors.Is(err, service.ErrOTPThrottled) {
			log.Warn("Password reset throttled", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.RespondWithError(c, http.StatusTooManyRequests, apperrors.AuthOTPThrottled, "Please wait before requesting another code")
			return
		}
		log.Error("Failed to process password reset request", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "Failed to process the password reset request")
		return
	}

	// Always the same response whether or not the email exists.
	log.Info("Password reset request processed", map[string]interface{}{
		"email": req.Email,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "If the email is registered, a verification code has been sent",
	})
}

// VerifyPasswordResetOTP checks a one-time code before the password change
// POST /api/v1/auth/password-reset/verify
func (ctrl *AuthController) VerifyPasswordResetOTP(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid OTP verification request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	if err := ctrl.passwordResetService.VerifyOTP(req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, service.ErrTooManyAttempts):
			log.Warn("OTP verification locked out", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.RespondWithError(c, http.StatusTooManyRequests, apperrors.AuthOTPInvalid, "Too many incorrect attempts, please request a new code")
		case errors.Is(err, service.ErrOTPExpired):
			apperrors.BadRequest(c, apperrors.AuthOTPExpired, "The verification code has expired, please request a new one")
		case errors.Is(err, service.ErrOTPInvalid):
			apperrors.BadRequest(c, apperrors.AuthOTPInvalid, "Incorrect verification code")
		default:
			log.Error("OTP verification failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.InternalError(c, "Failed to verify the code")
		}
		return
	}

	log.Info("Password reset OTP verified", map[string]interface{}{
		"email": req.Email,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Code verified, you may now set a new password",
	})
}

// ResetPassword sets a new password after OTP verification
// POST /api/v1/auth/password-reset/confirm
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid reset password request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	if err := ctrl.passwordResetService.ResetPassword(req.Email, req.OTP, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrOTPNotVerified):
			apperrors.BadRequest(c, apperrors.AuthOTPNotVerified, "The code has not been verified yet")
		case errors.Is(err, service.ErrOTPExpired), errors.Is(err, service.ErrOTPInvalid):
			apperrors.BadRequest(c, apperrors.AuthOTPExpired, "The verification code is invalid or has expired")
		default:
			log.Error("Failed to reset password", err, nil)
			apperrors.InternalError(c, "Failed to reset the password")
		}
		return
	}

	log.Info("Password reset successful", map[string]interface{}{
		"email": req.Email,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successful",
	})
}
