package service

import (
	"context"
	"errors"
	"time"

	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/app/repository"
	"github.com/taragold/taraerp-backend/pkg/logger"
	"github.com/taragold/taraerp-backend/pkg/redis"
	"github.com/taragold/taraerp-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrOTPInvalid      = errors.New("invalid verification code")
	ErrOTPExpired      = errors.New("verification code expired or not requested")
	ErrOTPNotVerified  = errors.New("verification code not confirmed")
	ErrOTPThrottled    = errors.New("verification code requested too recently")
	ErrInvalidChannel  = errors.New("unknown delivery channel")
	ErrTooManyAttempts = errors.New("too many failed attempts, request a new code")
)

const (
	otpExpiry       = 5 * time.Minute
	otpResendWindow = 60 * time.Second
	otpMaxAttempts  = 5
	// otpResetWindow is how long a verified code stays usable for the
	// actual password change.
	otpResetWindow = 10 * time.Minute
)

type PasswordResetService interface {
	RequestReset(email string, channel model.ResetChannel) error
	VerifyOTP(email, otp string) error
	ResetPassword(email, otp, newPassword string) error
}

type passwordResetService struct {
	resetRepo repository.PasswordResetRepository
	userRepo  repository.UserRepository
}

func NewPasswordResetService(
	resetRepo repository.PasswordResetRepository,
	userRepo repository.UserRepository,
) PasswordResetService {
	return &passwordResetService{
		resetRepo: resetRepo,
		userRepo:  userRepo,
	}
}

// RequestReset generates a one-time code and dispatches it over the
// requested channel. An unknown email returns nil without sending
// anything, to prevent user enumeration.
func (s *passwordResetService) RequestReset(email string, channel model.ResetChannel) error {
	if channel != model.ResetChannelEmail && channel != model.ResetChannelSMS {
		return ErrInvalidChannel
	}

	logger.Info("Processing password reset request", map[string]interface{}{
		"email":   email,
		"channel": channel,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for non-existent email", map[string]interface{}{
				"email": email,
			})
			return nil
		}
		logger.Error("Failed to find user for password reset", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	if err := s.checkResendAllowed(user); err != nil {
		return err
	}

	otp, err := util.GenerateOTP()
	if err != nil {
		logger.Error("Failed to generate OTP", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	reset := &model.PasswordReset{
		UserID:    user.ID,
		OTP:       otp,
		Channel:   channel,
		ExpiresAt: time.Now().Add(otpExpiry),
	}
	if err := s.resetRepo.Create(reset); err != nil {
		logger.Error("Failed to create password reset record", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	if err := s.dispatch(user, otp, channel); err != nil {
		logger.Error("Failed to dispatch OTP", err, map[string]interface{}{
			"user_id": user.ID,
			"channel": channel,
		})
		return err
	}

	logger.Info("OTP dispatched", map[string]interface{}{
		"user_id": user.ID,
		"channel": channel,
	})
	return nil
}

// VerifyOTP confirms the code without consuming it. The subsequent
// password change must happen within the reset window.
func (s *passwordResetService) VerifyOTP(email, otp string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOTPExpired
		}
		return err
	}

	reset, err := s.activeReset(user.ID)
	if err != nil {
		return err
	}

	if reset.OTP != otp {
		reset.Attempts++
		if updateErr := s.resetRepo.Update(reset); updateErr != nil {
			return updateErr
		}
		logger.Warn("OTP verification failed", map[string]interface{}{
			"user_id":  user.ID,
			"attempts": reset.Attempts,
		})
		if reset.Attempts >= otpMaxAttempts {
			return ErrTooManyAttempts
		}
		return ErrOTPInvalid
	}

	now := time.Now()
	reset.Verified = true
	reset.VerifiedAt = &now
	if err := s.resetRepo.Update(reset); err != nil {
		return err
	}

	logger.Info("OTP verified", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (s *passwordResetService) ResetPassword(email, otp, newPassword string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOTPExpired
		}
		return err
	}

	reset, err := s.activeReset(user.ID)
	if err != nil {
		return err
	}

	if reset.OTP != otp {
		return ErrOTPInvalid
	}
	if !reset.Verified || reset.VerifiedAt == nil {
		return ErrOTPNotVerified
	}
	if time.Since(*reset.VerifiedAt) > otpResetWindow {
		return ErrOTPExpired
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash new password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	if err := s.resetRepo.MarkAsUsed(reset.ID); err != nil {
		logger.Error("Failed to mark password reset as used", err, map[string]interface{}{
			"reset_id": reset.ID,
		})
		// Password already changed, do not fail the request
	}

	logger.Info("Password reset successful", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (s *passwordResetService) activeReset(userID uint) (*model.PasswordReset, error) {
	reset, err := s.resetRepo.FindActiveByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOTPExpired
		}
		return nil, err
	}
	if reset.Attempts >= otpMaxAttempts {
		return nil, ErrTooManyAttempts
	}
	return reset, nil
}

func (s *passwordResetService) checkResendAllowed(user *model.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	allowed, err := redis.AllowOTPSend(ctx, user.Email, otpResendWindow)
	if err == nil && !allowed {
		logger.Warn("OTP request throttled", map[string]interface{}{
			"user_id": user.ID,
		})
		return ErrOTPThrottled
	}

	latest, err := s.resetRepo.FindLatestByUserID(user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if time.Since(latest.CreatedAt) < otpResendWindow {
		logger.Warn("OTP request throttled", map[string]interface{}{
			"user_id": user.ID,
		})
		return ErrOTPThrottled
	}
	return nil
}

func (s *passwordResetService) dispatch(user *model.User, otp string, channel model.ResetChannel) error {
	if channel == model.ResetChannelSMS {
		return util.SendOTPSMS(user.Mobile, otp)
	}
	return util.SendOTPEmail(user.Email, otp)
}
