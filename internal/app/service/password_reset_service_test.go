package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taragold/taraerp-backend/internal/app/codegen"
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/app/repository"
	"github.com/taragold/taraerp-backend/internal/db"
)

func setupPasswordResetTest(t *testing.T) (PasswordResetService, AuthService, repository.PasswordResetRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	resetRepo := repository.NewPasswordResetRepository(testDB)
	authService := NewAuthService(
		userRepo,
		codegen.NewKeyedMutex(),
		"test-jwt-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	resetService := NewPasswordResetService(resetRepo, userRepo)

	return resetService, authService, resetRepo
}

func TestPasswordResetService_RequestReset(t *testing.T) {
	resetService, authService, resetRepo := setupPasswordResetTest(t)

	user, _, err := authService.Register("test@example.com", "password123", "Test User", "9876543210", model.RoleUser)
	require.NoError(t, err)

	// Unknown email must not error, to prevent enumeration
	require.NoError(t, resetService.RequestReset("ghost@example.com", model.ResetChannelEmail))

	// Unknown channel is rejected
	assert.ErrorIs(t, resetService.RequestReset(user.Email, model.ResetChannel("pigeon")), ErrInvalidChannel)

	require.NoError(t, resetService.RequestReset(user.Email, model.ResetChannelEmail))

	reset, err := resetRepo.FindActiveByUserID(user.ID)
	require.NoError(t, err)
	assert.Len(t, reset.OTP, 6)
	assert.Equal(t, model.ResetChannelEmail, reset.Channel)
	assert.False(t, reset.Verified)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), reset.ExpiresAt, 10*time.Second)

	// Immediate resend is throttled
	assert.ErrorIs(t, resetService.RequestReset(user.Email, model.ResetChannelEmail), ErrOTPThrottled)
}

func TestPasswordResetService_VerifyOTP(t *testing.T) {
	resetService, authService, resetRepo := setupPasswordResetTest(t)

	user, _, err := authService.Register("test@example.com", "password123", "Test User", "9876543210", model.RoleUser)
	require.NoError(t, err)
	require.NoError(t, resetService.RequestReset(user.Email, model.ResetChannelEmail))

	reset, err := resetRepo.FindActiveByUserID(user.ID)
	require.NoError(t, err)

	// No code outstanding for this email
	assert.ErrorIs(t, resetService.VerifyOTP("ghost@example.com", "000000"), ErrOTPExpired)

	wrong := "000000"
	if reset.OTP == wrong {
		wrong = "111111"
	}
	assert.ErrorIs(t, resetService.VerifyOTP(user.Email, wrong), ErrOTPInvalid)

	require.NoError(t, resetService.VerifyOTP(user.Email, reset.OTP))

	verified, err := resetRepo.FindActiveByUserID(user.ID)
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	require.NotNil(t, verified.VerifiedAt)
	assert.Equal(t, 1, verified.Attempts)
}

func TestPasswordResetService_VerifyOTP_AttemptCap(t *testing.T) {
	resetService, authService, resetRepo := setupPasswordResetTest(t)

	user, _, err := authService.Register("test@example.com", "password123", "Test User", "9876543210", model.RoleUser)
	require.NoError(t, err)
	require.NoError(t, resetService.RequestReset(user.Email, model.ResetChannelEmail))

	reset, err := resetRepo.FindActiveByUserID(user.ID)
	require.NoError(t, err)

	wrong := "000000"
	if reset.OTP == wrong {
		wrong = "111111"
	}

	for i := 0; i < 4; i++ {
		assert.ErrorIs(t, resetService.VerifyOTP(user.Email, wrong), ErrOTPInvalid)
	}
	// Fifth failure exhausts the code
	assert.ErrorIs(t, resetService.VerifyOTP(user.Email, wrong), ErrTooManyAttempts)

	// Even the right code is refused afterwards
	assert.ErrorIs(t, resetService.VerifyOTP(user.Email, reset.OTP), ErrTooManyAttempts)
}

func TestPasswordResetService_ResetPassword(t *testing.T) {
	resetService, authService, resetRepo := setupPasswordResetTest(t)

	user, _, err := authService.Register("test@example.com", "password123", "Test User", "9876543210", model.RoleUser)
	require.NoError(t, err)

	// No request made yet
	assert.ErrorIs(t, resetService.ResetPassword(user.Email, "123456", "newpassword"), ErrOTPExpired)

	require.NoError(t, resetService.RequestReset(user.Email, model.ResetChannelSMS))
	reset, err := resetRepo.FindActiveByUserID(user.ID)
	require.NoError(t, err)

	// Must verify before the password can change
	assert.ErrorIs(t, resetService.ResetPassword(user.Email, reset.OTP, "newpassword"), ErrOTPNotVerified)

	require.NoError(t, resetService.VerifyOTP(user.Email, reset.OTP))
	require.NoError(t, resetService.ResetPassword(user.Email, reset.OTP, "newpassword"))

	// Old password no longer works, new one does
	_, _, err = authService.Login(user.Email, "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = authService.Login(user.Email, "newpassword")
	require.NoError(t, err)

	// Used code cannot be replayed
	assert.ErrorIs(t, resetService.ResetPassword(user.Email, reset.OTP, "anotherpassword"), ErrOTPExpired)
}
