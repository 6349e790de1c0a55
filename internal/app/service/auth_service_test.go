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

func setupAuthServiceTest(t *testing.T) (AuthService, repository.UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := NewAuthService(
		userRepo,
		codegen.NewKeyedMutex(),
		"test-jwt-secret",
		15*time.Minute,
		7*24*time.Hour,
	)

	return authService, userRepo
}

func TestAuthService_Register(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		mobile   string
		role     model.UserRole
		wantCode string
		wantErr  error
	}{
		{
			name:     "Valid registration defaults to User role",
			email:    "test@example.com",
			password: "password123",
			userName: "Test User",
			mobile:   "9876543210",
			role:     "",
			wantCode: "UR-0001",
			wantErr:  nil,
		},
		{
			name:     "Admin registration",
			email:    "admin@example.com",
			password: "password123",
			userName: "Admin User",
			mobile:   "9876543211",
			role:     model.RoleAdmin,
			wantCode: "AD-0001",
			wantErr:  nil,
		},
		{
			name:     "Duplicate email",
			email:    "test@example.com",
			password: "password456",
			userName: "Another User",
			mobile:   "9876543212",
			role:     model.RoleUser,
			wantErr:  ErrEmailAlreadyExists,
		},
		{
			name:     "Unknown role",
			email:    "other@example.com",
			password: "password123",
			userName: "Other User",
			mobile:   "9876543213",
			role:     model.UserRole("Janitor"),
			wantErr:  ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Register(
				tt.email,
				tt.password,
				tt.userName,
				tt.mobile,
				tt.role,
			)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				require.NotNil(t, tokens)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, tt.userName, user.Name)
				assert.Equal(t, tt.wantCode, user.UserCode)
				assert.True(t, user.IsActive)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
			}
		})
	}
}

func TestAuthService_Register_SequentialCodes(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	first, _, err := authService.Register("ku1@example.com", "password123", "Key User One", "9000000001", model.RoleKeyUser)
	require.NoError(t, err)
	second, _, err := authService.Register("ku2@example.com", "password123", "Key User Two", "9000000002", model.RoleKeyUser)
	require.NoError(t, err)

	assert.Equal(t, "KU-0001", first.UserCode)
	assert.Equal(t, "KU-0002", second.UserCode)

	// Other role prefixes count independently
	craftsman, _, err := authService.Register("cf@example.com", "password123", "Craftsman", "9000000003", model.RoleCraftsman)
	require.NoError(t, err)
	assert.Equal(t, "CF-0001", craftsman.UserCode)
}

func TestAuthService_Login(t *testing.T) {
	authService, userRepo := setupAuthServiceTest(t)

	email := "test@example.com"
	password := "password123"
	registered, _, err := authService.Register(email, password, "Test User", "9876543210", model.RoleUser)
	require.NoError(t, err)

	// Deactivated account for the inactive case
	inactive, _, err := authService.Register("inactive@example.com", password, "Gone User", "9876543211", model.RoleUser)
	require.NoError(t, err)
	inactive.IsActive = false
	require.NoError(t, userRepo.Update(inactive))

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "Valid login",
			email:    email,
			password: password,
			wantErr:  nil,
		},
		{
			name:     "Wrong password",
			email:    email,
			password: "wrongpassword",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "Non-existing user",
			email:    "notfound@example.com",
			password: "password123",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "Deactivated account",
			email:    "inactive@example.com",
			password: password,
			wantErr:  ErrUserInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Login(tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				require.NotNil(t, tokens)
				assert.Equal(t, registered.UserCode, user.UserCode)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
			}
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, tokens, err := authService.Register("test@example.com", "password123", "Test User", "9876543210", model.RoleUser)
	require.NoError(t, err)

	refreshed, err := authService.Refresh(tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEmpty(t, refreshed.RefreshToken)

	_, err = authService.Refresh("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GetUserByID(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, _, err := authService.Register(
		"test@example.com",
		"password123",
		"Test User",
		"9876543210",
		model.RoleUser,
	)
	require.NoError(t, err)

	tests := []struct {
		name    string
		userID  uint
		wantErr error
	}{
		{
			name:    "Existing user",
			userID:  user.ID,
			wantErr: nil,
		},
		{
			name:    "Non-existing user",
			userID:  9999,
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := authService.GetUserByID(tt.userID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, found)
			} else {
				require.NoError(t, err)
				require.NotNil(t, found)
				assert.Equal(t, user.Email, found.Email)
				assert.Equal(t, user.Name, found.Name)
			}
		})
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, _, err := authService.Register("test@example.com", "password123", "Test User", "9876543210", model.RoleUser)
	require.NoError(t, err)

	updated, err := authService.UpdateProfile(user.ID, "New Name", "9000000000")
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "9000000000", updated.Mobile)

	// Empty fields leave the profile untouched
	same, err := authService.UpdateProfile(user.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "New Name", same.Name)

	_, err = authService.UpdateProfile(9999, "Ghost", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_PasswordSecurity(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	password := "mySecretPassword123"
	user, _, err := authService.Register(
		"test@example.com",
		password,
		"Test User",
		"9876543210",
		model.RoleUser,
	)
	require.NoError(t, err)

	// Password should be hashed
	assert.NotEqual(t, password, user.PasswordHash)
	assert.Contains(t, user.PasswordHash, "$2a$")
}
