package repository

import (
	"testing"

	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewUserRepository(testDB)
	return testDB, repo
}

func TestUserRepository_Create(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	tests := []struct {
		name    string
		user    *model.User
		wantErr bool
	}{
		{
			name: "Valid user",
			user: &model.User{
				UserCode:     "UR-0001",
				Email:        "test@example.com",
				PasswordHash: "hashedpassword",
				Name:         "Test User",
				Mobile:       "9876543210",
				Role:         model.RoleUser,
			},
			wantErr: false,
		},
		{
			name: "Duplicate email",
			user: &model.User{
				UserCode:     "UR-0002",
				Email:        "test@example.com",
				PasswordHash: "hashedpassword",
				Name:         "Another User",
				Mobile:       "9876543211",
				Role:         model.RoleUser,
			},
			wantErr: true,
		},
		{
			name: "Duplicate user code",
			user: &model.User{
				UserCode:     "UR-0001",
				Email:        "other@example.com",
				PasswordHash: "hashedpassword",
				Name:         "Other User",
				Mobile:       "9876543212",
				Role:         model.RoleUser,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.user)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, tt.user.ID)
			}
		})
	}
}

func TestUserRepository_FindByID(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{
		UserCode:     "UR-0001",
		Email:        "test@example.com",
		PasswordHash: "hashedpassword",
		Name:         "Test User",
		Role:         model.RoleUser,
	}
	err := repo.Create(user)
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      uint
		wantErr bool
	}{
		{
			name:    "Existing user",
			id:      user.ID,
			wantErr: false,
		},
		{
			name:    "Non-existing user",
			id:      9999,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByID(tt.id)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, found)
			} else {
				require.NoError(t, err)
				require.NotNil(t, found)
				assert.Equal(t, user.Email, found.Email)
				assert.Equal(t, user.UserCode, found.UserCode)
			}
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{
		UserCode:     "UR-0001",
		Email:        "test@example.com",
		PasswordHash: "hashedpassword",
		Name:         "Test User",
		Role:         model.RoleUser,
	}
	err := repo.Create(user)
	require.NoError(t, err)

	found, err := repo.FindByEmail("test@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail("notfound@example.com")
	assert.Error(t, err)
}

func TestUserRepository_UserCodes(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	users := []*model.User{
		{UserCode: "AD-0001", Email: "a@example.com", PasswordHash: "x", Name: "A", Role: model.RoleAdmin},
		{UserCode: "AD-0002", Email: "b@example.com", PasswordHash: "x", Name: "B", Role: model.RoleAdmin},
		{UserCode: "CF-0001", Email: "c@example.com", PasswordHash: "x", Name: "C", Role: model.RoleCraftsman},
	}
	for _, u := range users {
		require.NoError(t, repo.Create(u))
	}

	codes, err := repo.UserCodes("AD")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AD-0001", "AD-0002"}, codes)

	// Soft-deleted users keep their code reserved.
	require.NoError(t, repo.Delete(users[1].ID))
	codes, err = repo.UserCodes("AD")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AD-0001", "AD-0002"}, codes)
}

func TestUserRepository_Update(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{
		UserCode:     "UR-0001",
		Email:        "test@example.com",
		PasswordHash: "hashedpassword",
		Name:         "Test User",
		Mobile:       "9876543210",
		Role:         model.RoleUser,
	}
	err := repo.Create(user)
	require.NoError(t, err)

	user.Name = "Updated Name"
	user.Mobile = "9999999999"

	err = repo.Update(user)
	assert.NoError(t, err)

	updated, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Name", updated.Name)
	assert.Equal(t, "9999999999", updated.Mobile)
}

func TestUserRepository_Delete(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{
		UserCode:     "UR-0001",
		Email:        "test@example.com",
		PasswordHash: "hashedpassword",
		Name:         "Test User",
		Role:         model.RoleUser,
	}
	err := repo.Create(user)
	require.NoError(t, err)

	err = repo.Delete(user.ID)
	assert.NoError(t, err)

	// Soft delete hides the row from normal queries.
	_, err = repo.FindByID(user.ID)
	assert.Error(t, err)
}
