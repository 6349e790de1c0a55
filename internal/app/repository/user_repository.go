package repository

import (
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByMobile(mobile string) (*model.User, error)
	FindByRole(role model.UserRole) ([]model.User, error)
	UserCodes(prefix string) ([]string, error)
	Update(user *model.User) error
	Delete(id uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email":     user.Email,
		"user_code": user.UserCode,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id":   user.ID,
		"email":     user.Email,
		"user_code": user.UserCode,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	err := r.db.First(&user, id).Error
	if err != nil {
		logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		logger.Error("Failed to find user by email in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByMobile(mobile string) (*model.User, error) {
	logger.Debug("Finding user by mobile in database", map[string]interface{}{
		"mobile": mobile,
	})

	var user model.User
	err := r.db.Where("mobile = ?", mobile).First(&user).Error
	if err != nil {
		logger.Error("Failed to find user by mobile in database", err, map[string]interface{}{
			"mobile": mobile,
		})
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByRole(role model.UserRole) ([]model.User, error) {
	logger.Debug("Finding users by role in database", map[string]interface{}{
		"role": role,
	})

	var users []model.User
	if err := r.db.Where("role = ?", role).
		Order("user_code ASC").
		Find(&users).Error; err != nil {
		logger.Error("Failed to find users by role in database", err, map[string]interface{}{
			"role": role,
		})
		return nil, err
	}

	return users, nil
}

// UserCodes returns every code issued under the given role prefix,
// soft-deleted users included so their codes are never reissued.
func (r *userRepository) UserCodes(prefix string) ([]string, error) {
	var codes []string
	err := r.db.Unscoped().Model(&model.User{}).
		Where("user_code LIKE ?", prefix+"-%").
		Pluck("user_code", &codes).Error
	if err != nil {
		logger.Error("Failed to query user codes in database", err, map[string]interface{}{
			"prefix": prefix,
		})
		return nil, err
	}
	return codes, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
			"email":   user.Email,
		})
		return err
	}

	return nil
}

func (r *userRepository) Delete(id uint) error {
	logger.Debug("Deleting user from database", map[string]interface{}{
		"user_id": id,
	})

	if err := r.db.Delete(&model.User{}, id).Error; err != nil {
		logger.Error("Failed to delete user from database", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}

	return nil
}
