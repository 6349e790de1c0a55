package repository

import (
	"time"

	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/pkg/logger"
	"gorm.io/gorm"
)

type PasswordResetRepository interface {
	Create(reset *model.PasswordReset) error
	FindActiveByUserID(userID uint) (*model.PasswordReset, error)
	FindLatestByUserID(userID uint) (*model.PasswordReset, error)
	Update(reset *model.PasswordReset) error
	MarkAsUsed(id uint) error
	DeleteExpired() error
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(reset *model.PasswordReset) error {
	logger.Debug("Creating password reset in database", map[string]interface{}{
		"user_id": reset.UserID,
		"channel": reset.Channel,
	})

	if err := r.db.Create(reset).Error; err != nil {
		logger.Error("Failed to create password reset in database", err, map[string]interface{}{
			"user_id": reset.UserID,
		})
		return err
	}

	logger.Debug("Password reset created in database", map[string]interface{}{
		"id":      reset.ID,
		"user_id": reset.UserID,
	})
	return nil
}

// FindActiveByUserID returns the newest unexpired, unused reset for the user.
func (r *passwordResetRepository) FindActiveByUserID(userID uint) (*model.PasswordReset, error) {
	logger.Debug("Finding active password reset in database", map[string]interface{}{
		"user_id": userID,
	})

	var reset model.PasswordReset
	if err := r.db.
		Where("user_id = ? AND used = ? AND expires_at > ?", userID, false, time.Now()).
		Order("created_at DESC").
		First(&reset).Error; err != nil {
		logger.Error("Failed to find active password reset in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	return &reset, nil
}

// FindLatestByUserID returns the newest reset regardless of state, used
// for resend throttling.
func (r *passwordResetRepository) FindLatestByUserID(userID uint) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	if err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&reset).Error; err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *passwordResetRepository) Update(reset *model.PasswordReset) error {
	if err := r.db.Save(reset).Error; err != nil {
		logger.Error("Failed to update password reset in database", err, map[string]interface{}{
			"id": reset.ID,
		})
		return err
	}
	return nil
}

func (r *passwordResetRepository) MarkAsUsed(id uint) error {
	logger.Debug("Marking password reset as used in database", map[string]interface{}{
		"id": id,
	})

	if err := r.db.Model(&model.PasswordReset{}).Where("id = ?", id).
		Update("used", true).Error; err != nil {
		logger.Error("Failed to mark password reset as used in database", err, map[string]interface{}{
			"id": id,
		})
		return err
	}

	return nil
}

func (r *passwordResetRepository) DeleteExpired() error {
	logger.Debug("Deleting expired password resets from database")

	result := r.db.Where("expires_at < ?", time.Now()).Delete(&model.PasswordReset{})
	if result.Error != nil {
		logger.Error("Failed to delete expired password resets from database", result.Error, nil)
		return result.Error
	}

	logger.Debug("Expired password resets deleted from database", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return nil
}
