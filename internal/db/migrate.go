package db

import (
	"github.com/taragold/taraerp-backend/internal/app/codegen"
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/pkg/logger"
	"github.com/taragold/taraerp-backend/pkg/util"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.PasswordReset{},
		&model.BusinessPartner{},
		&model.PartnerKYC{},
		&model.Order{},
		&model.OrderEvent{},
		&model.Notification{},
		&model.NotificationSettings{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData()
}

func seedInitialData() error {
	logger.Info("Seeding initial data...")

	if err := seedSuperAdmin(); err != nil {
		logger.Error("Failed to seed super admin", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

// seedSuperAdmin creates the bootstrap super admin account when no user exists.
func seedSuperAdmin() error {
	var count int64
	if err := DB.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Users already present, skipping super admin seed", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	hash, err := util.HashPassword("changeme")
	if err != nil {
		return err
	}

	admin := model.User{
		UserCode:     codegen.FormatUserCode(model.RolePrefixes[model.RoleSuperAdmin], 1),
		Email:        "admin@taragold.in",
		PasswordHash: hash,
		Name:         "Super Admin",
		Role:         model.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info("Super admin seeded", map[string]interface{}{
		"user_code": admin.UserCode,
		"email":     admin.Email,
	})
	return nil
}
