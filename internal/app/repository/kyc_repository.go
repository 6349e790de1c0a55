package repository

import (
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/pkg/logger"
	"gorm.io/gorm"
)

type KYCRepository interface {
	Create(kyc *model.PartnerKYC) error
	FindByID(id uint) (*model.PartnerKYC, error)
	FindByPartnerID(partnerID uint) (*model.PartnerKYC, error)
	ListByStatus(status model.KYCStatus) ([]model.PartnerKYC, error)
	ListIncompleteBankDetails() ([]model.PartnerKYC, error)
	Update(kyc *model.PartnerKYC) error
}

type kycRepository struct {
	db *gorm.DB
}

func NewKYCRepository(db *gorm.DB) KYCRepository {
	return &kycRepository{db: db}
}

func (r *kycRepository) Create(kyc *model.PartnerKYC) error {
	logger.Debug("Creating KYC record in database", map[string]interface{}{
		"partner_id": kyc.PartnerID,
	})

	if err := r.db.Create(kyc).Error; err != nil {
		logger.Error("Failed to create KYC record in database", err, map[string]interface{}{
			"partner_id": kyc.PartnerID,
		})
		return err
	}

	logger.Debug("KYC record created in database", map[string]interface{}{
		"kyc_id":     kyc.ID,
		"partner_id": kyc.PartnerID,
		"status":     kyc.Status,
	})
	return nil
}

func (r *kycRepository) FindByID(id uint) (*model.PartnerKYC, error) {
	var kyc model.PartnerKYC
	if err := r.db.First(&kyc, id).Error; err != nil {
		logger.Error("Failed to find KYC record by ID in database", err, map[string]interface{}{
			"kyc_id": id,
		})
		return nil, err
	}
	return &kyc, nil
}

func (r *kycRepository) FindByPartnerID(partnerID uint) (*model.PartnerKYC, error) {
	logger.Debug("Finding KYC record by partner ID in database", map[string]interface{}{
		"partner_id": partnerID,
	})

	var kyc model.PartnerKYC
	if err := r.db.Where("partner_id = ?", partnerID).First(&kyc).Error; err != nil {
		logger.Error("Failed to find KYC record by partner ID in database", err, map[string]interface{}{
			"partner_id": partnerID,
		})
		return nil, err
	}
	return &kyc, nil
}

func (r *kycRepository) ListByStatus(status model.KYCStatus) ([]model.PartnerKYC, error) {
	var records []model.PartnerKYC
	if err := r.db.Where("status = ?", status).Find(&records).Error; err != nil {
		logger.Error("Failed to list KYC records by status in database", err, map[string]interface{}{
			"status": status,
		})
		return nil, err
	}
	return records, nil
}

// ListIncompleteBankDetails returns records with an IFSC code but an
// unresolved branch, for the enrichment worker to backfill.
func (r *kycRepository) ListIncompleteBankDetails() ([]model.PartnerKYC, error) {
	var records []model.PartnerKYC
	if err := r.db.
		Where("ifsc_code <> '' AND (branch = '' OR bank_city = '' OR bank_state = '')").
		Find(&records).Error; err != nil {
		logger.Error("Failed to list KYC records with incomplete bank details", err)
		return nil, err
	}
	return records, nil
}

func (r *kycRepository) Update(kyc *model.PartnerKYC) error {
	logger.Debug("Updating KYC record in database", map[string]interface{}{
		"kyc_id":     kyc.ID,
		"partner_id": kyc.PartnerID,
	})

	if err := r.db.Save(kyc).Error; err != nil {
		logger.Error("Failed to update KYC record in database", err, map[string]interface{}{
			"kyc_id":     kyc.ID,
			"partner_id": kyc.PartnerID,
		})
		return err
	}

	logger.Debug("KYC record updated in database", map[string]interface{}{
		"kyc_id": kyc.ID,
		"status": kyc.Status,
	})
	return nil
}
