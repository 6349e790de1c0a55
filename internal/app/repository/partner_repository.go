package repository

import (
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/pkg/logger"
	"gorm.io/gorm"
)

type PartnerRepository interface {
	Create(partner *model.BusinessPartner) error
	FindByID(id uint) (*model.BusinessPartner, error)
	FindByBPCode(bpCode string) (*model.BusinessPartner, error)
	FindByCodeAndName(bpCode, businessName string) (*model.BusinessPartner, error)
	FindByMobileAndRole(mobile string, role model.PartnerRole) (*model.BusinessPartner, error)
	FindByEmailAndRole(email string, role model.PartnerRole) (*model.BusinessPartner, error)
	List(role model.PartnerRole, status model.PartnerStatus) ([]model.BusinessPartner, error)
	ListMissingLocation() ([]model.BusinessPartner, error)
	BPCodes(prefix string) ([]string, error)
	Update(partner *model.BusinessPartner) error
	Delete(id uint) error
}

type partnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) PartnerRepository {
	return &partnerRepository{db: db}
}

func (r *partnerRepository) Create(partner *model.BusinessPartner) error {
	logger.Debug("Creating business partner in database", map[string]interface{}{
		"bp_code":       partner.BPCode,
		"business_name": partner.BusinessName,
		"role":          partner.Role,
	})

	if err := r.db.Create(partner).Error; err != nil {
		logger.Error("Failed to create business partner in database", err, map[string]interface{}{
			"bp_code":       partner.BPCode,
			"business_name": partner.BusinessName,
		})
		return err
	}

	logger.Debug("Business partner created in database", map[string]interface{}{
		"partner_id": partner.ID,
		"bp_code":    partner.BPCode,
	})
	return nil
}

func (r *partnerRepository) FindByID(id uint) (*model.BusinessPartner, error) {
	logger.Debug("Finding business partner by ID in database", map[string]interface{}{
		"partner_id": id,
	})

	var partner model.BusinessPartner
	if err := r.db.Preload("KYC").First(&partner, id).Error; err != nil {
		logger.Error("Failed to find business partner by ID in database", err, map[string]interface{}{
			"partner_id": id,
		})
		return nil, err
	}

	return &partner, nil
}

func (r *partnerRepository) FindByBPCode(bpCode string) (*model.BusinessPartner, error) {
	logger.Debug("Finding business partner by code in database", map[string]interface{}{
		"bp_code": bpCode,
	})

	var partner model.BusinessPartner
	if err := r.db.Preload("KYC").Where("bp_code = ?", bpCode).First(&partner).Error; err != nil {
		logger.Error("Failed to find business partner by code in database", err, map[string]interface{}{
			"bp_code": bpCode,
		})
		return nil, err
	}

	return &partner, nil
}

// FindByCodeAndName matches on the exact code and business name pair; a
// code with a stale name does not resolve.
func (r *partnerRepository) FindByCodeAndName(bpCode, businessName string) (*model.BusinessPartner, error) {
	logger.Debug("Finding business partner by code and name in database", map[string]interface{}{
		"bp_code":       bpCode,
		"business_name": businessName,
	})

	var partner model.BusinessPartner
	if err := r.db.Preload("KYC").
		Where("bp_code = ? AND business_name = ?", bpCode, businessName).
		First(&partner).Error; err != nil {
		logger.Error("Failed to find business partner by code and name in database", err, map[string]interface{}{
			"bp_code":       bpCode,
			"business_name": businessName,
		})
		return nil, err
	}

	return &partner, nil
}

func (r *partnerRepository) FindByMobileAndRole(mobile string, role model.PartnerRole) (*model.BusinessPartner, error) {
	var partner model.BusinessPartner
	if err := r.db.Where("mobile = ? AND role = ?", mobile, role).First(&partner).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

// FindByEmailAndRole matches the address against both the contact email
// and the business email, so either column being taken is a collision.
func (r *partnerRepository) FindByEmailAndRole(email string, role model.PartnerRole) (*model.BusinessPartner, error) {
	var partner model.BusinessPartner
	if err := r.db.Where("(email = ? OR business_email = ?) AND role = ?", email, email, role).First(&partner).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepository) List(role model.PartnerRole, status model.PartnerStatus) ([]model.BusinessPartner, error) {
	logger.Debug("Listing business partners in database", map[string]interface{}{
		"role":   role,
		"status": status,
	})

	query := r.db.Preload("KYC").Model(&model.BusinessPartner{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var partners []model.BusinessPartner
	if err := query.Order("bp_code ASC").Find(&partners).Error; err != nil {
		logger.Error("Failed to list business partners in database", err, map[string]interface{}{
			"role":   role,
			"status": status,
		})
		return nil, err
	}

	return partners, nil
}

// ListMissingLocation returns partners that have a pincode but no
// resolved city or state, for the enrichment worker to backfill.
func (r *partnerRepository) ListMissingLocation() ([]model.BusinessPartner, error) {
	var partners []model.BusinessPartner
	if err := r.db.
		Where("pincode <> '' AND (city = '' OR state = '')").
		Find(&partners).Error; err != nil {
		logger.Error("Failed to list partners with missing location", err)
		return nil, err
	}
	return partners, nil
}

// BPCodes returns every partner code issued under the given prefix,
// soft-deleted partners included so their codes are never reissued.
func (r *partnerRepository) BPCodes(prefix string) ([]string, error) {
	var codes []string
	err := r.db.Unscoped().Model(&model.BusinessPartner{}).
		Where("bp_code LIKE ?", prefix+"%").
		Pluck("bp_code", &codes).Error
	if err != nil {
		logger.Error("Failed to query partner codes in database", err, map[string]interface{}{
			"prefix": prefix,
		})
		return nil, err
	}
	return codes, nil
}

func (r *partnerRepository) Update(partner *model.BusinessPartner) error {
	logger.Debug("Updating business partner in database", map[string]interface{}{
		"partner_id": partner.ID,
		"bp_code":    partner.BPCode,
	})

	if err := r.db.Save(partner).Error; err != nil {
		logger.Error("Failed to update business partner in database", err, map[string]interface{}{
			"partner_id": partner.ID,
			"bp_code":    partner.BPCode,
		})
		return err
	}

	return nil
}

func (r *partnerRepository) Delete(id uint) error {
	logger.Debug("Deleting business partner from database", map[string]interface{}{
		"partner_id": id,
	})

	if err := r.db.Delete(&model.BusinessPartner{}, id).Error; err != nil {
		logger.Error("Failed to delete business partner from database", err, map[string]interface{}{
			"partner_id": id,
		})
		return err
	}

	return nil
}
