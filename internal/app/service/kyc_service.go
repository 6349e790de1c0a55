package service

import (
	"errors"

	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/app/repository"
	"github.com/taragold/taraerp-backend/pkg/logger"
	"github.com/taragold/taraerp-backend/pkg/validate"
	"gorm.io/gorm"
)

var (
	ErrKYCNotFound    = errors.New("KYC record not found")
	ErrInvalidPAN     = errors.New("invalid PAN number")
	ErrInvalidGST     = errors.New("invalid GST number")
	ErrInvalidAadhar  = errors.New("invalid Aadhar number")
	ErrInvalidIFSC    = errors.New("invalid IFSC code")
	ErrInvalidMSME    = errors.New("invalid MSME number")
	ErrKYCNotFreezed  = errors.New("KYC record is not freezed")
)

// KYCInput carries updatable KYC fields. Nil pointers leave the field
// unchanged; the derived status cannot be set here.
type KYCInput struct {
	BisNo          *string
	BisAttachment  *string
	GstNo          *string
	GstAttachment  *string
	MsmeNo         *string
	MsmeAttachment *string
	PanNo          *string
	PanAttachment  *string
	TanNo          *string
	TanAttachment  *string
	Image          *string
	Name           *string
	AadharNo       *string
	AadharAttach   *string
	BankName       *string
	AccountName    *string
	AccountNo      *string
	IfscCode       *string
	Branch         *string
	BankCity       *string
	BankState      *string
	Note           *string
}

type KYCService interface {
	GetByBPCode(bpCode string) (*model.PartnerKYC, error)
	Upsert(bpCode string, input KYCInput) (*model.PartnerKYC, error)
	Freeze(bpCode string) (*model.PartnerKYC, error)
	Unfreeze(bpCode string) (*model.PartnerKYC, error)
	Revoke(bpCode string) (*model.PartnerKYC, error)
}

type kycService struct {
	kycRepo     repository.KYCRepository
	partnerRepo repository.PartnerRepository
	notifier    NotificationService
}

func NewKYCService(kycRepo repository.KYCRepository, partnerRepo repository.PartnerRepository, notifier NotificationService) KYCService {
	return &kycService{
		kycRepo:     kycRepo,
		partnerRepo: partnerRepo,
		notifier:    notifier,
	}
}

func (s *kycService) GetByBPCode(bpCode string) (*model.PartnerKYC, error) {
	partner, err := s.findPartner(bpCode)
	if err != nil {
		return nil, err
	}

	kyc, err := s.kycRepo.FindByPartnerID(partner.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKYCNotFound
		}
		return nil, err
	}
	return kyc, nil
}

// Upsert creates or patches the KYC record. Identifier formats are
// checked before anything is written; the status is rederived on save.
func (s *kycService) Upsert(bpCode string, input KYCInput) (*model.PartnerKYC, error) {
	if err := validateKYCInput(input); err != nil {
		logger.Warn("KYC update rejected by validation", map[string]interface{}{
			"bp_code": bpCode,
		})
		return nil, err
	}

	partner, err := s.findPartner(bpCode)
	if err != nil {
		return nil, err
	}

	kyc, err := s.kycRepo.FindByPartnerID(partner.ID)
	created := false
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		kyc = &model.PartnerKYC{PartnerID: partner.ID}
		created = true
	}

	previousStatus := kyc.Status
	applyKYCInput(kyc, input)

	if created {
		err = s.kycRepo.Create(kyc)
	} else {
		err = s.kycRepo.Update(kyc)
	}
	if err != nil {
		return nil, err
	}

	s.syncPartnerStatus(partner, kyc)

	if kyc.Status != previousStatus && s.notifier != nil && partner.CreatedByID != nil {
		s.notifier.NotifyKYCChanged(*partner.CreatedByID, partner, "KYC status is now "+string(kyc.Status))
	}

	logger.Info("KYC record saved", map[string]interface{}{
		"bp_code": bpCode,
		"status":  kyc.Status,
		"created": created,
	})
	return kyc, nil
}

// Freeze blocks the partner from new orders without discarding the record.
func (s *kycService) Freeze(bpCode string) (*model.PartnerKYC, error) {
	return s.setFlags(bpCode, func(kyc *model.PartnerKYC) error {
		kyc.Freezed = true
		return nil
	})
}

// Unfreeze lifts a freeze; a revoked record stays revoked.
func (s *kycService) Unfreeze(bpCode string) (*model.PartnerKYC, error) {
	return s.setFlags(bpCode, func(kyc *model.PartnerKYC) error {
		if !kyc.Freezed {
			return ErrKYCNotFreezed
		}
		kyc.Freezed = false
		return nil
	})
}

// Revoke terminates the partner's verification. Revoked wins over
// freezed in the derived status.
func (s *kycService) Revoke(bpCode string) (*model.PartnerKYC, error) {
	return s.setFlags(bpCode, func(kyc *model.PartnerKYC) error {
		kyc.Revoked = true
		return nil
	})
}

func (s *kycService) setFlags(bpCode string, change func(kyc *model.PartnerKYC) error) (*model.PartnerKYC, error) {
	partner, err := s.findPartner(bpCode)
	if err != nil {
		return nil, err
	}

	kyc, err := s.kycRepo.FindByPartnerID(partner.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKYCNotFound
		}
		return nil, err
	}

	if err := change(kyc); err != nil {
		return nil, err
	}
	if err := s.kycRepo.Update(kyc); err != nil {
		return nil, err
	}

	s.syncPartnerStatus(partner, kyc)

	if s.notifier != nil && partner.CreatedByID != nil {
		s.notifier.NotifyKYCChanged(*partner.CreatedByID, partner, "KYC status is now "+string(kyc.Status))
	}

	logger.Info("KYC flags updated", map[string]interface{}{
		"bp_code": bpCode,
		"status":  kyc.Status,
	})
	return kyc, nil
}

// syncPartnerStatus mirrors the KYC outcome onto the partner lifecycle.
func (s *kycService) syncPartnerStatus(partner *model.BusinessPartner, kyc *model.PartnerKYC) {
	var status model.PartnerStatus
	switch kyc.Status {
	case model.KYCStatusRevoked:
		status = model.PartnerStatusRevoked
	case model.KYCStatusFreezed:
		status = model.PartnerStatusFreezed
	case model.KYCStatusApproved:
		status = model.PartnerStatusApproved
	default:
		status = model.PartnerStatusPending
	}

	if partner.Status == status {
		return
	}
	partner.Status = status
	if err := s.partnerRepo.Update(partner); err != nil {
		logger.Error("Failed to sync partner status from KYC", err, map[string]interface{}{
			"bp_code": partner.BPCode,
		})
	}
}

func (s *kycService) findPartner(bpCode string) (*model.BusinessPartner, error) {
	partner, err := s.partnerRepo.FindByBPCode(bpCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	return partner, nil
}

func validateKYCInput(input KYCInput) error {
	if input.PanNo != nil && *input.PanNo != "" && !validate.PAN(*input.PanNo) {
		return ErrInvalidPAN
	}
	if input.GstNo != nil && *input.GstNo != "" && !validate.GST(*input.GstNo) {
		return ErrInvalidGST
	}
	if input.AadharNo != nil && *input.AadharNo != "" && !validate.Aadhar(*input.AadharNo) {
		return ErrInvalidAadhar
	}
	if input.IfscCode != nil && *input.IfscCode != "" && !validate.IFSC(*input.IfscCode) {
		return ErrInvalidIFSC
	}
	if input.MsmeNo != nil && *input.MsmeNo != "" && !validate.MSME(*input.MsmeNo) {
		return ErrInvalidMSME
	}
	return nil
}

func applyKYCInput(kyc *model.PartnerKYC, input KYCInput) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&kyc.BisNo, input.BisNo)
	set(&kyc.BisAttachment, input.BisAttachment)
	set(&kyc.GstNo, input.GstNo)
	set(&kyc.GstAttachment, input.GstAttachment)
	set(&kyc.MsmeNo, input.MsmeNo)
	set(&kyc.MsmeAttachment, input.MsmeAttachment)
	set(&kyc.PanNo, input.PanNo)
	set(&kyc.PanAttachment, input.PanAttachment)
	set(&kyc.TanNo, input.TanNo)
	set(&kyc.TanAttachment, input.TanAttachment)
	set(&kyc.Image, input.Image)
	set(&kyc.Name, input.Name)
	set(&kyc.AadharNo, input.AadharNo)
	set(&kyc.AadharAttach, input.AadharAttach)
	set(&kyc.BankName, input.BankName)
	set(&kyc.AccountName, input.AccountName)
	set(&kyc.AccountNo, input.AccountNo)
	set(&kyc.IfscCode, input.IfscCode)
	set(&kyc.Branch, input.Branch)
	set(&kyc.BankCity, input.BankCity)
	set(&kyc.BankState, input.BankState)
	set(&kyc.Note, input.Note)
}
