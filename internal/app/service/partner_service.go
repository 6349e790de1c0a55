package service

import (
	"errors"
	"strings"

	"github.com/taragold/taraerp-backend/internal/app/codegen"
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/app/repository"
	"github.com/taragold/taraerp-backend/pkg/logger"
	"github.com/taragold/taraerp-backend/pkg/validate"
	"gorm.io/gorm"
)

var (
	ErrPartnerNotFound      = errors.New("business partner not found")
	ErrPartnerExists        = errors.New("a partner with this mobile already exists")
	ErrPartnerEmailExists   = errors.New("a partner with this email already exists")
	ErrBusinessNameRequired = errors.New("business name is required")
	ErrInvalidPartnerRole   = errors.New("invalid partner role")
	ErrInvalidMobile        = errors.New("mobile number must be 10 to 15 digits")
	ErrInvalidCreditTerms   = errors.New("invalid credit terms")
	ErrPermissionDenied     = errors.New("you do not have permission to perform this action")
	ErrPartnerNotCraftsman  = errors.New("partner is already a craftsman")
)

// RegisterPartnerInput carries the fields of a new business partner.
type RegisterPartnerInput struct {
	BusinessName  string
	Role          model.PartnerRole
	ContactPerson string
	Mobile        string
	Email         string
	BusinessEmail string
	Address       string
	Pincode       string
	City          string
	State         string
	CreditTerms   model.CreditTerms
}

// UpdatePartnerInput carries the updatable partner fields. Nil pointers
// leave the field unchanged.
type UpdatePartnerInput struct {
	BusinessName  *string
	ContactPerson *string
	Mobile        *string
	Email         *string
	BusinessEmail *string
	Address       *string
	Pincode       *string
	CreditTerms   *model.CreditTerms
}

type PartnerService interface {
	Register(input RegisterPartnerInput, actor *model.User) (*model.BusinessPartner, error)
	GetByBPCode(bpCode string) (*model.BusinessPartner, error)
	List(role model.PartnerRole, status model.PartnerStatus) ([]model.BusinessPartner, error)
	Update(bpCode string, input UpdatePartnerInput) (*model.BusinessPartner, error)
	Approve(bpCode string) (*model.BusinessPartner, error)
	ConvertToCraftsman(bpCode string, actor *model.User) (*model.BusinessPartner, error)
	Delete(bpCode string) error
}

type partnerService struct {
	partnerRepo repository.PartnerRepository
	locks       *codegen.KeyedMutex
}

func NewPartnerService(partnerRepo repository.PartnerRepository, locks *codegen.KeyedMutex) PartnerService {
	return &partnerService{
		partnerRepo: partnerRepo,
		locks:       locks,
	}
}

// Register creates a partner and issues its code. Registration is a
// field-operations action: back-office roles are refused.
func (s *partnerService) Register(input RegisterPartnerInput, actor *model.User) (*model.BusinessPartner, error) {
	if err := checkRegistrarRole(actor); err != nil {
		logger.Warn("Partner registration refused", map[string]interface{}{
			"business_name": input.BusinessName,
		})
		return nil, err
	}

	if strings.TrimSpace(input.BusinessName) == "" {
		return nil, ErrBusinessNameRequired
	}
	if input.Role != model.PartnerRoleBuyer && input.Role != model.PartnerRoleCraftsman {
		return nil, ErrInvalidPartnerRole
	}
	if !validate.Mobile(input.Mobile) {
		return nil, ErrInvalidMobile
	}
	if input.CreditTerms != "" && !validCreditTerms(input.CreditTerms) {
		return nil, ErrInvalidCreditTerms
	}

	if _, err := s.partnerRepo.FindByMobileAndRole(input.Mobile, input.Role); err == nil {
		logger.Warn("Partner registration refused: mobile already registered", map[string]interface{}{
			"mobile": input.Mobile,
		})
		return nil, ErrPartnerExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	for _, email := range []string{input.Email, input.BusinessEmail} {
		if email == "" {
			continue
		}
		if _, err := s.partnerRepo.FindByEmailAndRole(email, input.Role); err == nil {
			logger.Warn("Partner registration refused: email already registered", map[string]interface{}{
				"email": email,
			})
			return nil, ErrPartnerEmailExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	logger.Info("Registering business partner", map[string]interface{}{
		"business_name": input.BusinessName,
		"role":          input.Role,
	})

	creditTerms := input.CreditTerms
	if creditTerms == "" {
		creditTerms = model.CreditTermsCash
	}

	bpCode, err := s.issueBPCode(input.Role, input.BusinessName)
	if err != nil {
		return nil, err
	}

	partner := &model.BusinessPartner{
		BPCode:        bpCode,
		BusinessName:  strings.TrimSpace(input.BusinessName),
		Role:          input.Role,
		ContactPerson: input.ContactPerson,
		Mobile:        input.Mobile,
		Email:         input.Email,
		BusinessEmail: input.BusinessEmail,
		Address:       input.Address,
		Pincode:       input.Pincode,
		City:          input.City,
		State:         input.State,
		CreditTerms:   creditTerms,
		Status:        model.PartnerStatusPending,
	}
	if actor != nil {
		partner.CreatedByID = &actor.ID
	}

	if err := s.partnerRepo.Create(partner); err != nil {
		return nil, err
	}

	logger.Info("Business partner registered", map[string]interface{}{
		"bp_code":       partner.BPCode,
		"business_name": partner.BusinessName,
	})
	return partner, nil
}

func (s *partnerService) GetByBPCode(bpCode string) (*model.BusinessPartner, error) {
	partner, err := s.partnerRepo.FindByBPCode(bpCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	return partner, nil
}

func (s *partnerService) List(role model.PartnerRole, status model.PartnerStatus) ([]model.BusinessPartner, error) {
	return s.partnerRepo.List(role, status)
}

func (s *partnerService) Update(bpCode string, input UpdatePartnerInput) (*model.BusinessPartner, error) {
	partner, err := s.GetByBPCode(bpCode)
	if err != nil {
		return nil, err
	}

	if input.Mobile != nil && *input.Mobile != partner.Mobile {
		if !validate.Mobile(*input.Mobile) {
			return nil, ErrInvalidMobile
		}
		if _, err := s.partnerRepo.FindByMobileAndRole(*input.Mobile, partner.Role); err == nil {
			return nil, ErrPartnerExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		partner.Mobile = *input.Mobile
	}

	if input.BusinessName != nil && strings.TrimSpace(*input.BusinessName) != "" {
		// The code keeps its original letter even if the name changes.
		partner.BusinessName = strings.TrimSpace(*input.BusinessName)
	}
	if input.ContactPerson != nil {
		partner.ContactPerson = *input.ContactPerson
	}
	if input.Email != nil && *input.Email != partner.Email {
		if err := s.checkEmailFree(*input.Email, partner); err != nil {
			return nil, err
		}
		partner.Email = *input.Email
	}
	if input.BusinessEmail != nil && *input.BusinessEmail != partner.BusinessEmail {
		if err := s.checkEmailFree(*input.BusinessEmail, partner); err != nil {
			return nil, err
		}
		partner.BusinessEmail = *input.BusinessEmail
	}
	if input.Address != nil {
		partner.Address = *input.Address
	}
	if input.Pincode != nil && *input.Pincode != partner.Pincode {
		partner.Pincode = *input.Pincode
		// Stale location is cleared; the enrichment worker refills it.
		partner.City = ""
		partner.State = ""
	}
	if input.CreditTerms != nil {
		if !validCreditTerms(*input.CreditTerms) {
			return nil, ErrInvalidCreditTerms
		}
		partner.CreditTerms = *input.CreditTerms
	}

	if err := s.partnerRepo.Update(partner); err != nil {
		return nil, err
	}

	logger.Info("Business partner updated", map[string]interface{}{
		"bp_code": partner.BPCode,
	})
	return partner, nil
}

// checkEmailFree reports ErrPartnerEmailExists when another partner of the
// same role already carries the address in either email column. The partner's
// own row never counts as a collision.
func (s *partnerService) checkEmailFree(email string, partner *model.BusinessPartner) error {
	if email == "" {
		return nil
	}
	other, err := s.partnerRepo.FindByEmailAndRole(email, partner.Role)
	if err == nil {
		if other.ID != partner.ID {
			return ErrPartnerEmailExists
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *partnerService) Approve(bpCode string) (*model.BusinessPartner, error) {
	partner, err := s.GetByBPCode(bpCode)
	if err != nil {
		return nil, err
	}

	partner.Status = model.PartnerStatusApproved
	if err := s.partnerRepo.Update(partner); err != nil {
		return nil, err
	}

	logger.Info("Business partner approved", map[string]interface{}{
		"bp_code": partner.BPCode,
	})
	return partner, nil
}

// ConvertToCraftsman forks a buyer into a new craftsman row with a fresh
// A-code. The buyer row survives untouched and stays linked through
// ConvertedFromID, preserving its order history.
func (s *partnerService) ConvertToCraftsman(bpCode string, actor *model.User) (*model.BusinessPartner, error) {
	if err := checkRegistrarRole(actor); err != nil {
		return nil, err
	}

	buyer, err := s.GetByBPCode(bpCode)
	if err != nil {
		return nil, err
	}
	if buyer.Role != model.PartnerRoleBuyer {
		return nil, ErrPartnerNotCraftsman
	}

	if _, err := s.partnerRepo.FindByMobileAndRole(buyer.Mobile, model.PartnerRoleCraftsman); err == nil {
		return nil, ErrPartnerExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	newCode, err := s.issueBPCode(model.PartnerRoleCraftsman, buyer.BusinessName)
	if err != nil {
		return nil, err
	}

	craftsman := &model.BusinessPartner{
		BPCode:          newCode,
		BusinessName:    buyer.BusinessName,
		Role:            model.PartnerRoleCraftsman,
		ContactPerson:   buyer.ContactPerson,
		Mobile:          buyer.Mobile,
		Email:           buyer.Email,
		Address:         buyer.Address,
		Pincode:         buyer.Pincode,
		City:            buyer.City,
		State:           buyer.State,
		CreditTerms:     buyer.CreditTerms,
		Status:          model.PartnerStatusPending,
		ConvertedFromID: &buyer.ID,
	}
	if actor != nil {
		craftsman.CreatedByID = &actor.ID
	}

	if err := s.partnerRepo.Create(craftsman); err != nil {
		return nil, err
	}

	logger.Info("Buyer converted to craftsman", map[string]interface{}{
		"buyer_code":     buyer.BPCode,
		"craftsman_code": craftsman.BPCode,
	})
	return craftsman, nil
}

func (s *partnerService) Delete(bpCode string) error {
	partner, err := s.GetByBPCode(bpCode)
	if err != nil {
		return err
	}
	return s.partnerRepo.Delete(partner.ID)
}

// issueBPCode serializes issuance per prefix; the unique constraint on
// bp_code backs this up across processes.
func (s *partnerService) issueBPCode(role model.PartnerRole, businessName string) (string, error) {
	prefix, err := codegen.PartnerCodePrefix(role, businessName)
	if err != nil {
		return "", err
	}

	unlock := s.locks.Lock("bp_code:" + prefix)
	defer unlock()

	codes, err := s.partnerRepo.BPCodes(prefix)
	if err != nil {
		return "", err
	}

	max := 0
	for _, code := range codes {
		if seq, ok := codegen.SeqFromPartnerCode(code, prefix); ok && seq > max {
			max = seq
		}
	}
	return codegen.FormatPartnerCode(prefix, max+1), nil
}

// checkRegistrarRole refuses back-office roles from registering or
// converting partners; only field roles may do so.
func checkRegistrarRole(actor *model.User) error {
	if actor == nil {
		return ErrPermissionDenied
	}
	switch actor.Role {
	case model.RoleSuperAdmin, model.RoleAdmin, model.RoleProjectOwner:
		return ErrPermissionDenied
	}
	return nil
}

func validCreditTerms(terms model.CreditTerms) bool {
	switch terms {
	case model.CreditTermsT1, model.CreditTermsT2, model.CreditTermsT3, model.CreditTermsCash:
		return true
	}
	return false
}
