package model

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type PartnerRole string   // business partner role
type PartnerStatus string // partner onboarding status
type CreditTerms string   // payment terms code

const (
	PartnerRoleBuyer     PartnerRole = "BUYER"
	PartnerRoleCraftsman PartnerRole = "CRAFTSMAN"

	PartnerStatusPending  PartnerStatus = "pending"
	PartnerStatusApproved PartnerStatus = "approved"
	PartnerStatusFreezed  PartnerStatus = "freezed"
	PartnerStatusRevoked  PartnerStatus = "revoked"

	CreditTermsT1   CreditTerms = "T1" // 30 days
	CreditTermsT2   CreditTerms = "T2" // 45 days
	CreditTermsT3   CreditTerms = "T3" // 60 days
	CreditTermsCash CreditTerms = "CH" // cash on delivery
)

type BusinessPartner struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                  // partner ID
	BPCode        string         `gorm:"size:10;uniqueIndex;not null" json:"bp_code"`           // e.g. BA001, issued once and never reused
	BusinessName  string         `gorm:"size:255;not null" json:"business_name"`                // legal business name
	Role          PartnerRole    `gorm:"type:varchar(20);not null;uniqueIndex:idx_partner_mobile_role" json:"role"` // BUYER or CRAFTSMAN
	ContactPerson string         `gorm:"size:255" json:"contact_person"`                        // primary contact
	Mobile        string         `gorm:"size:15;not null;uniqueIndex:idx_partner_mobile_role" json:"mobile"` // digits only, unique per role
	Email         string         `gorm:"size:255" json:"email"`
	BusinessEmail string         `gorm:"size:255" json:"business_email"`                       // official business mailbox, may differ from the contact email
	Address       string         `gorm:"type:text" json:"address"`
	Pincode       string         `gorm:"size:10" json:"pincode"`                                // Indian PIN code
	City          string         `gorm:"size:100" json:"city"`                                  // filled from pincode lookup when blank
	State         string         `gorm:"size:100" json:"state"`                                 // filled from pincode lookup when blank
	CreditTerms   CreditTerms    `gorm:"type:varchar(5);default:'CH'" json:"credit_terms"`      // T1/T2/T3/CH
	Status        PartnerStatus  `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ConvertedFromID *uint        `gorm:"index" json:"converted_from_id,omitempty"`              // original row when a buyer was converted to craftsman
	CreatedByID   *uint          `gorm:"index" json:"created_by_id,omitempty"`                  // user who registered the partner
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"` // soft delete

	KYC       *PartnerKYC `gorm:"foreignKey:PartnerID" json:"kyc,omitempty"`
	CreatedBy *User       `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

func (BusinessPartner) TableName() string {
	return "business_partners"
}

// CodeName renders the wire form used to reference a partner, "<bp_code>-<business_name>".
func (p *BusinessPartner) CodeName() string {
	return fmt.Sprintf("%s-%s", p.BPCode, p.BusinessName)
}

// ParseCodeName splits a "<bp_code>-<business_name>" reference on the first hyphen.
// Business names may themselves contain hyphens, so only the first one delimits.
func ParseCodeName(s string) (bpCode, businessName string, ok bool) {
	idx := strings.Index(s, "-")
	if idx <= 0 || idx == len(s)-1 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}
