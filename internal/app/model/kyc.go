package model

import (
	"time"

	"gorm.io/gorm"
)

type KYCStatus string // derived verification status

const (
	KYCStatusPending  KYCStatus = "Pending"
	KYCStatusApproved KYCStatus = "Approved"
	KYCStatusFreezed  KYCStatus = "Freezed"
	KYCStatusRevoked  KYCStatus = "Revoked"
)

// PartnerKYC holds the statutory and bank records of a business partner.
// Status is derived, never written by callers: Revoked and Freezed flags
// take precedence, then Approved when every field is present, else Pending.
type PartnerKYC struct {
	ID        uint `gorm:"primarykey" json:"id"`
	PartnerID uint `gorm:"uniqueIndex;not null" json:"partner_id"`

	BisNo          string `gorm:"size:50" json:"bis_no"`            // BIS hallmark registration
	BisAttachment  string `gorm:"type:text" json:"bis_attachment"`  // document URL
	GstNo          string `gorm:"size:20" json:"gst_no"`
	GstAttachment  string `gorm:"type:text" json:"gst_attachment"`
	MsmeNo         string `gorm:"size:20" json:"msme_no"`           // Udyam registration
	MsmeAttachment string `gorm:"type:text" json:"msme_attachment"`
	PanNo          string `gorm:"size:10" json:"pan_no"`
	PanAttachment  string `gorm:"type:text" json:"pan_attachment"`
	TanNo          string `gorm:"size:15" json:"tan_no"`
	TanAttachment  string `gorm:"type:text" json:"tan_attachment"`
	Image          string `gorm:"type:text" json:"image"`           // partner photo URL
	Name           string `gorm:"size:255" json:"name"`             // name as per documents
	AadharNo       string `gorm:"size:12" json:"aadhar_no"`
	AadharAttach   string `gorm:"type:text" json:"aadhar_attach"`
	BankName       string `gorm:"size:255" json:"bank_name"`
	AccountName    string `gorm:"size:255" json:"account_name"`
	AccountNo      string `gorm:"size:30" json:"account_no"`
	IfscCode       string `gorm:"size:11" json:"ifsc_code"`
	Branch         string `gorm:"size:255" json:"branch"`           // filled from IFSC lookup when blank
	BankCity       string `gorm:"size:100" json:"bank_city"`
	BankState      string `gorm:"size:100" json:"bank_state"`
	Note           string `gorm:"type:text" json:"note"`

	Freezed bool      `gorm:"default:false" json:"freezed"` // blocks new orders, reversible
	Revoked bool      `gorm:"default:false" json:"revoked"` // terminal unless explicitly reinstated
	Status  KYCStatus `gorm:"type:varchar(20);default:'Pending';index" json:"status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PartnerKYC) TableName() string {
	return "partner_kyc"
}

// Complete reports whether every KYC field is present.
func (k *PartnerKYC) Complete() bool {
	fields := []string{
		k.BisNo, k.BisAttachment,
		k.GstNo, k.GstAttachment,
		k.MsmeNo, k.MsmeAttachment,
		k.PanNo, k.PanAttachment,
		k.TanNo, k.TanAttachment,
		k.Image, k.Name,
		k.AadharNo, k.AadharAttach,
		k.BankName, k.AccountName, k.AccountNo,
		k.IfscCode, k.Branch, k.BankCity, k.BankState,
		k.Note,
	}
	for _, f := range fields {
		if f == "" {
			return false
		}
	}
	return true
}

// DeriveStatus computes the verification status from the record contents.
func (k *PartnerKYC) DeriveStatus() KYCStatus {
	switch {
	case k.Revoked:
		return KYCStatusRevoked
	case k.Freezed:
		return KYCStatusFreezed
	case k.Complete():
		return KYCStatusApproved
	default:
		return KYCStatusPending
	}
}

// BeforeSave keeps Status consistent with the record on every write.
func (k *PartnerKYC) BeforeSave(tx *gorm.DB) error {
	k.Status = k.DeriveStatus()
	return nil
}
