package model

import (
	"time"
)

type ResetChannel string

const (
	ResetChannelEmail ResetChannel = "email"
	ResetChannelSMS   ResetChannel = "sms"
)

// PasswordReset tracks a one-time password issued for a reset request.
// The OTP expires 5 minutes after issue; verification opens a 10-minute
// window in which the password may be changed.
type PasswordReset struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	OTP       string     `gorm:"size:6;not null;index" json:"-"` // never exposed
	Channel   ResetChannel `gorm:"size:10;not null" json:"channel"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	Verified  bool       `gorm:"default:false" json:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	Attempts  int        `gorm:"default:0" json:"-"` // failed verification attempts, capped at 5
	Used      bool       `gorm:"default:false" json:"used"`
	CreatedAt time.Time  `json:"created_at"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}
