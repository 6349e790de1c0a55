package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeOrderPlaced    NotificationType = "order_placed"
	NotificationTypeOrderApproved  NotificationType = "order_approved"
	NotificationTypeOrderAssigned  NotificationType = "order_assigned"
	NotificationTypeOrderRejected  NotificationType = "order_rejected"
	NotificationTypeOrderCompleted NotificationType = "order_completed"
	NotificationTypeKYCChanged     NotificationType = "kyc_changed"
)

// Notification is an in-app notification delivered to a user.
type Notification struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint  `gorm:"not null;index" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Type NotificationType `gorm:"type:varchar(50);not null;index" json:"type"`

	Title   string `gorm:"type:text;not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	Link    string `gorm:"type:text" json:"link"`

	IsRead bool `gorm:"default:false;index" json:"is_read"`

	RelatedOrderID   *uint `gorm:"index" json:"related_order_id,omitempty"`
	RelatedPartnerID *uint `gorm:"index" json:"related_partner_id,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}

// NotificationSettings holds per-user delivery preferences.
type NotificationSettings struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint  `gorm:"uniqueIndex;not null" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	OrderNotification bool `gorm:"default:true" json:"order_notification"`
	KYCNotification   bool `gorm:"default:true" json:"kyc_notification"`

	// Notification types the user muted, e.g. ["order_placed", "kyc_changed"].
	MutedTypes pq.StringArray `gorm:"type:text[];default:'{}';not null" json:"muted_types"`
}

func (NotificationSettings) TableName() string {
	return "notification_settings"
}
