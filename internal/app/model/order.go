package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string // manufacturing order state

const (
	OrderStatusPending          OrderStatus = "pending"           // placed, waiting for key user review
	OrderStatusInProcess        OrderStatus = "in-process"        // approved and being worked by admins
	OrderStatusAssigned         OrderStatus = "assigned"          // handed to a craftsman, awaiting their response
	OrderStatusRejected         OrderStatus = "rejected"          // rejected by the assigned craftsman
	OrderStatusAdminRejected    OrderStatus = "admin-rejected"    // rejected during admin verification
	OrderStatusAwaitingApproval OrderStatus = "awaiting-approval" // craftsman claims completion, pending final sign-off
	OrderStatusComplete         OrderStatus = "complete"          // final, no further transitions
)

// RejectionReasonOther requires explanatory notes.
const RejectionReasonOther = "other"

// rejectionReasons is the closed set a craftsman may cite.
var rejectionReasons = map[string]bool{
	"material_unavailable":   true,
	"low_quality_material":   true,
	"supplier_delays":        true,
	"material_cost_increase": true,
	"design_complexity":      true,
	"design_errors":          true,
	"technical_infeasible":   true,
	"3d_model_problems":      true,
	"size_constraints":       true,
	"time_constraints":       true,
	"overbooked":             true,
	"shipping_restrictions":  true,
	"quality_concerns":       true,
	"finishing_issues":       true,
	"durability_risk":        true,
	"customer_changes":       true,
	"customer_unreachable":   true,
	"customer_cancellation":  true,
	"customer_dispute":       true,
	"pricing_issues":         true,
	"payment_issues":         true,
	"budget_mismatch":        true,
	"incomplete_specs":       true,
	"documentation_missing":  true,
	"policy_violation":       true,
	"force_majeure":          true,
	RejectionReasonOther:     true,
}

// ValidRejectionReason reports whether reason belongs to the rejection taxonomy.
func ValidRejectionReason(reason string) bool {
	return rejectionReasons[reason]
}

type Order struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	OrderNo string `gorm:"size:10;uniqueIndex;not null" json:"order_no"` // zero-padded sequence, e.g. 001

	PartnerID uint             `gorm:"not null;index" json:"partner_id"` // ordering buyer
	Partner   *BusinessPartner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`

	ItemName    string     `gorm:"size:255;not null" json:"item_name"`        // e.g. bridal necklace
	MetalType   string     `gorm:"size:50" json:"metal_type"`                 // gold, silver, platinum
	Purity      string     `gorm:"size:20" json:"purity"`                     // e.g. 22K, 916
	WeightGrams float64    `json:"weight_grams"`                              // expected finished weight
	Size        string     `gorm:"size:50" json:"size"`
	Quantity    int        `gorm:"default:1" json:"quantity"`
	DesignNotes string     `gorm:"type:text" json:"design_notes"`
	Attachment  string     `gorm:"type:text" json:"attachment"`               // design document URL
	DueDate     *time.Time `json:"due_date"`                                  // must be tomorrow or later at placement

	Status OrderStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	CraftsmanID *uint            `gorm:"index" json:"craftsman_id,omitempty"` // assigned craftsman partner
	Craftsman   *BusinessPartner `gorm:"foreignKey:CraftsmanID" json:"craftsman,omitempty"`

	EstimatedDays int    `json:"estimated_days"`                      // admin estimate recorded at acceptance
	AdminNotes    string `gorm:"type:text" json:"admin_notes"`        // admin remarks recorded at acceptance

	RejectionReason string `gorm:"size:50" json:"rejection_reason"`   // taxonomy slug
	RejectionNotes  string `gorm:"type:text" json:"rejection_notes"`  // mandatory when reason is "other"
	RejectedBy      string `gorm:"size:255" json:"rejected_by"`       // code name of the rejecting craftsman

	CreatedByID *uint `gorm:"index" json:"created_by_id,omitempty"` // user who placed the order
	CreatedBy   *User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`

	CompletedAt *time.Time     `json:"completed_at,omitempty"` // set on final approval
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"` // soft delete, also used for key user rejection

	Events []OrderEvent `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderEvent records a state transition for the order audit trail.
type OrderEvent struct {
	ID        uint        `gorm:"primarykey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	From      OrderStatus `gorm:"type:varchar(20)" json:"from"`
	To        OrderStatus `gorm:"type:varchar(20);not null" json:"to"`
	ActorID   *uint       `gorm:"index" json:"actor_id,omitempty"` // user who triggered the transition
	Note      string      `gorm:"type:text" json:"note"`
	CreatedAt time.Time   `json:"created_at"`
}

func (OrderEvent) TableName() string {
	return "order_events"
}
