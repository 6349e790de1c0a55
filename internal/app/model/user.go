package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string // system role name

const (
	RoleProjectOwner    UserRole = "Project Owner"
	RoleSuperAdmin      UserRole = "Super Admin"
	RoleAdmin           UserRole = "Admin"
	RoleKeyUser         UserRole = "Key User"
	RoleUser            UserRole = "User"
	RoleCraftsman       UserRole = "Craftsman"
	RoleWalkingCustomer UserRole = "Walking Customer"
)

// RolePrefixes maps roles to their user code prefix.
var RolePrefixes = map[UserRole]string{
	RoleProjectOwner:    "PO",
	RoleSuperAdmin:      "SA",
	RoleAdmin:           "AD",
	RoleKeyUser:         "KU",
	RoleUser:            "UR",
	RoleCraftsman:       "CF",
	RoleWalkingCustomer: "WC",
}

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`                        // user ID
	UserCode     string         `gorm:"size:10;uniqueIndex;not null" json:"user_code"` // role prefix + 4-digit sequence, e.g. AD-0001
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`           // login email
	PasswordHash string         `gorm:"not null" json:"-"`                           // bcrypt hash
	Name         string         `gorm:"not null" json:"name"`                        // display name
	Mobile       string         `gorm:"size:15;index" json:"mobile"`                 // digits only
	Role         UserRole       `gorm:"type:varchar(20);default:'User'" json:"role"` // system role
	IsActive     bool           `gorm:"default:true" json:"is_active"`               // deactivated users cannot log in
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"` // soft delete
}

func (User) TableName() string {
	return "users"
}
