package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleHost    Role = "host"
	RoleCleaner Role = "cleaner"
	RoleAdmin   Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleHost, RoleCleaner, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	BaseUUIDModel
	FirstName   string     `gorm:"type:text"                       json:"firstName"`
	LastName    string     `gorm:"type:text"                       json:"lastName"`
	DisplayName string     `gorm:"type:text"                       json:"displayName"`
	Email       string     `gorm:"type:text;uniqueIndex;not null"  json:"email"`
	Role        Role       `gorm:"type:text;not null;index"        json:"role"`
	CompanyID   *uuid.UUID `gorm:"type:uuid;index"                 json:"companyId,omitempty"`
	IsActive    bool       `gorm:"type:bool;default:true;not null" json:"isActive"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Email == "" || !u.Role.IsValid() {
		return gorm.ErrInvalidValue
	}
	if u.DisplayName == "" {
		u.DisplayName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return u.BaseUUIDModel.BeforeCreate(tx)
}

// IsPoolCleaner reports whether the user takes part in automatic assignment.
// Company-scoped cleaners are dispatched by their company instead.
func (u *User) IsPoolCleaner() bool {
	return u.Role == RoleCleaner && u.CompanyID == nil && u.IsActive
}
