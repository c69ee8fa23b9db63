package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleEmployee UserRole = "employee"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

type User struct {
	ID           string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole  `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	CreatedBy    *string   `gorm:"type:varchar(36);index" json:"created_by,omitempty"`
	TeamLeadID   *string   `gorm:"type:varchar(36)" json:"team_lead_id,omitempty"`
	DepartmentID *string   `gorm:"type:varchar(36)" json:"department_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}
