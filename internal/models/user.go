package models

import "time"

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleInvestigator Role = "investigator"
	RoleReporter     Role = "reporter"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleInvestigator, RoleReporter:
		return true
	}
	return false
}

type UserRole struct {
	UserID     string    `json:"userId" db:"user_id"`
	Role       Role      `json:"role" db:"role"`
	AssignedBy string    `json:"assignedBy" db:"assigned_by"`
	AssignedAt time.Time `json:"assignedAt" db:"assigned_at"`
}

type UserContact struct {
	UserID string  `json:"userId" db:"id"`
	Name   string  `json:"name" db:"name"`
	Email  *string `json:"email,omitempty" db:"email"`
	Phone  *string `json:"phone,omitempty" db:"phone"`
}
