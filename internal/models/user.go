package models

import "time"

// Role is the closed set of identity roles.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleDoctor  Role = "DOCTOR"
	RolePatient Role = "PATIENT"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleDoctor, RolePatient}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// Allows reports whether role is a member of allowed.
// An empty allowed set admits nobody.
func Allows(role Role, allowed ...Role) bool {
	if !role.Valid() {
		return false
	}
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}

// User is an authenticated identity.
type User struct {
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
}
