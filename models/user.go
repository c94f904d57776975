package models

import (
	"time"
)

const (
	RoleUser   = "USER"
	RoleVendor = "VENDOR"
	RoleAdmin  = "ADMIN"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"` // USER, VENDOR, ADMIN
	IsFraud   bool      `json:"is_fraud"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleVendor || role == RoleAdmin
}
