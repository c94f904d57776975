package services

import (
	"ticket-marketplace/internal/status"
)

// Identity is the authenticated caller as supplied by the auth collaborator.
type Identity struct {
	Email string `json:"email"`
	Role  string `json:"role"` // USER, VENDOR, ADMIN
}

// Authorize gates an action behind an exact role match. Roles are disjoint:
// an ADMIN does not satisfy VENDOR-only checks and vice versa.
func Authorize(id Identity, requiredRole string) error {
	if id.Email == "" || id.Role != requiredRole {
		return status.ErrForbidden
	}
	return nil
}

// RequireOwner permits an action only for the caller that owns the resource.
func RequireOwner(id Identity, ownerEmail string) error {
	if id.Email == "" || id.Email != ownerEmail {
		return status.ErrForbidden
	}
	return nil
}
