package models

import (
	"time"
)

const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

type Ticket struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Image        string    `json:"image,omitempty"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	Transport    string    `json:"transport"` // bus, train, launch, plane
	Price        float64   `json:"price"`
	Quantity     int       `json:"quantity"`
	Departure    time.Time `json:"departure"`
	VendorEmail  string    `json:"vendor_email"`
	Verification string    `json:"verification"` // pending, approved, rejected
	IsAdvertised bool      `json:"is_advertised"`
	IsHidden     bool      `json:"is_hidden"`
	CreatedAt    time.Time `json:"created_at"`
}

// PubliclyListable reports whether the ticket may appear in the public catalog.
func (t *Ticket) PubliclyListable() bool {
	return t.Verification == VerificationApproved && !t.IsHidden
}
