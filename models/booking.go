package models

import (
	"time"
)

const (
	BookingPending  = "pending"
	BookingAccepted = "accepted"
	BookingRejected = "rejected"
	BookingPaid     = "paid"
)

type Booking struct {
	ID          string    `json:"id"`
	RefCode     string    `json:"ref_code"`
	TicketID    string    `json:"ticket_id"`
	UserEmail   string    `json:"user_email"`
	VendorEmail string    `json:"vendor_email"`
	Quantity    int       `json:"quantity"`
	TotalPrice  float64   `json:"total_price"`
	Status      string    `json:"status"` // pending, accepted, rejected, paid
	CreatedAt   time.Time `json:"created_at"`

	// Snapshot of the ticket at booking time. Later ticket edits must not
	// change historical bookings.
	TicketTitle string    `json:"ticket_title"`
	TicketImage string    `json:"ticket_image,omitempty"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Departure   time.Time `json:"departure"`
}

// Terminal reports whether the booking reached a state that accepts no
// further transitions. An accepted booking is not terminal: it can still
// be paid.
func (b *Booking) Terminal() bool {
	return b.Status == BookingRejected || b.Status == BookingPaid
}

// Payable reports whether the booking may still transition to paid.
func (b *Booking) Payable() bool {
	return b.Status == BookingPending || b.Status == BookingAccepted
}
