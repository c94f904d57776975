package store

import (
	"context"

	"ticket-marketplace/models"
)

// TicketQuery narrows FindTicketsByQuery. The zero value matches every ticket.
type TicketQuery struct {
	PublicOnly     bool // verification = approved and not hidden
	AdvertisedOnly bool
	VendorEmail    string
}

// TicketUpdate is a whitelisted field -> value set applied by UpdateTicketFields.
type TicketUpdate map[string]any

// Store is the persistence port consumed by the lifecycle core. Implementations
// must make ConditionalDecrementTicketQuantity and ConditionalMarkAdvertised
// single atomic check-and-set operations, and InTransaction must make every
// write issued through the derived store all-or-nothing.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) (*models.User, error)
	FindUsersAll(ctx context.Context) ([]*models.User, error)
	UpdateUserRole(ctx context.Context, email, role string) error
	UpdateUserFraudFlag(ctx context.Context, email string, fraud bool) error

	InsertTicket(ctx context.Context, t *models.Ticket) (*models.Ticket, error)
	FindTicketByID(ctx context.Context, id string) (*models.Ticket, error)
	FindTicketsByVendor(ctx context.Context, vendorEmail string) ([]*models.Ticket, error)
	FindTicketsByQuery(ctx context.Context, q TicketQuery) ([]*models.Ticket, error)
	UpdateTicketFields(ctx context.Context, id string, fields TicketUpdate) error

	// ConditionalDecrementTicketQuantity subtracts amount from the ticket's
	// remaining quantity and fails with ErrInsufficientInventory when the
	// result would go negative. The check and the write are one atomic step.
	ConditionalDecrementTicketQuantity(ctx context.Context, id string, amount int) error

	// ConditionalMarkAdvertised sets is_advertised on the ticket unless max
	// other tickets are already advertised, in which case it fails with
	// ErrSlotsExhausted. Re-marking an advertised ticket succeeds.
	ConditionalMarkAdvertised(ctx context.Context, id string, max int) error

	HideAllTicketsForVendor(ctx context.Context, vendorEmail string) error
	CountAdvertisedTickets(ctx context.Context) (int, error)

	InsertBooking(ctx context.Context, b *models.Booking) (*models.Booking, error)
	FindBookingByID(ctx context.Context, id string) (*models.Booking, error)
	FindBookingsByUser(ctx context.Context, email string) ([]*models.Booking, error)
	FindBookingsByVendor(ctx context.Context, email string) ([]*models.Booking, error)

	// UpdateBookingStatus moves a booking from one status to another and fails
	// with ErrConflict when the booking is no longer in the expected status.
	UpdateBookingStatus(ctx context.Context, id, from, to string) error

	InTransaction(ctx context.Context, fn func(Store) error) error
}
