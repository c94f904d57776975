package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ticket-marketplace/internal/status"
	"ticket-marketplace/models"
	"ticket-marketplace/monitoring"
	"ticket-marketplace/store"
	"ticket-marketplace/utils"
)

type BookingService struct {
	store   store.Store
	monitor *monitoring.Monitor
	retries int
	now     func() time.Time
}

func NewBookingService(st store.Store, monitor *monitoring.Monitor, conflictRetries int) *BookingService {
	if conflictRetries < 1 {
		conflictRetries = 1
	}
	return &BookingService{
		store:   st,
		monitor: monitor,
		retries: conflictRetries,
		now:     time.Now,
	}
}

// Create reserves inventory and records the booking in one transaction. The
// quantity check and decrement are a single conditional update, so two
// concurrent bookings can never jointly oversell a ticket. A lost concurrent
// update is retried a bounded number of times; insufficient inventory is not.
func (s *BookingService) Create(ctx context.Context, user Identity, ticketID string, quantity int) (*models.Booking, error) {
	if err := Authorize(user, models.RoleUser); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be a positive integer: %w", status.ErrValidation)
	}

	started := s.now()

	var booking *models.Booking
	var err error
	for attempt := 0; attempt < s.retries; attempt++ {
		err = s.store.InTransaction(ctx, func(tx store.Store) error {
			ticket, err := tx.FindTicketByID(ctx, ticketID)
			if err != nil {
				return err
			}
			if quantity > ticket.Quantity {
				return status.ErrInsufficientInventory
			}

			if err := tx.ConditionalDecrementTicketQuantity(ctx, ticketID, quantity); err != nil {
				return err
			}

			refCode, err := utils.GenerateCode(6)
			if err != nil {
				return err
			}

			// The total is recomputed server-side; a caller-supplied total is
			// never trusted.
			total := decimal.NewFromFloat(ticket.Price).Mul(decimal.NewFromInt(int64(quantity)))

			created, err := tx.InsertBooking(ctx, &models.Booking{
				RefCode:     refCode,
				TicketID:    ticket.ID,
				UserEmail:   user.Email,
				VendorEmail: ticket.VendorEmail,
				Quantity:    quantity,
				TotalPrice:  total.InexactFloat64(),
				Status:      models.BookingPending,
				TicketTitle: ticket.Title,
				TicketImage: ticket.Image,
				Origin:      ticket.Origin,
				Destination: ticket.Destination,
				Departure:   ticket.Departure,
			})
			if err != nil {
				return err
			}
			booking = created
			return nil
		})

		if errors.Is(err, status.ErrConflict) {
			s.monitor.TrackInventoryConflict()
			continue
		}
		break
	}

	if err != nil {
		s.monitor.TrackBookingOperation("create", "failure")
		return nil, err
	}

	s.monitor.TrackBookingOperation("create", "success")
	s.monitor.TrackBookingCreateDuration(s.now().Sub(started))
	return booking, nil
}

// Decide lets the owning vendor accept or reject a pending booking. Inventory
// is untouched either way; it was reserved at creation.
func (s *BookingService) Decide(ctx context.Context, vendor Identity, bookingID string, accept bool) (*models.Booking, error) {
	if err := Authorize(vendor, models.RoleVendor); err != nil {
		return nil, err
	}

	booking, err := s.store.FindBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := RequireOwner(vendor, booking.VendorEmail); err != nil {
		return nil, err
	}
	if booking.Status != models.BookingPending {
		return nil, fmt.Errorf("booking is %s: %w", booking.Status, status.ErrInvalidTransition)
	}

	to := models.BookingRejected
	outcome := "reject"
	if accept {
		to = models.BookingAccepted
		outcome = "accept"
	}

	if err := s.store.UpdateBookingStatus(ctx, bookingID, models.BookingPending, to); err != nil {
		if errors.Is(err, status.ErrConflict) {
			// someone else won the transition race
			return nil, status.ErrInvalidTransition
		}
		return nil, err
	}

	s.monitor.TrackBookingOperation(outcome, "success")
	booking.Status = to
	return booking, nil
}

// SettlePayment records a successful payment. Pending and accepted bookings
// are payable; acceptance by the vendor is not a prerequisite. It is a pure
// status transition: inventory was decremented exactly once, at reservation
// time.
func (s *BookingService) SettlePayment(ctx context.Context, user Identity, bookingID string) (*models.Booking, error) {
	if err := Authorize(user, models.RoleUser); err != nil {
		return nil, err
	}

	booking, err := s.store.FindBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := RequireOwner(user, booking.UserEmail); err != nil {
		return nil, err
	}
	if !booking.Payable() {
		return nil, fmt.Errorf("booking is %s: %w", booking.Status, status.ErrInvalidTransition)
	}
	if booking.Departure.Before(s.now()) {
		return nil, status.ErrDeparturePassed
	}

	if err := s.store.UpdateBookingStatus(ctx, bookingID, booking.Status, models.BookingPaid); err != nil {
		if errors.Is(err, status.ErrConflict) {
			return nil, status.ErrInvalidTransition
		}
		return nil, err
	}

	s.monitor.TrackBookingOperation("pay", "success")
	booking.Status = models.BookingPaid
	return booking, nil
}

func (s *BookingService) ListByUser(ctx context.Context, user Identity) ([]*models.Booking, error) {
	if err := Authorize(user, models.RoleUser); err != nil {
		return nil, err
	}
	return s.store.FindBookingsByUser(ctx, user.Email)
}

func (s *BookingService) ListByVendor(ctx context.Context, vendor Identity) ([]*models.Booking, error) {
	if err := Authorize(vendor, models.RoleVendor); err != nil {
		return nil, err
	}
	return s.store.FindBookingsByVendor(ctx, vendor.Email)
}
