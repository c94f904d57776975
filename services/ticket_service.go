package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ticket-marketplace/internal/status"
	"ticket-marketplace/models"
	"ticket-marketplace/monitoring"
	"ticket-marketplace/store"
)

type TicketService struct {
	store         store.Store
	cache         *ListingCache
	monitor       *monitoring.Monitor
	maxAdvertised int
}

func NewTicketService(st store.Store, cache *ListingCache, monitor *monitoring.Monitor, maxAdvertised int) *TicketService {
	return &TicketService{
		store:         st,
		cache:         cache,
		monitor:       monitor,
		maxAdvertised: maxAdvertised,
	}
}

// CreateTicketInput whitelists the fields a vendor may supply. Verification
// status and visibility flags are never caller-settable.
type CreateTicketInput struct {
	Title       string    `json:"title"`
	Image       string    `json:"image"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Transport   string    `json:"transport"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Departure   time.Time `json:"departure"`
}

func (s *TicketService) Create(ctx context.Context, vendor Identity, in CreateTicketInput) (*models.Ticket, error) {
	if err := Authorize(vendor, models.RoleVendor); err != nil {
		return nil, err
	}

	account, err := s.store.FindUserByEmail(ctx, vendor.Email)
	if err != nil {
		return nil, err
	}
	if account.IsFraud {
		return nil, fmt.Errorf("vendor %s is flagged fraudulent: %w", vendor.Email, status.ErrForbidden)
	}

	if in.Title == "" || in.Origin == "" || in.Destination == "" {
		return nil, fmt.Errorf("title, origin and destination are required: %w", status.ErrValidation)
	}
	if !decimal.NewFromFloat(in.Price).IsPositive() {
		return nil, fmt.Errorf("price must be a positive number: %w", status.ErrValidation)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be a positive integer: %w", status.ErrValidation)
	}
	if in.Departure.IsZero() {
		return nil, fmt.Errorf("departure is required: %w", status.ErrValidation)
	}

	ticket := &models.Ticket{
		Title:        in.Title,
		Image:        in.Image,
		Origin:       in.Origin,
		Destination:  in.Destination,
		Transport:    in.Transport,
		Price:        in.Price,
		Quantity:     in.Quantity,
		Departure:    in.Departure,
		VendorEmail:  vendor.Email,
		Verification: models.VerificationPending,
		IsAdvertised: false,
		IsHidden:     false,
	}

	return s.store.InsertTicket(ctx, ticket)
}

// SetVerification transitions the administrative approval state. Only
// approved and rejected are acceptable target states.
func (s *TicketService) SetVerification(ctx context.Context, admin Identity, ticketID, verification string) error {
	if err := Authorize(admin, models.RoleAdmin); err != nil {
		return err
	}
	if verification != models.VerificationApproved && verification != models.VerificationRejected {
		return fmt.Errorf("verification %q: %w", verification, status.ErrValidation)
	}

	if _, err := s.store.FindTicketByID(ctx, ticketID); err != nil {
		return err
	}

	if err := s.store.UpdateTicketFields(ctx, ticketID, store.TicketUpdate{"verification": verification}); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return nil
}

// SetAdvertised toggles a ticket's advertisement slot. Promotion is an atomic
// check-and-set against the slot cap; demotion needs no capacity check.
func (s *TicketService) SetAdvertised(ctx context.Context, admin Identity, ticketID string, desired bool) error {
	if err := Authorize(admin, models.RoleAdmin); err != nil {
		return err
	}

	ticket, err := s.store.FindTicketByID(ctx, ticketID)
	if err != nil {
		return err
	}

	switch {
	case desired && ticket.IsAdvertised:
		// already advertised, no-op success
	case desired:
		if err := s.store.ConditionalMarkAdvertised(ctx, ticketID, s.maxAdvertised); err != nil {
			return err
		}
	default:
		if err := s.store.UpdateTicketFields(ctx, ticketID, store.TicketUpdate{"is_advertised": false}); err != nil {
			return err
		}
	}

	if count, err := s.store.CountAdvertisedTickets(ctx); err == nil {
		s.monitor.SetAdvertisedSlots(count)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return nil
}

// ListPublic returns tickets visible to anonymous callers: approved and not
// hidden, optionally narrowed to advertised ones. Reads go through the redis
// cache when one is configured; a failing cache degrades to the store.
func (s *TicketService) ListPublic(ctx context.Context, advertisedOnly bool) ([]*models.Ticket, error) {
	if s.cache != nil {
		if tickets, ok := s.cache.Get(ctx, advertisedOnly); ok {
			return tickets, nil
		}
	}

	tickets, err := s.store.FindTicketsByQuery(ctx, store.TicketQuery{
		PublicOnly:     true,
		AdvertisedOnly: advertisedOnly,
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, advertisedOnly, tickets)
	}
	return tickets, nil
}

func (s *TicketService) ListByVendor(ctx context.Context, vendor Identity) ([]*models.Ticket, error) {
	if err := Authorize(vendor, models.RoleVendor); err != nil {
		return nil, err
	}
	return s.store.FindTicketsByVendor(ctx, vendor.Email)
}

func (s *TicketService) Get(ctx context.Context, ticketID string) (*models.Ticket, error) {
	return s.store.FindTicketByID(ctx, ticketID)
}
