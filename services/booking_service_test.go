package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-marketplace/internal/status"
	"ticket-marketplace/models"
	"ticket-marketplace/monitoring"
)

var (
	testUser   = Identity{Email: "user@example.com", Role: models.RoleUser}
	testVendor = Identity{Email: "vendor@example.com", Role: models.RoleVendor}
)

func setupBookingService() (*BookingService, *stubStore) {
	st := newStubStore()
	return NewBookingService(st, &monitoring.Monitor{}, 3), st
}

func bookableTicket(st *stubStore) *models.Ticket {
	return st.addTicket(&models.Ticket{
		Title:        "Night Coach",
		Image:        "coach.jpg",
		Origin:       "Dhaka",
		Destination:  "Sylhet",
		Price:        10,
		Quantity:     5,
		Departure:    time.Now().Add(72 * time.Hour),
		VendorEmail:  testVendor.Email,
		Verification: models.VerificationApproved,
	})
}

func TestBookingService_Create(t *testing.T) {
	service, st := setupBookingService()
	ctx := context.Background()
	ticket := bookableTicket(st)

	booking, err := service.Create(ctx, testUser, ticket.ID, 2)
	require.NoError(t, err)

	assert.NotEmpty(t, booking.ID)
	assert.Len(t, booking.RefCode, 12)
	assert.Equal(t, models.BookingPending, booking.Status)
	assert.Equal(t, testUser.Email, booking.UserEmail)
	assert.Equal(t, ticket.VendorEmail, booking.VendorEmail)
	assert.Equal(t, 2, booking.Quantity)
	assert.Equal(t, 20.0, booking.TotalPrice)

	// the booking carries a snapshot of the ticket at purchase time
	assert.Equal(t, ticket.Title, booking.TicketTitle)
	assert.Equal(t, ticket.Image, booking.TicketImage)
	assert.Equal(t, ticket.Origin, booking.Origin)
	assert.Equal(t, ticket.Destination, booking.Destination)

	remaining, err := st.FindTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, remaining.Quantity)
}

func TestBookingService_Create_InsufficientInventory(t *testing.T) {
	service, st := setupBookingService()
	ctx := context.Background()
	ticket := bookableTicket(st)

	_, err := service.Create(ctx, testUser, ticket.ID, 6)
	assert.ErrorIs(t, err, status.ErrInsufficientInventory)

	// the failed reservation left inventory untouched
	remaining, ferr := st.FindTicketByID(ctx, ticket.ID)
	require.NoError(t, ferr)
	assert.Equal(t, 5, remaining.Quantity)
}

func TestBookingService_Create_Rejected(t *testing.T) {
	service, st := setupBookingService()
	ctx := context.Background()
	ticket := bookableTicket(st)

	_, err := service.Create(ctx, testUser, "missing", 1)
	assert.ErrorIs(t, err, status.ErrNotFound)

	_, err = service.Create(ctx, testUser, ticket.ID, 0)
	assert.ErrorIs(t, err, status.ErrValidation)

	_, err = service.Create(ctx, testUser, ticket.ID, -2)
	assert.ErrorIs(t, err, status.ErrValidation)

	_, err = service.Create(ctx, testVendor, ticket.ID, 1)
	assert.ErrorIs(t, err, status.ErrForbidden)

	_, err = service.Create(ctx, testAdmin, ticket.ID, 1)
	assert.ErrorIs(t, err, status.ErrForbidden)
}

func TestBookingService_Create_ConcurrentOversellPrevented(t *testing.T) {
	service, st := setupBookingService()
	ctx := context.Background()
	ticket := bookableTicket(st)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Create(ctx, testUser, ticket.ID, 3)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, failures int
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, status.ErrInsufficientInventory)
			failures++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)

	remaining, err := st.FindTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining.Quantity)
}

func TestBookingService_Decide(t *testing.T) {
	service, st := setupBookingService()
	ctx := context.Background()
	ticket := bookableTicket(st)

	booking, err := service.Create(ctx, testUser, ticket.ID, 1)
	require.NoError(t, err)

	accepted, err := service.Decide(ctx, testVendor, booking.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.BookingAccepted, accepted.Status)

	// acceptance does not touch inventory, it was reserved at creation
	remaining, err := st.FindTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, remaining.Quantity)
}

func TestBookingService_Decide_Reject(t *testing.T) {
	service, st := setupBookingService()
	ctx := context.Background()
	ticket := bookableTicket(st)

	booking, err := service.Create(ctx, testUser, ticket.ID, 1)
	require.NoError(t, err)

	rejected, err := service.Decide(ctx, testVendor, booking.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.BookingRejected, rejected.Status)
}

func TestBookingService_Decide_Rejected(t *testing.T) {
	service, st := setupBookingService()
	ctx := context.Background()
	ticket := bookableTicket(st)

	booking, err := service.Create(ctx, testUser, ticket.ID, 1)
	require.NoError(t, err)

	_, err = service.Decide(ctx, testVendor, "missing", true)
	assert.ErrorIs(t, err, status.ErrNotFound)

	other := Identity{Email: "other-vendor@example.com", Role: models.RoleVendor}
	_, err = service.Decide(ctx, other, booking.ID, true)
	assert.ErrorIs(t, err, status.ErrForbidden)

	_, err = service.Decide(ctx, testUser, booking.ID, true)
	assert.ErrorIs(t, err, status.ErrForbidden)

	// a decided booking cannot be decided again
	_, err = service.Decide(ctx, testVendor, booking.ID, true)
	require.NoError(t, err)
	_, err = service.Decide(ctx, testVendor, booking.ID, false)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
}

func TestBookingService_SettlePayment(t *testing.T) {
	service, st := setupBookingService()
	ctx := context.Background()
	ticket := bookableTicket(st)

	booking, err := service.Create(ctx, testUser, ticket.ID, 2)
	require.NoError(t, err)

	paid, err := service.SettlePayment(ctx, testUser, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaid, paid.Status)

	// paying reserves nothing extra
	remaining, err := st.FindTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, remaining.Quantity)

	// a paid booking is terminal
	_, err = service.SettlePayment(ctx, testUser, booking.ID)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
	_, err = service.Decide(ctx, testVendor, booking.ID, true)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
}

func TestBookingService_SettlePayment_Rejected(t *testing.T) {
	service, st := setupBookingService()
	ctx := context.Background()
	ticket := bookableTicket(st)

	booking, err := service.Create(ctx, testUser, ticket.ID, 1)
	require.NoError(t, err)

	_, err = service.SettlePayment(ctx, testUser, "missing")
	assert.ErrorIs(t, err, status.ErrNotFound)

	other := Identity{Email: "other@example.com", Role: models.RoleUser}
	_, err = service.SettlePayment(ctx, other, booking.ID)
	assert.ErrorIs(t, err, status.ErrForbidden)

	_, err = service.SettlePayment(ctx, testVendor, booking.ID)
	assert.ErrorIs(t, err, status.ErrForbidden)

	// a rejected booking is not payable
	_, err = service.Decide(ctx, testVendor, booking.ID, false)
	require.NoError(t, err)
	_, err = service.SettlePayment(ctx, testUser, booking.ID)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
}

func TestBookingService_SettlePayment_DeparturePassed(t *testing.T) {
	service, st := setupBookingService()
	ctx := context.Background()
	ticket := bookableTicket(st)

	booking, err := service.Create(ctx, testUser, ticket.ID, 1)
	require.NoError(t, err)

	service.now = func() time.Time { return ticket.Departure.Add(time.Hour) }

	_, err = service.SettlePayment(ctx, testUser, booking.ID)
	assert.ErrorIs(t, err, status.ErrDeparturePassed)

	// the booking stays pending for the vendor to reject
	stale, ferr := st.FindBookingByID(ctx, booking.ID)
	require.NoError(t, ferr)
	assert.Equal(t, models.BookingPending, stale.Status)
}

func TestBookingService_Lifecycle(t *testing.T) {
	service, st := setupBookingService()
	ctx := context.Background()
	ticket := st.addTicket(&models.Ticket{
		Title:        "River Cruise",
		Origin:       "Dhaka",
		Destination:  "Barisal",
		Price:        10,
		Quantity:     2,
		Departure:    time.Now().Add(24 * time.Hour),
		VendorEmail:  testVendor.Email,
		Verification: models.VerificationApproved,
	})

	booking, err := service.Create(ctx, testUser, ticket.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 20.0, booking.TotalPrice)

	// inventory is exhausted, the next reservation fails
	_, err = service.Create(ctx, testUser, ticket.ID, 1)
	assert.ErrorIs(t, err, status.ErrInsufficientInventory)

	_, err = service.Decide(ctx, testVendor, booking.ID, true)
	require.NoError(t, err)

	// accept is terminal for the vendor but payment remains open
	paid, err := service.SettlePayment(ctx, testUser, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaid, paid.Status)
}

func TestBookingService_Listings(t *testing.T) {
	service, st := setupBookingService()
	ctx := context.Background()
	ticket := bookableTicket(st)

	_, err := service.Create(ctx, testUser, ticket.ID, 1)
	require.NoError(t, err)

	mine, err := service.ListByUser(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	incoming, err := service.ListByVendor(ctx, testVendor)
	require.NoError(t, err)
	assert.Len(t, incoming, 1)

	none, err := service.ListByUser(ctx, Identity{Email: "nobody@example.com", Role: models.RoleUser})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = service.ListByUser(ctx, testVendor)
	assert.ErrorIs(t, err, status.ErrForbidden)
	_, err = service.ListByVendor(ctx, testUser)
	assert.ErrorIs(t, err, status.ErrForbidden)
}
