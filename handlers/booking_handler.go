package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-marketplace/services"
)

type BookingHandler struct {
	bookings *services.BookingService
}

func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create - reserve inventory and open a pending booking. The total price is
// computed server-side from the ticket; the body carries only ticket and
// quantity.
func (h *BookingHandler) Create(e *core.RequestEvent) error {
	identity, err := identityFromEvent(e)
	if err != nil {
		return err
	}

	var req struct {
		TicketID string `json:"ticket_id"`
		Quantity int    `json:"quantity"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	booking, err := h.bookings.Create(e.Request.Context(), identity, req.TicketID, req.Quantity)
	if err != nil {
		return apiError(err, "Failed to create booking")
	}
	return e.JSON(http.StatusCreated, booking)
}

// Decide - owning vendor accepts or rejects a pending booking.
func (h *BookingHandler) Decide(e *core.RequestEvent) error {
	identity, err := identityFromEvent(e)
	if err != nil {
		return err
	}

	bookingID := e.Request.PathValue("id")
	if bookingID == "" {
		return apis.NewBadRequestError("Booking ID is required", nil)
	}

	var req struct {
		Outcome string `json:"outcome"` // accept, reject
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Outcome != "accept" && req.Outcome != "reject" {
		return apis.NewBadRequestError("Outcome must be accept or reject", nil)
	}

	booking, err := h.bookings.Decide(e.Request.Context(), identity, bookingID, req.Outcome == "accept")
	if err != nil {
		return apiError(err, "Failed to decide booking")
	}
	return e.JSON(http.StatusOK, booking)
}

// SettlePayment - owning user records payment for an open booking before
// departure.
func (h *BookingHandler) SettlePayment(e *core.RequestEvent) error {
	identity, err := identityFromEvent(e)
	if err != nil {
		return err
	}

	bookingID := e.Request.PathValue("id")
	if bookingID == "" {
		return apis.NewBadRequestError("Booking ID is required", nil)
	}

	booking, err := h.bookings.SettlePayment(e.Request.Context(), identity, bookingID)
	if err != nil {
		return apiError(err, "Failed to settle payment")
	}
	return e.JSON(http.StatusOK, booking)
}

// MyBookings - booking history of the calling user.
func (h *BookingHandler) MyBookings(e *core.RequestEvent) error {
	identity, err := identityFromEvent(e)
	if err != nil {
		return err
	}

	bookings, err := h.bookings.ListByUser(e.Request.Context(), identity)
	if err != nil {
		return apiError(err, "Failed to list bookings")
	}
	return e.JSON(http.StatusOK, bookings)
}

// VendorBookings - bookings placed against the calling vendor's tickets.
func (h *BookingHandler) VendorBookings(e *core.RequestEvent) error {
	identity, err := identityFromEvent(e)
	if err != nil {
		return err
	}

	bookings, err := h.bookings.ListByVendor(e.Request.Context(), identity)
	if err != nil {
		return apiError(err, "Failed to list vendor bookings")
	}
	return e.JSON(http.StatusOK, bookings)
}
