package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-marketplace/services"
)

type TicketHandler struct {
	tickets *services.TicketService
}

func NewTicketHandler(tickets *services.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// ListPublic - approved, non-hidden tickets; ?advertised=true narrows to
// promoted listings. No authentication required.
func (h *TicketHandler) ListPublic(e *core.RequestEvent) error {
	advertisedOnly := e.Request.URL.Query().Get("advertised") == "true"

	tickets, err := h.tickets.ListPublic(e.Request.Context(), advertisedOnly)
	if err != nil {
		return apiError(err, "Failed to list tickets")
	}
	return e.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) Get(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("Ticket ID is required", nil)
	}

	ticket, err := h.tickets.Get(e.Request.Context(), id)
	if err != nil {
		return apiError(err, "Failed to get ticket")
	}
	return e.JSON(http.StatusOK, ticket)
}

// Create - vendor publishes a new ticket; it starts unverified and unlisted.
func (h *TicketHandler) Create(e *core.RequestEvent) error {
	identity, err := identityFromEvent(e)
	if err != nil {
		return err
	}

	var in services.CreateTicketInput
	if err := e.BindBody(&in); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ticket, err := h.tickets.Create(e.Request.Context(), identity, in)
	if err != nil {
		return apiError(err, "Failed to create ticket")
	}
	return e.JSON(http.StatusCreated, ticket)
}

// MyTickets - all tickets owned by the calling vendor, regardless of
// verification or visibility.
func (h *TicketHandler) MyTickets(e *core.RequestEvent) error {
	identity, err := identityFromEvent(e)
	if err != nil {
		return err
	}

	tickets, err := h.tickets.ListByVendor(e.Request.Context(), identity)
	if err != nil {
		return apiError(err, "Failed to list vendor tickets")
	}
	return e.JSON(http.StatusOK, tickets)
}
