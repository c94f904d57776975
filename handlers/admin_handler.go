package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-marketplace/services"
)

type AdminHandler struct {
	users   *services.UserService
	tickets *services.TicketService
}

func NewAdminHandler(users *services.UserService, tickets *services.TicketService) *AdminHandler {
	return &AdminHandler{
		users:   users,
		tickets: tickets,
	}
}

// ListUsers - all accounts, admin only.
func (h *AdminHandler) ListUsers(e *core.RequestEvent) error {
	identity, err := identityFromEvent(e)
	if err != nil {
		return err
	}

	users, err := h.users.List(e.Request.Context(), identity)
	if err != nil {
		return apiError(err, "Failed to list users")
	}
	return e.JSON(http.StatusOK, users)
}

// SetRole - change an account's role.
func (h *AdminHandler) SetRole(e *core.RequestEvent) error {
	identity, err := identityFromEvent(e)
	if err != nil {
		return err
	}

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := h.users.SetRole(e.Request.Context(), identity, req.Email, req.Role); err != nil {
		return apiError(err, "Failed to update role")
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Role updated"})
}

// MarkFraudulent - flag a vendor and hide all of its tickets in one step.
func (h *AdminHandler) MarkFraudulent(e *core.RequestEvent) error {
	identity, err := identityFromEvent(e)
	if err != nil {
		return err
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := h.users.MarkVendorFraudulent(e.Request.Context(), identity, req.Email); err != nil {
		return apiError(err, "Failed to mark vendor fraudulent")
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Vendor marked fraudulent"})
}

// SetVerification - approve or reject a ticket.
func (h *AdminHandler) SetVerification(e *core.RequestEvent) error {
	identity, err := identityFromEvent(e)
	if err != nil {
		return err
	}

	ticketID := e.Request.PathValue("id")
	if ticketID == "" {
		return apis.NewBadRequestError("Ticket ID is required", nil)
	}

	var req struct {
		Status string `json:"status"` // approved, rejected
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := h.tickets.SetVerification(e.Request.Context(), identity, ticketID, req.Status); err != nil {
		return apiError(err, "Failed to update verification")
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Verification updated"})
}

// SetAdvertised - move a ticket into or out of an advertisement slot.
func (h *AdminHandler) SetAdvertised(e *core.RequestEvent) error {
	identity, err := identityFromEvent(e)
	if err != nil {
		return err
	}

	ticketID := e.Request.PathValue("id")
	if ticketID == "" {
		return apis.NewBadRequestError("Ticket ID is required", nil)
	}

	var req struct {
		Advertised bool `json:"advertised"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := h.tickets.SetAdvertised(e.Request.Context(), identity, ticketID, req.Advertised); err != nil {
		return apiError(err, "Failed to update advertisement")
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Advertisement updated"})
}
