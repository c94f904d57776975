package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-marketplace/internal/status"
	"ticket-marketplace/models"
	"ticket-marketplace/services"
)

// identityFromEvent maps the authenticated record to the identity consumed by
// the lifecycle core. Accounts without an explicit role act as plain users.
func identityFromEvent(e *core.RequestEvent) (services.Identity, error) {
	if e.Auth == nil {
		return services.Identity{}, apis.NewUnauthorizedError("Authentication required", nil)
	}

	role := e.Auth.GetString("role")
	if role == "" {
		role = models.RoleUser
	}

	return services.Identity{
		Email: e.Auth.GetString("email"),
		Role:  role,
	}, nil
}

// apiError maps a core error kind to its HTTP status. The core reports one
// specific kind per failure; nothing else about the transport leaks into it.
func apiError(err error, msg string) error {
	switch {
	case errors.Is(err, status.ErrValidation):
		return apis.NewBadRequestError(msg, err)
	case errors.Is(err, status.ErrNotFound):
		return apis.NewNotFoundError(msg, err)
	case errors.Is(err, status.ErrForbidden):
		return apis.NewForbiddenError(msg, err)
	case errors.Is(err, status.ErrInvalidTransition),
		errors.Is(err, status.ErrInsufficientInventory),
		errors.Is(err, status.ErrSlotsExhausted),
		errors.Is(err, status.ErrDeparturePassed),
		errors.Is(err, status.ErrConflict):
		return apis.NewApiError(http.StatusConflict, msg, err)
	default:
		return apis.NewApiError(http.StatusInternalServerError, msg, err)
	}
}
