package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-marketplace/services"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Register - idempotent profile upsert for the authenticated account. Called
// by clients after every login; re-registering is harmless.
func (h *UserHandler) Register(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Authentication required", nil)
	}

	user, err := h.users.Register(e.Request.Context(), e.Auth.GetString("email"), e.Auth.GetString("name"))
	if err != nil {
		return apiError(err, "Failed to register user")
	}
	return e.JSON(http.StatusOK, user)
}
