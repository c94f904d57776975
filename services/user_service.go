package services

import (
	"context"
	"fmt"
	"strings"

	"ticket-marketplace/internal/status"
	"ticket-marketplace/models"
	"ticket-marketplace/monitoring"
	"ticket-marketplace/store"
)

type UserService struct {
	store   store.Store
	cache   *ListingCache
	monitor *monitoring.Monitor
}

func NewUserService(st store.Store, cache *ListingCache, monitor *monitoring.Monitor) *UserService {
	return &UserService{
		store:   st,
		cache:   cache,
		monitor: monitor,
	}
}

// Register upserts the caller's account record by email. Safe to call on
// every login; an existing account only gets its display name refreshed.
func (s *UserService) Register(ctx context.Context, email, name string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("email %q: %w", email, status.ErrValidation)
	}

	return s.store.UpsertUser(ctx, &models.User{
		Email: email,
		Name:  name,
		Role:  models.RoleUser,
	})
}

func (s *UserService) List(ctx context.Context, admin Identity) ([]*models.User, error) {
	if err := Authorize(admin, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.store.FindUsersAll(ctx)
}

func (s *UserService) SetRole(ctx context.Context, admin Identity, email, role string) error {
	if err := Authorize(admin, models.RoleAdmin); err != nil {
		return err
	}
	if !models.ValidRole(role) {
		return fmt.Errorf("role %q: %w", role, status.ErrValidation)
	}
	return s.store.UpdateUserRole(ctx, email, role)
}

// MarkVendorFraudulent flags a vendor as fraudulent and hides every ticket the
// vendor owns. Flag and cascade run in one transaction: either both land or
// neither does.
func (s *UserService) MarkVendorFraudulent(ctx context.Context, admin Identity, email string) error {
	if err := Authorize(admin, models.RoleAdmin); err != nil {
		return err
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Role != models.RoleVendor {
		return fmt.Errorf("user %s is not a vendor: %w", email, status.ErrValidation)
	}

	err = s.store.InTransaction(ctx, func(tx store.Store) error {
		if err := tx.UpdateUserFraudFlag(ctx, email, true); err != nil {
			return err
		}
		return tx.HideAllTicketsForVendor(ctx, email)
	})
	if err != nil {
		return err
	}

	s.monitor.TrackFraudCascade()
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return nil
}
