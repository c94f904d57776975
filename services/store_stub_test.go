package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ticket-marketplace/internal/status"
	"ticket-marketplace/models"
	"ticket-marketplace/store"
)

// stubStore is an in-memory Store for service tests. All operations run
// under one mutex, so the conditional updates are atomic the same way the
// real implementation's single-statement SQL is.
type stubStore struct {
	mu     sync.Mutex
	nolock bool

	users    map[string]*models.User
	tickets  map[string]*models.Ticket
	bookings map[string]*models.Booking
	seq      int

	// optional failure injection
	failHideAll bool
}

func newStubStore() *stubStore {
	return &stubStore{
		users:    map[string]*models.User{},
		tickets:  map[string]*models.Ticket{},
		bookings: map[string]*models.Booking{},
	}
}

func (s *stubStore) lock() func() {
	if s.nolock {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *stubStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *stubStore) addUser(u *models.User) *models.User {
	if u.ID == "" {
		u.ID = s.nextID("user")
	}
	s.users[u.Email] = u
	return u
}

func (s *stubStore) addTicket(t *models.Ticket) *models.Ticket {
	if t.ID == "" {
		t.ID = s.nextID("ticket")
	}
	s.tickets[t.ID] = t
	return t
}

func (s *stubStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	defer s.lock()()
	u, ok := s.users[email]
	if !ok {
		return nil, status.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubStore) UpsertUser(ctx context.Context, user *models.User) (*models.User, error) {
	defer s.lock()()
	if existing, ok := s.users[user.Email]; ok {
		if user.Name != "" {
			existing.Name = user.Name
		}
		copied := *existing
		return &copied, nil
	}
	created := *user
	created.ID = s.nextID("user")
	created.CreatedAt = time.Now()
	s.users[created.Email] = &created
	copied := created
	return &copied, nil
}

func (s *stubStore) FindUsersAll(ctx context.Context) ([]*models.User, error) {
	defer s.lock()()
	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		copied := *u
		users = append(users, &copied)
	}
	return users, nil
}

func (s *stubStore) UpdateUserRole(ctx context.Context, email, role string) error {
	defer s.lock()()
	u, ok := s.users[email]
	if !ok {
		return status.ErrNotFound
	}
	u.Role = role
	return nil
}

func (s *stubStore) UpdateUserFraudFlag(ctx context.Context, email string, fraud bool) error {
	defer s.lock()()
	u, ok := s.users[email]
	if !ok {
		return status.ErrNotFound
	}
	u.IsFraud = fraud
	return nil
}

func (s *stubStore) InsertTicket(ctx context.Context, t *models.Ticket) (*models.Ticket, error) {
	defer s.lock()()
	created := *t
	created.ID = s.nextID("ticket")
	created.CreatedAt = time.Now()
	s.tickets[created.ID] = &created
	copied := created
	return &copied, nil
}

func (s *stubStore) FindTicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	defer s.lock()()
	t, ok := s.tickets[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *stubStore) FindTicketsByVendor(ctx context.Context, vendorEmail string) ([]*models.Ticket, error) {
	defer s.lock()()
	var tickets []*models.Ticket
	for _, t := range s.tickets {
		if t.VendorEmail == vendorEmail {
			copied := *t
			tickets = append(tickets, &copied)
		}
	}
	return tickets, nil
}

func (s *stubStore) FindTicketsByQuery(ctx context.Context, q store.TicketQuery) ([]*models.Ticket, error) {
	defer s.lock()()
	var tickets []*models.Ticket
	for _, t := range s.tickets {
		if q.PublicOnly && !t.PubliclyListable() {
			continue
		}
		if q.AdvertisedOnly && !t.IsAdvertised {
			continue
		}
		if q.VendorEmail != "" && t.VendorEmail != q.VendorEmail {
			continue
		}
		copied := *t
		tickets = append(tickets, &copied)
	}
	return tickets, nil
}

func (s *stubStore) UpdateTicketFields(ctx context.Context, id string, fields store.TicketUpdate) error {
	defer s.lock()()
	t, ok := s.tickets[id]
	if !ok {
		return status.ErrNotFound
	}
	for name, value := range fields {
		switch name {
		case "verification":
			t.Verification = value.(string)
		case "is_advertised":
			t.IsAdvertised = value.(bool)
		case "is_hidden":
			t.IsHidden = value.(bool)
		default:
			return fmt.Errorf("stub store: unhandled field %q", name)
		}
	}
	return nil
}

func (s *stubStore) ConditionalDecrementTicketQuantity(ctx context.Context, id string, amount int) error {
	defer s.lock()()
	t, ok := s.tickets[id]
	if !ok {
		return status.ErrNotFound
	}
	if t.Quantity < amount {
		return status.ErrInsufficientInventory
	}
	t.Quantity -= amount
	return nil
}

func (s *stubStore) ConditionalMarkAdvertised(ctx context.Context, id string, max int) error {
	defer s.lock()()
	t, ok := s.tickets[id]
	if !ok {
		return status.ErrNotFound
	}
	others := 0
	for _, other := range s.tickets {
		if other.ID != id && other.IsAdvertised {
			others++
		}
	}
	if others >= max {
		return status.ErrSlotsExhausted
	}
	t.IsAdvertised = true
	return nil
}

func (s *stubStore) HideAllTicketsForVendor(ctx context.Context, vendorEmail string) error {
	defer s.lock()()
	if s.failHideAll {
		return fmt.Errorf("stub store: cascade failure injected")
	}
	for _, t := range s.tickets {
		if t.VendorEmail == vendorEmail {
			t.IsHidden = true
		}
	}
	return nil
}

func (s *stubStore) CountAdvertisedTickets(ctx context.Context) (int, error) {
	defer s.lock()()
	count := 0
	for _, t := range s.tickets {
		if t.IsAdvertised {
			count++
		}
	}
	return count, nil
}

func (s *stubStore) InsertBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	defer s.lock()()
	created := *b
	created.ID = s.nextID("booking")
	created.CreatedAt = time.Now()
	s.bookings[created.ID] = &created
	copied := created
	return &copied, nil
}

func (s *stubStore) FindBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	defer s.lock()()
	b, ok := s.bookings[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (s *stubStore) FindBookingsByUser(ctx context.Context, email string) ([]*models.Booking, error) {
	defer s.lock()()
	var bookings []*models.Booking
	for _, b := range s.bookings {
		if b.UserEmail == email {
			copied := *b
			bookings = append(bookings, &copied)
		}
	}
	return bookings, nil
}

func (s *stubStore) FindBookingsByVendor(ctx context.Context, email string) ([]*models.Booking, error) {
	defer s.lock()()
	var bookings []*models.Booking
	for _, b := range s.bookings {
		if b.VendorEmail == email {
			copied := *b
			bookings = append(bookings, &copied)
		}
	}
	return bookings, nil
}

func (s *stubStore) UpdateBookingStatus(ctx context.Context, id, from, to string) error {
	defer s.lock()()
	b, ok := s.bookings[id]
	if !ok {
		return status.ErrNotFound
	}
	if b.Status != from {
		return status.ErrConflict
	}
	b.Status = to
	return nil
}

// InTransaction serializes the whole function under the store mutex and rolls
// every map back when it fails, mirroring the all-or-nothing contract.
func (s *stubStore) InTransaction(ctx context.Context, fn func(store.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapUsers := cloneMap(s.users)
	snapTickets := cloneMap(s.tickets)
	snapBookings := cloneMap(s.bookings)

	tx := &stubStore{
		nolock:      true,
		users:       s.users,
		tickets:     s.tickets,
		bookings:    s.bookings,
		seq:         s.seq,
		failHideAll: s.failHideAll,
	}

	if err := fn(tx); err != nil {
		s.users = snapUsers
		s.tickets = snapTickets
		s.bookings = snapBookings
		return err
	}

	s.seq = tx.seq
	return nil
}

func cloneMap[T any](src map[string]*T) map[string]*T {
	dst := make(map[string]*T, len(src))
	for k, v := range src {
		copied := *v
		dst[k] = &copied
	}
	return dst
}
