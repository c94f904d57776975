package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"ticket-marketplace/internal/status"
	"ticket-marketplace/models"
)

// RecordStore implements Store on top of PocketBase records. The two
// conditional updates go through raw SQL so the check and the write happen in
// a single statement.
type RecordStore struct {
	app core.App
}

func NewRecordStore(app core.App) *RecordStore {
	return &RecordStore{app: app}
}

func (s *RecordStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	record, err := s.app.FindFirstRecordByFilter("users", "email = {:email}", dbx.Params{"email": email})
	if err != nil {
		return nil, mapFindErr(err)
	}
	return userFromRecord(record), nil
}

func (s *RecordStore) UpsertUser(ctx context.Context, user *models.User) (*models.User, error) {
	record, err := s.app.FindFirstRecordByFilter("users", "email = {:email}", dbx.Params{"email": user.Email})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if record == nil {
		collection, err := s.app.FindCollectionByNameOrId("users")
		if err != nil {
			return nil, err
		}
		record = core.NewRecord(collection)
		record.SetEmail(user.Email)
		record.SetRandomPassword()
		role := user.Role
		if role == "" {
			role = models.RoleUser
		}
		record.Set("role", role)
	}

	// Re-registration only refreshes the display name. Role and fraud flag
	// are admin-owned fields and never change on this path.
	if user.Name != "" {
		record.Set("name", user.Name)
	}

	if err := s.app.Save(record); err != nil {
		return nil, err
	}
	return userFromRecord(record), nil
}

func (s *RecordStore) FindUsersAll(ctx context.Context) ([]*models.User, error) {
	records, err := s.app.FindAllRecords("users")
	if err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, len(records))
	for _, r := range records {
		users = append(users, userFromRecord(r))
	}
	return users, nil
}

func (s *RecordStore) UpdateUserRole(ctx context.Context, email, role string) error {
	record, err := s.app.FindFirstRecordByFilter("users", "email = {:email}", dbx.Params{"email": email})
	if err != nil {
		return mapFindErr(err)
	}
	record.Set("role", role)
	return s.app.Save(record)
}

func (s *RecordStore) UpdateUserFraudFlag(ctx context.Context, email string, fraud bool) error {
	record, err := s.app.FindFirstRecordByFilter("users", "email = {:email}", dbx.Params{"email": email})
	if err != nil {
		return mapFindErr(err)
	}
	record.Set("is_fraud", fraud)
	return s.app.Save(record)
}

func (s *RecordStore) InsertTicket(ctx context.Context, t *models.Ticket) (*models.Ticket, error) {
	collection, err := s.app.FindCollectionByNameOrId("tickets")
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(collection)
	record.Set("title", t.Title)
	record.Set("image", t.Image)
	record.Set("origin", t.Origin)
	record.Set("destination", t.Destination)
	record.Set("transport", t.Transport)
	record.Set("price", t.Price)
	record.Set("quantity", t.Quantity)
	record.Set("departure", t.Departure)
	record.Set("vendor_email", t.VendorEmail)
	record.Set("verification", t.Verification)
	record.Set("is_advertised", t.IsAdvertised)
	record.Set("is_hidden", t.IsHidden)

	if err := s.app.Save(record); err != nil {
		return nil, err
	}
	return ticketFromRecord(record), nil
}

func (s *RecordStore) FindTicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	record, err := s.app.FindRecordById("tickets", id)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return ticketFromRecord(record), nil
}

func (s *RecordStore) FindTicketsByVendor(ctx context.Context, vendorEmail string) ([]*models.Ticket, error) {
	records, err := s.app.FindAllRecords("tickets", dbx.HashExp{"vendor_email": vendorEmail})
	if err != nil {
		return nil, err
	}
	return ticketsFromRecords(records), nil
}

func (s *RecordStore) FindTicketsByQuery(ctx context.Context, q TicketQuery) ([]*models.Ticket, error) {
	filter := "id != ''"
	params := dbx.Params{}

	if q.PublicOnly {
		filter += " && verification = {:approved} && is_hidden = false"
		params["approved"] = models.VerificationApproved
	}
	if q.AdvertisedOnly {
		filter += " && is_advertised = true"
	}
	if q.VendorEmail != "" {
		filter += " && vendor_email = {:vendor}"
		params["vendor"] = q.VendorEmail
	}

	records, err := s.app.FindRecordsByFilter("tickets", filter, "-created", 0, 0, params)
	if err != nil {
		return nil, err
	}
	return ticketsFromRecords(records), nil
}

func (s *RecordStore) UpdateTicketFields(ctx context.Context, id string, fields TicketUpdate) error {
	record, err := s.app.FindRecordById("tickets", id)
	if err != nil {
		return mapFindErr(err)
	}
	for name, value := range fields {
		record.Set(name, value)
	}
	return s.app.Save(record)
}

func (s *RecordStore) ConditionalDecrementTicketQuantity(ctx context.Context, id string, amount int) error {
	res, err := s.app.DB().NewQuery(
		"UPDATE tickets SET quantity = quantity - {:n} WHERE id = {:id} AND quantity >= {:n}",
	).Bind(dbx.Params{"n": amount, "id": id}).Execute()
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return status.ErrInsufficientInventory
	}
	return nil
}

func (s *RecordStore) ConditionalMarkAdvertised(ctx context.Context, id string, max int) error {
	// The counting subquery excludes the target ticket so re-marking an
	// already advertised ticket stays a no-op success.
	res, err := s.app.DB().NewQuery(
		`UPDATE tickets SET is_advertised = 1
		 WHERE id = {:id}
		   AND (SELECT COUNT(*) FROM tickets WHERE is_advertised = 1 AND id != {:id}) < {:max}`,
	).Bind(dbx.Params{"id": id, "max": max}).Execute()
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return status.ErrSlotsExhausted
	}
	return nil
}

func (s *RecordStore) HideAllTicketsForVendor(ctx context.Context, vendorEmail string) error {
	_, err := s.app.DB().NewQuery(
		"UPDATE tickets SET is_hidden = 1 WHERE vendor_email = {:vendor}",
	).Bind(dbx.Params{"vendor": vendorEmail}).Execute()
	return err
}

func (s *RecordStore) CountAdvertisedTickets(ctx context.Context) (int, error) {
	var count int
	err := s.app.DB().NewQuery(
		"SELECT COUNT(*) FROM tickets WHERE is_advertised = 1",
	).Row(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *RecordStore) InsertBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	collection, err := s.app.FindCollectionByNameOrId("bookings")
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(collection)
	record.Set("ref_code", b.RefCode)
	record.Set("ticket_id", b.TicketID)
	record.Set("user_email", b.UserEmail)
	record.Set("vendor_email", b.VendorEmail)
	record.Set("quantity", b.Quantity)
	record.Set("total_price", b.TotalPrice)
	record.Set("status", b.Status)
	record.Set("ticket_title", b.TicketTitle)
	record.Set("ticket_image", b.TicketImage)
	record.Set("origin", b.Origin)
	record.Set("destination", b.Destination)
	record.Set("departure", b.Departure)

	if err := s.app.Save(record); err != nil {
		return nil, err
	}
	return bookingFromRecord(record), nil
}

func (s *RecordStore) FindBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	record, err := s.app.FindRecordById("bookings", id)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return bookingFromRecord(record), nil
}

func (s *RecordStore) FindBookingsByUser(ctx context.Context, email string) ([]*models.Booking, error) {
	return s.findBookings(dbx.HashExp{"user_email": email})
}

func (s *RecordStore) FindBookingsByVendor(ctx context.Context, email string) ([]*models.Booking, error) {
	return s.findBookings(dbx.HashExp{"vendor_email": email})
}

func (s *RecordStore) findBookings(expr dbx.Expression) ([]*models.Booking, error) {
	records, err := s.app.FindAllRecords("bookings", expr)
	if err != nil {
		return nil, err
	}
	bookings := make([]*models.Booking, 0, len(records))
	for _, r := range records {
		bookings = append(bookings, bookingFromRecord(r))
	}
	return bookings, nil
}

func (s *RecordStore) UpdateBookingStatus(ctx context.Context, id, from, to string) error {
	res, err := s.app.DB().NewQuery(
		"UPDATE bookings SET status = {:to} WHERE id = {:id} AND status = {:from}",
	).Bind(dbx.Params{"to": to, "id": id, "from": from}).Execute()
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("booking %s not in status %q: %w", id, from, status.ErrConflict)
	}
	return nil
}

func (s *RecordStore) InTransaction(ctx context.Context, fn func(Store) error) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		return fn(&RecordStore{app: txApp})
	})
}

func mapFindErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return status.ErrNotFound
	}
	return err
}

func userFromRecord(r *core.Record) *models.User {
	return &models.User{
		ID:        r.Id,
		Email:     r.GetString("email"),
		Name:      r.GetString("name"),
		Role:      r.GetString("role"),
		IsFraud:   r.GetBool("is_fraud"),
		CreatedAt: r.GetDateTime("created").Time(),
	}
}

func ticketFromRecord(r *core.Record) *models.Ticket {
	return &models.Ticket{
		ID:           r.Id,
		Title:        r.GetString("title"),
		Image:        r.GetString("image"),
		Origin:       r.GetString("origin"),
		Destination:  r.GetString("destination"),
		Transport:    r.GetString("transport"),
		Price:        r.GetFloat("price"),
		Quantity:     r.GetInt("quantity"),
		Departure:    r.GetDateTime("departure").Time(),
		VendorEmail:  r.GetString("vendor_email"),
		Verification: r.GetString("verification"),
		IsAdvertised: r.GetBool("is_advertised"),
		IsHidden:     r.GetBool("is_hidden"),
		CreatedAt:    r.GetDateTime("created").Time(),
	}
}

func ticketsFromRecords(records []*core.Record) []*models.Ticket {
	tickets := make([]*models.Ticket, 0, len(records))
	for _, r := range records {
		tickets = append(tickets, ticketFromRecord(r))
	}
	return tickets
}

func bookingFromRecord(r *core.Record) *models.Booking {
	return &models.Booking{
		ID:          r.Id,
		RefCode:     r.GetString("ref_code"),
		TicketID:    r.GetString("ticket_id"),
		UserEmail:   r.GetString("user_email"),
		VendorEmail: r.GetString("vendor_email"),
		Quantity:    r.GetInt("quantity"),
		TotalPrice:  r.GetFloat("total_price"),
		Status:      r.GetString("status"),
		CreatedAt:   r.GetDateTime("created").Time(),
		TicketTitle: r.GetString("ticket_title"),
		TicketImage: r.GetString("ticket_image"),
		Origin:      r.GetString("origin"),
		Destination: r.GetString("destination"),
		Departure:   r.GetDateTime("departure").Time(),
	}
}
