package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tripsplit/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const testTimeout = 5 * time.Second

// fakeStore is an in-memory database shared by the fake repositories so that trips,
// participants, invitations and expenses stay consistent with each other.
type fakeStore struct {
	now           time.Time
	nextID        int
	users         map[string]*domain.User
	trips         map[string]*domain.Trip
	participants  map[string]*domain.Participant
	invitations   map[string]*domain.Invitation
	expenses      map[string]*domain.Expense
	notifications map[string]*domain.Notification

	notificationErr  error
	createExpenseErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		now:           time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		users:         make(map[string]*domain.User),
		trips:         make(map[string]*domain.Trip),
		participants:  make(map[string]*domain.Participant),
		invitations:   make(map[string]*domain.Invitation),
		expenses:      make(map[string]*domain.Expense),
		notifications: make(map[string]*domain.Notification),
	}
}

func (s *fakeStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%03d", prefix, s.nextID)
}

// addUser registers a user and returns the identity a token would carry.
func (s *fakeStore) addUser(email, name string) domain.Identity {
	u := &domain.User{ID: s.id("user"), Email: email, FullName: name}
	s.users[u.ID] = u
	return domain.Identity{UserID: u.ID, Email: email}
}

func (s *fakeStore) addTrip(owner domain.Identity) *domain.Trip {
	trip := &domain.Trip{
		ID:          s.id("trip"),
		Title:       "Lisbon",
		Destination: "Portugal",
		StartDate:   s.now,
		EndDate:     s.now.Add(72 * time.Hour),
		Currency:    "EUR",
		Status:      domain.TripStatusPlanning,
		OwnerID:     owner.UserID,
	}
	s.trips[trip.ID] = trip
	s.addParticipant(trip.ID, owner.UserID, domain.RoleOrganizer)
	return trip
}

func (s *fakeStore) addParticipant(tripID, userID string, role domain.ParticipantRole) *domain.Participant {
	p := &domain.Participant{ID: s.id("part"), TripID: tripID, UserID: userID, Role: role, JoinedAt: s.now}
	if u, ok := s.users[userID]; ok {
		p.Email = u.Email
		p.FullName = u.FullName
	}
	s.participants[p.ID] = p
	return p
}

func (s *fakeStore) tripParticipants(tripID string) []*domain.Participant {
	var out []*domain.Participant
	for _, p := range s.participants {
		if p.TripID == tripID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Participant) int { return strings.Compare(a.ID, b.ID) })
	return out
}

type fakeTripRepo struct{ s *fakeStore }

func (r fakeTripRepo) Create(_ context.Context, trip *domain.Trip, owner *domain.Participant) error {
	trip.ID = r.s.id("trip")
	trip.CreatedAt, trip.UpdatedAt = r.s.now, r.s.now
	r.s.trips[trip.ID] = trip
	p := r.s.addParticipant(trip.ID, owner.UserID, owner.Role)
	owner.ID, owner.TripID, owner.JoinedAt = p.ID, trip.ID, p.JoinedAt
	return nil
}

func (r fakeTripRepo) GetByID(_ context.Context, id string) (*domain.Trip, error) {
	if t, ok := r.s.trips[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (r fakeTripRepo) ListByMember(_ context.Context, userID string) ([]*domain.Trip, error) {
	var out []*domain.Trip
	for _, t := range r.s.trips {
		member := t.OwnerID == userID
		for _, p := range r.s.tripParticipants(t.ID) {
			member = member || p.UserID == userID
		}
		if member {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r fakeTripRepo) Update(_ context.Context, id string, u domain.TripUpdate) (*domain.Trip, error) {
	t, ok := r.s.trips[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = u.Description
	}
	if u.Destination != nil {
		t.Destination = *u.Destination
	}
	if u.StartDate != nil {
		t.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		t.EndDate = *u.EndDate
	}
	if u.Budget != nil {
		t.Budget = u.Budget
	}
	if u.Currency != nil {
		t.Currency = *u.Currency
	}
	if u.CoverPhotoURL != nil {
		t.CoverPhotoURL = u.CoverPhotoURL
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	return t, nil
}

func (r fakeTripRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.s.trips[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.trips, id)
	for pid, p := range r.s.participants {
		if p.TripID == id {
			delete(r.s.participants, pid)
		}
	}
	return nil
}

type fakeParticipantRepo struct{ s *fakeStore }

func (r fakeParticipantRepo) GetByID(_ context.Context, id string) (*domain.Participant, error) {
	if p, ok := r.s.participants[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (r fakeParticipantRepo) GetByTripAndUser(_ context.Context, tripID, userID string) (*domain.Participant, error) {
	for _, p := range r.s.tripParticipants(tripID) {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r fakeParticipantRepo) ListByTripID(_ context.Context, tripID string) ([]*domain.Participant, error) {
	return r.s.tripParticipants(tripID), nil
}

func (r fakeParticipantRepo) UpdateRole(_ context.Context, id string, role domain.ParticipantRole) (*domain.Participant, error) {
	p, ok := r.s.participants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Role = role
	return p, nil
}

func (r fakeParticipantRepo) Remove(_ context.Context, id string) error {
	if _, ok := r.s.participants[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.participants, id)
	return nil
}

type fakeInvitationRepo struct{ s *fakeStore }

func (r fakeInvitationRepo) Create(_ context.Context, inv *domain.Invitation, ttl time.Duration) error {
	for _, p := range r.s.tripParticipants(inv.TripID) {
		if strings.EqualFold(p.Email, inv.Email) {
			return domain.ErrAlreadyMember
		}
	}
	for _, other := range r.s.invitations {
		if other.TripID == inv.TripID && strings.EqualFold(other.Email, inv.Email) && other.IsPending(r.s.now) {
			return domain.ErrDuplicateInvitation
		}
	}
	inv.ID = r.s.id("inv")
	inv.CreatedAt = r.s.now
	inv.ExpiresAt = r.s.now.Add(ttl)
	r.s.invitations[inv.ID] = inv
	return nil
}

func (r fakeInvitationRepo) GetByID(_ context.Context, id string) (*domain.Invitation, error) {
	if inv, ok := r.s.invitations[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r fakeInvitationRepo) Accept(_ context.Context, invitationID string, p *domain.Participant) error {
	inv, ok := r.s.invitations[invitationID]
	if !ok {
		return domain.ErrNotFound
	}
	if inv.AcceptedAt != nil {
		return domain.ErrAlreadyAccepted
	}
	if !p.JoinedAt.Before(inv.ExpiresAt) {
		return domain.ErrInvitationExpired
	}
	for _, existing := range r.s.tripParticipants(p.TripID) {
		if existing.UserID == p.UserID {
			return domain.ErrAlreadyMember
		}
	}
	at := p.JoinedAt
	inv.AcceptedAt = &at
	p.ID = r.s.id("part")
	cp := *p
	r.s.participants[p.ID] = &cp
	return nil
}

func (r fakeInvitationRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.s.invitations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.invitations, id)
	return nil
}

func (r fakeInvitationRepo) ListUnacceptedByTripID(_ context.Context, tripID, search string, _ domain.PaginationParams) ([]*domain.Invitation, int, error) {
	var out []*domain.Invitation
	for _, inv := range r.s.invitations {
		if inv.TripID == tripID && inv.AcceptedAt == nil && strings.Contains(inv.Email, search) {
			out = append(out, inv)
		}
	}
	return out, len(out), nil
}

func (r fakeInvitationRepo) ListPendingByEmail(_ context.Context, email string) ([]*domain.Invitation, error) {
	var out []*domain.Invitation
	for _, inv := range r.s.invitations {
		if strings.EqualFold(inv.Email, email) && inv.IsPending(r.s.now) {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakeUserRepo struct{ s *fakeStore }

func (r fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = r.s.id("user")
	r.s.users[u.ID] = u
	return nil
}

func (r fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.s.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	copied := *u
	r.s.users[u.ID] = &copied
	return nil
}

type fakeNotificationRepo struct{ s *fakeStore }

func (r fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if r.s.notificationErr != nil {
		return r.s.notificationErr
	}
	n.ID = r.s.id("notif")
	n.CreatedAt = r.s.now
	r.s.notifications[n.ID] = n
	return nil
}

func (r fakeNotificationRepo) ListByUserID(_ context.Context, userID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	var out []*domain.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	total := len(out)
	if params.Limit() < len(out) {
		out = out[:params.Limit()]
	}
	return out, total, nil
}

func (r fakeNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return domain.ErrNotFound
	}
	n.Read = true
	return nil
}

type fakeExpenseRepo struct{ s *fakeStore }

func (r fakeExpenseRepo) Create(_ context.Context, e *domain.Expense) error {
	if r.s.createExpenseErr != nil {
		return r.s.createExpenseErr
	}
	e.ID = r.s.id("exp")
	e.CreatedAt, e.UpdatedAt = r.s.now, r.s.now
	for _, sp := range e.Splits {
		sp.ID = r.s.id("split")
		sp.ExpenseID = e.ID
		sp.CreatedAt = r.s.now
	}
	r.s.expenses[e.ID] = e
	return nil
}

func (r fakeExpenseRepo) GetByID(_ context.Context, id string) (*domain.Expense, error) {
	if e, ok := r.s.expenses[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (r fakeExpenseRepo) ListByTripID(_ context.Context, tripID string) ([]*domain.Expense, error) {
	var out []*domain.Expense
	for _, e := range r.s.expenses {
		if e.TripID == tripID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Expense) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (r fakeExpenseRepo) Update(_ context.Context, id string, u domain.ExpenseUpdate) (*domain.Expense, error) {
	e, ok := r.s.expenses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Amount != nil {
		e.Amount = *u.Amount
	}
	if u.Currency != nil {
		e.Currency = *u.Currency
	}
	if u.Category != nil {
		e.Category = *u.Category
	}
	if u.PaidBy != nil {
		e.PaidBy = *u.PaidBy
	}
	if u.Date != nil {
		e.Date = *u.Date
	}
	return e, nil
}

func (r fakeExpenseRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.s.expenses[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.expenses, id)
	return nil
}

func (r fakeExpenseRepo) split(id string) (*domain.ExpenseSplit, bool) {
	for _, e := range r.s.expenses {
		for _, sp := range e.Splits {
			if sp.ID == id {
				return sp, true
			}
		}
	}
	return nil, false
}

func (r fakeExpenseRepo) GetSplitByID(_ context.Context, id string) (*domain.ExpenseSplit, error) {
	if sp, ok := r.split(id); ok {
		return sp, nil
	}
	return nil, domain.ErrNotFound
}

func (r fakeExpenseRepo) SetSplitPaid(_ context.Context, id string, paid bool) (*domain.ExpenseSplit, error) {
	sp, ok := r.split(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	sp.Paid = paid
	return sp, nil
}

func (r fakeExpenseRepo) ListOutstandingSplits(_ context.Context) ([]*domain.OutstandingSplit, error) {
	var out []*domain.OutstandingSplit
	ids := make([]string, 0, len(r.s.expenses))
	for id := range r.s.expenses {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		e := r.s.expenses[id]
		trip := r.s.trips[e.TripID]
		if trip == nil || trip.Status == domain.TripStatusCancelled {
			continue
		}
		for _, sp := range e.Splits {
			if sp.Paid || sp.UserID == e.PaidBy {
				continue
			}
			debtor := r.s.users[sp.UserID]
			out = append(out, &domain.OutstandingSplit{
				SplitID: sp.ID, Amount: sp.Amount, DebtorID: sp.UserID, DebtorEmail: debtor.Email, DebtorName: debtor.FullName,
				PayerID: e.PaidBy, ExpenseID: e.ID, ExpenseTitle: e.Title, Currency: e.Currency, TripID: trip.ID, TripTitle: trip.Title,
			})
		}
	}
	return out, nil
}

type fakeClock struct {
	now time.Time
	err error
}

func (c *fakeClock) Now(context.Context) (time.Time, error) {
	return c.now, c.err
}

// fakeEmailService records every email instead of sending it.
type fakeEmailService struct {
	welcome     []*domain.WelcomeMessageEmailData
	invitations []*domain.TripInvitationEmailData
	reminders   []*domain.SettlementReminderEmailData
	err         error
	failFor     string
	// sendDelay makes each reminder take this long unless its context ends first.
	sendDelay time.Duration
}

func (f *fakeEmailService) fail(email string) error {
	if f.err != nil {
		return f.err
	}
	if f.failFor != "" && f.failFor == email {
		return errors.New("mailbox unavailable")
	}
	return nil
}

func (f *fakeEmailService) SendWelcomeMessage(_ context.Context, data *domain.WelcomeMessageEmailData) error {
	if err := f.fail(data.Email); err != nil {
		return err
	}
	f.welcome = append(f.welcome, data)
	return nil
}

func (f *fakeEmailService) SendTripInvitation(_ context.Context, data *domain.TripInvitationEmailData) error {
	if err := f.fail(data.Email); err != nil {
		return err
	}
	f.invitations = append(f.invitations, data)
	return nil
}

func (f *fakeEmailService) SendSettlementReminder(ctx context.Context, data *domain.SettlementReminderEmailData) error {
	if f.sendDelay > 0 {
		select {
		case <-time.After(f.sendDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := f.fail(data.Email); err != nil {
		return err
	}
	f.reminders = append(f.reminders, data)
	return nil
}

// fakeStatsRepo answers from fixed values; a non-nil error field fails that query.
type fakeStatsRepo struct {
	owned, joined        []string
	ownedErr, joinedErr  error
	active, participants int
	activeErr, countErr  error
	sum                  decimal.Decimal
	sumErr               error
	lastIDs              []string
}

func (f *fakeStatsRepo) ListOwnedTripIDs(context.Context, string) ([]string, error) {
	return f.owned, f.ownedErr
}

func (f *fakeStatsRepo) ListParticipantTripIDs(context.Context, string) ([]string, error) {
	return f.joined, f.joinedErr
}

func (f *fakeStatsRepo) CountTripsByStatus(_ context.Context, ids []string, _ domain.TripStatus) (int, error) {
	f.lastIDs = ids
	return f.active, f.activeErr
}

func (f *fakeStatsRepo) CountParticipants(_ context.Context, ids []string) (int, error) {
	f.lastIDs = ids
	return f.participants, f.countErr
}

func (f *fakeStatsRepo) SumExpenses(_ context.Context, ids []string) (decimal.Decimal, error) {
	f.lastIDs = ids
	return f.sum, f.sumErr
}
