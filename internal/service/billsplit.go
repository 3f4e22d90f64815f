package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alisoleah/qr-ordering-api/internal/database"
)

// Errors returned by the bill-split session manager.
var (
	ErrInvalidPeopleCount = errors.New("total_people must be >= 1")
	ErrShrinkBlocked      = errors.New("cannot shrink: persons above the new count have completed or ordered")
)

// QRRenderer renders per-person QR data URIs. Satisfied by *qr.Generator.
type QRRenderer interface {
	PersonDataURI(sessionID string, personNumber int32) (string, error)
}

// BillSplitStore defines the DB methods the session manager needs.
// Satisfied by *database.Queries (and its WithTx variant).
type BillSplitStore interface {
	GetDefaultRestaurant(ctx context.Context) (database.Restaurant, error)
	GetTable(ctx context.Context, id uuid.UUID) (database.Table, error)
	DeactivateBillSplits(ctx context.Context, tableID uuid.UUID) (int64, error)
	CreateBillSplit(ctx context.Context, arg database.CreateBillSplitParams) (database.BillSplit, error)
	GetBillSplitBySession(ctx context.Context, sessionID string) (database.BillSplit, error)
	GetBillSplitForUpdate(ctx context.Context, sessionID string) (database.BillSplit, error)
	UpdateBillSplitTotalPeople(ctx context.Context, arg database.UpdateBillSplitTotalPeopleParams) (database.BillSplit, error)
	CreatePerson(ctx context.Context, arg database.CreatePersonParams) (database.Person, error)
	ListPersonsBySplit(ctx context.Context, billSplitID uuid.UUID) ([]database.Person, error)
	GetPersonByNumber(ctx context.Context, arg database.GetPersonByNumberParams) (database.Person, error)
	ListBlockedPersonsAbove(ctx context.Context, arg database.PersonsAboveParams) ([]database.Person, error)
	DeletePersonsAbove(ctx context.Context, arg database.PersonsAboveParams) (int64, error)
	CompletePerson(ctx context.Context, id uuid.UUID) (database.Person, error)
	UpdatePersonOrdersPayment(ctx context.Context, arg database.UpdatePersonOrdersPaymentParams) (int64, error)
	ListOrdersByPerson(ctx context.Context, arg database.ListOrdersByPersonParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	MarkOrderItemsPaidByOrder(ctx context.Context, arg database.MarkOrderItemsPaidByOrderParams) (int64, error)
}

// NewBillSplitStore creates a BillSplitStore from a DBTX (pool or tx).
type NewBillSplitStore func(db database.DBTX) BillSplitStore

// SessionResult is a bill-split session with its persons.
type SessionResult struct {
	Split   database.BillSplit
	Persons []database.Person
}

// PersonOrders is one of a person's orders with its items.
type PersonOrders struct {
	Order database.Order
	Items []database.OrderItem
}

// PersonContextResult is everything a per-person QR page needs.
type PersonContextResult struct {
	Split      database.BillSplit
	Person     database.Person
	Table      database.Table
	Restaurant database.Restaurant
	Orders     []PersonOrders
}

// BillSplitService manages bill-split sessions: one active session per table,
// each with a fixed roster of numbered persons holding their own QR codes.
type BillSplitService struct {
	store    BillSplitStore
	pool     TxBeginner
	newStore NewBillSplitStore
	qr       QRRenderer
	now      func() time.Time
}

func NewBillSplitService(store BillSplitStore, pool TxBeginner, newStore NewBillSplitStore, qr QRRenderer) *BillSplitService {
	return &BillSplitService{
		store:    store,
		pool:     pool,
		newStore: newStore,
		qr:       qr,
		now:      time.Now,
	}
}

// CreateSession starts a new split on a table, retiring any previous active
// session. Persons are numbered 1..totalPeople, each with its own QR.
func (s *BillSplitService) CreateSession(ctx context.Context, tableID uuid.UUID, totalPeople int32) (*SessionResult, error) {
	if totalPeople < 1 {
		return nil, ErrInvalidPeopleCount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetTable(ctx, tableID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("get table: %w", err)
	}

	if _, err := store.DeactivateBillSplits(ctx, tableID); err != nil {
		return nil, fmt.Errorf("deactivate bill splits: %w", err)
	}

	split, err := store.CreateBillSplit(ctx, database.CreateBillSplitParams{
		TableID:     tableID,
		SessionID:   uuid.NewString(),
		TotalPeople: totalPeople,
	})
	if err != nil {
		return nil, fmt.Errorf("create bill split: %w", err)
	}

	persons, err := s.createPersons(ctx, store, split, 1, totalPeople)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &SessionResult{Split: split, Persons: persons}, nil
}

// createPersons inserts persons from..to (inclusive), rendering a QR for each.
func (s *BillSplitService) createPersons(ctx context.Context, store BillSplitStore, split database.BillSplit, from, to int32) ([]database.Person, error) {
	var persons []database.Person
	for n := from; n <= to; n++ {
		qrCode, err := s.qr.PersonDataURI(split.SessionID, n)
		if err != nil {
			return nil, fmt.Errorf("render person qr: %w", err)
		}
		p, err := store.CreatePerson(ctx, database.CreatePersonParams{
			BillSplitID:  split.ID,
			PersonNumber: n,
			QrCode:       qrCode,
		})
		if err != nil {
			return nil, fmt.Errorf("create person %d: %w", n, err)
		}
		persons = append(persons, p)
	}
	return persons, nil
}

// ResizeSession changes the active session's person count. Growing adds fresh
// persons; shrinking is refused when any person above the new count has
// completed payment or placed an order, so total_people always equals the
// person row count.
func (s *BillSplitService) ResizeSession(ctx context.Context, sessionID string, newTotal int32) (*SessionResult, error) {
	if newTotal < 1 {
		return nil, ErrInvalidPeopleCount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	split, err := store.GetBillSplitForUpdate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get bill split: %w", err)
	}
	if !split.IsActive {
		return nil, ErrSessionNotFound
	}

	switch {
	case newTotal > split.TotalPeople:
		if _, err := s.createPersons(ctx, store, split, split.TotalPeople+1, newTotal); err != nil {
			return nil, err
		}
	case newTotal < split.TotalPeople:
		blocked, err := store.ListBlockedPersonsAbove(ctx, database.PersonsAboveParams{
			BillSplitID:  split.ID,
			PersonNumber: newTotal,
		})
		if err != nil {
			return nil, fmt.Errorf("check blocked persons: %w", err)
		}
		if len(blocked) > 0 {
			return nil, ErrShrinkBlocked
		}
		if _, err := store.DeletePersonsAbove(ctx, database.PersonsAboveParams{
			BillSplitID:  split.ID,
			PersonNumber: newTotal,
		}); err != nil {
			return nil, fmt.Errorf("delete persons: %w", err)
		}
	}

	if newTotal != split.TotalPeople {
		split, err = store.UpdateBillSplitTotalPeople(ctx, database.UpdateBillSplitTotalPeopleParams{
			ID:          split.ID,
			TotalPeople: newTotal,
		})
		if err != nil {
			return nil, fmt.Errorf("update total people: %w", err)
		}
	}

	persons, err := store.ListPersonsBySplit(ctx, split.ID)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &SessionResult{Split: split, Persons: persons}, nil
}

// CompletePerson marks a person done and settles every order they placed in
// the session. Safe to call twice: all writes are idempotent in effect.
// Other persons and the table status are untouched.
func (s *BillSplitService) CompletePerson(ctx context.Context, sessionID string, personNumber int32, method, ref string) (database.Person, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Person{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	split, err := store.GetBillSplitForUpdate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Person{}, ErrSessionNotFound
		}
		return database.Person{}, fmt.Errorf("get bill split: %w", err)
	}

	person, err := store.GetPersonByNumber(ctx, database.GetPersonByNumberParams{
		BillSplitID:  split.ID,
		PersonNumber: personNumber,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Person{}, ErrPersonNotFound
		}
		return database.Person{}, fmt.Errorf("get person: %w", err)
	}

	completed, err := store.CompletePerson(ctx, person.ID)
	if err != nil {
		return database.Person{}, fmt.Errorf("complete person: %w", err)
	}

	if _, err := store.UpdatePersonOrdersPayment(ctx, database.UpdatePersonOrdersPaymentParams{
		BillSplitID:   split.ID,
		PersonID:      person.ID,
		PaymentMethod: optionalText(method),
		PaymentRef:    optionalText(ref),
	}); err != nil {
		return database.Person{}, fmt.Errorf("settle person orders: %w", err)
	}

	orders, err := store.ListOrdersByPerson(ctx, database.ListOrdersByPersonParams{
		BillSplitID: split.ID,
		PersonID:    person.ID,
	})
	if err != nil {
		return database.Person{}, fmt.Errorf("list person orders: %w", err)
	}
	for _, o := range orders {
		if _, err := store.MarkOrderItemsPaidByOrder(ctx, database.MarkOrderItemsPaidByOrderParams{
			OrderID: o.ID,
			PaidAt:  s.now(),
		}); err != nil {
			return database.Person{}, fmt.Errorf("mark order items paid: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Person{}, fmt.Errorf("commit tx: %w", err)
	}

	return completed, nil
}

// PersonContext loads a person's full view: session, table, restaurant, and
// their orders with items. Works on inactive sessions too, so a stale QR page
// can still show its receipt.
func (s *BillSplitService) PersonContext(ctx context.Context, sessionID string, personNumber int32) (*PersonContextResult, error) {
	split, err := s.store.GetBillSplitBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get bill split: %w", err)
	}

	person, err := s.store.GetPersonByNumber(ctx, database.GetPersonByNumberParams{
		BillSplitID:  split.ID,
		PersonNumber: personNumber,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("get person: %w", err)
	}

	table, err := s.store.GetTable(ctx, split.TableID)
	if err != nil {
		return nil, fmt.Errorf("get table: %w", err)
	}

	restaurant, err := s.store.GetDefaultRestaurant(ctx)
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}

	orders, err := s.store.ListOrdersByPerson(ctx, database.ListOrdersByPersonParams{
		BillSplitID: split.ID,
		PersonID:    person.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("list person orders: %w", err)
	}

	var personOrders []PersonOrders
	for _, o := range orders {
		items, err := s.store.ListOrderItemsByOrder(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("list order items: %w", err)
		}
		personOrders = append(personOrders, PersonOrders{Order: o, Items: items})
	}

	return &PersonContextResult{
		Split:      split,
		Person:     person,
		Table:      table,
		Restaurant: restaurant,
		Orders:     personOrders,
	}, nil
}
