package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/alisoleah/qr-ordering-api/internal/database"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems        = errors.New("items are required")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")
	ErrInvalidMenuItemID = errors.New("invalid menu_item_id")
	ErrMenuItemNotFound  = errors.New("menu item not found or unavailable")
	ErrTableNotFound     = errors.New("table not found")
	ErrInvalidTip        = errors.New("invalid tip")
	ErrSessionNotFound   = errors.New("bill split session not found")
	ErrPersonNotFound    = errors.New("person not found in session")
	ErrPersonCompleted   = errors.New("person has already completed payment")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to place orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetDefaultRestaurant(ctx context.Context) (database.Restaurant, error)
	GetTableByNumber(ctx context.Context, arg database.GetTableByNumberParams) (database.Table, error)
	GetNextOrderNumber(ctx context.Context, restaurantID uuid.UUID) (int32, error)
	GetMenuItemForOrder(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	GetBillSplitBySession(ctx context.Context, sessionID string) (database.BillSplit, error)
	GetPersonByNumber(ctx context.Context, arg database.GetPersonByNumberParams) (database.Person, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	UpdateTableStatus(ctx context.Context, arg database.UpdateTableStatusParams) (database.Table, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// PlaceOrderRequest is the validated input for placing a guest order.
type PlaceOrderRequest struct {
	TableNumber  string
	SessionID    string // optional: bill-split session
	PersonNumber int32  // required when SessionID is set
	Tip          string // optional decimal string
	Items        []PlaceOrderItem
}

// PlaceOrderItem is a single line in the order.
type PlaceOrderItem struct {
	MenuItemID string
	Quantity   int32
}

// PlaceOrderResult is the created order with its items.
type PlaceOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles guest order placement.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// PlaceOrder validates, snapshots prices, and creates an order atomically,
// flipping the table to OCCUPIED. Retries on order_number unique constraint
// violations (concurrent transactions can read the same MAX).
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
	}

	tip := decimal.Zero
	if req.Tip != "" {
		var err error
		tip, err = decimal.NewFromString(req.Tip)
		if err != nil || tip.IsNegative() {
			return nil, ErrInvalidTip
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.placeOrderTx(ctx, req, tip)
		if err == nil {
			return result, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// isOrderNumberConflict checks for a unique constraint violation on the
// generated order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_restaurant_id_order_number_key"
	}
	return false
}

func (s *OrderService) placeOrderTx(ctx context.Context, req PlaceOrderRequest, tip decimal.Decimal) (*PlaceOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	restaurant, err := store.GetDefaultRestaurant(ctx)
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}

	table, err := store.GetTableByNumber(ctx, database.GetTableByNumberParams{
		RestaurantID: restaurant.ID,
		TableNumber:  req.TableNumber,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("get table: %w", err)
	}

	// Resolve the split person when ordering inside a session.
	billSplitID := pgtype.UUID{}
	personID := pgtype.UUID{}
	if req.SessionID != "" {
		split, err := store.GetBillSplitBySession(ctx, req.SessionID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrSessionNotFound
			}
			return nil, fmt.Errorf("get bill split: %w", err)
		}
		if !split.IsActive || split.TableID != table.ID {
			return nil, ErrSessionNotFound
		}
		person, err := store.GetPersonByNumber(ctx, database.GetPersonByNumberParams{
			BillSplitID:  split.ID,
			PersonNumber: req.PersonNumber,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrPersonNotFound
			}
			return nil, fmt.Errorf("get person: %w", err)
		}
		if person.IsCompleted {
			return nil, ErrPersonCompleted
		}
		billSplitID = pgtype.UUID{Bytes: split.ID, Valid: true}
		personID = pgtype.UUID{Bytes: person.ID, Valid: true}
	}

	nextNum, err := store.GetNextOrderNumber(ctx, restaurant.ID)
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}
	orderNumber := fmt.Sprintf("TBL-%03d", nextNum)

	// Snapshot menu prices into item params.
	subtotal := decimal.Zero
	var itemParams []database.CreateOrderItemParams
	for i, item := range req.Items {
		menuItemID, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidMenuItemID)
		}
		menuItem, err := store.GetMenuItemForOrder(ctx, menuItemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrMenuItemNotFound)
			}
			return nil, fmt.Errorf("item[%d]: get menu item: %w", i, err)
		}

		unitPrice := numericToDecimal(menuItem.Price)
		totalPrice := unitPrice.Mul(decimal.NewFromInt32(item.Quantity))
		subtotal = subtotal.Add(totalPrice)

		itemParams = append(itemParams, database.CreateOrderItemParams{
			MenuItemID: menuItemID,
			Quantity:   item.Quantity,
			UnitPrice:  decimalToNumeric(unitPrice),
			TotalPrice: decimalToNumeric(totalPrice),
		})
	}

	tax := subtotal.Mul(numericToDecimal(restaurant.TaxRate)).Round(2)
	serviceCharge := subtotal.Mul(numericToDecimal(restaurant.ServiceChargeRate)).Round(2)
	total := subtotal.Add(tax).Add(serviceCharge).Add(tip)

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		RestaurantID:  restaurant.ID,
		TableID:       table.ID,
		OrderNumber:   orderNumber,
		BillSplitID:   billSplitID,
		PersonID:      personID,
		Subtotal:      decimalToNumeric(subtotal),
		Tax:           decimalToNumeric(tax),
		ServiceCharge: decimalToNumeric(serviceCharge),
		Tip:           decimalToNumeric(tip),
		Total:         decimalToNumeric(total),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var items []database.OrderItem
	for _, p := range itemParams {
		p.OrderID = order.ID
		item, err := store.CreateOrderItem(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	// A placed order means the table is in use.
	if table.Status != database.TableStatusOCCUPIED {
		if _, err := store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
			ID:     table.ID,
			Status: database.TableStatusOCCUPIED,
		}); err != nil {
			return nil, fmt.Errorf("update table status: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &PlaceOrderResult{Order: order, Items: items}, nil
}
