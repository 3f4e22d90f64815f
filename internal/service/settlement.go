package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/alisoleah/qr-ordering-api/internal/database"
	"github.com/alisoleah/qr-ordering-api/internal/payment"
)

// Errors returned by the settlement engine.
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderAlreadyPaid = errors.New("order is already paid")
	ErrEmptyItemSet     = errors.New("item_ids are required")
	ErrItemsNotFound    = errors.New("one or more items not found")
	ErrCrossTableItems  = errors.New("items belong to more than one table")
	ErrItemsAlreadyPaid = errors.New("all requested items are already paid")
	ErrProviderFailure  = errors.New("payment provider failure")
)

// SettlementStore defines the DB methods the settlement engine needs.
// Satisfied by *database.Queries (and its WithTx variant).
type SettlementStore interface {
	GetDefaultRestaurant(ctx context.Context) (database.Restaurant, error)
	GetTableByNumber(ctx context.Context, arg database.GetTableByNumberParams) (database.Table, error)
	GetTableForUpdate(ctx context.Context, id uuid.UUID) (database.Table, error)
	UpdateTableStatus(ctx context.Context, arg database.UpdateTableStatusParams) (database.Table, error)
	ListUnpaidSessionItems(ctx context.Context, tableID uuid.UUID) ([]database.SessionItemRow, error)
	ListPaidSessionItems(ctx context.Context, tableID uuid.UUID) ([]database.SessionItemRow, error)
	ListOrderItemsForSettlement(ctx context.Context, ids []uuid.UUID) ([]database.SettlementItemRow, error)
	MarkOrderItemsPaid(ctx context.Context, arg database.MarkOrderItemsPaidParams) ([]uuid.UUID, error)
	MarkOrderItemsPaidByOrder(ctx context.Context, arg database.MarkOrderItemsPaidByOrderParams) (int64, error)
	CountUnpaidItemsByTable(ctx context.Context, tableID uuid.UUID) (int64, error)
	CompleteTableOrders(ctx context.Context, tableID uuid.UUID) (int64, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ConfirmOrderPayment(ctx context.Context, arg database.ConfirmOrderPaymentParams) (database.Order, error)
	AddPersonTotal(ctx context.Context, arg database.AddPersonTotalParams) error
	CreatePaymentTransaction(ctx context.Context, arg database.CreatePaymentTransactionParams) (database.PaymentTransaction, error)
	CreatePaymentTransactionItem(ctx context.Context, arg database.CreatePaymentTransactionItemParams) error
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ResetOrderItemsByTable(ctx context.Context, tableID uuid.UUID) (int64, error)
	ResetOrdersByTable(ctx context.Context, tableID uuid.UUID) (int64, error)
	DeleteOrderItemsByTable(ctx context.Context, tableID uuid.UUID) (int64, error)
	DeleteOrdersByTable(ctx context.Context, tableID uuid.UUID) (int64, error)
}

// NewSettlementStore creates a SettlementStore from a DBTX (pool or tx).
type NewSettlementStore func(db database.DBTX) SettlementStore

// AggregatedItem is a menu-item-level view of a table's session items:
// identical dishes collapse into one line with the underlying order_item ids
// retained for itemized payment.
type AggregatedItem struct {
	MenuItemID uuid.UUID
	Name       string
	ImageURL   string
	Quantity   int32
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	ItemIDs    []uuid.UUID
}

// SettlementService settles bills: reading what a table owes and has paid,
// and moving money through a payment provider atomically.
type SettlementService struct {
	store     SettlementStore
	pool      TxBeginner
	newStore  NewSettlementStore
	providers *payment.Registry
	now       func() time.Time
}

func NewSettlementService(store SettlementStore, pool TxBeginner, newStore NewSettlementStore, providers *payment.Registry) *SettlementService {
	return &SettlementService{
		store:     store,
		pool:      pool,
		newStore:  newStore,
		providers: providers,
		now:       time.Now,
	}
}

// resolveTable looks up a table by its public number under the default
// restaurant.
func resolveTable(ctx context.Context, store SettlementStore, tableNumber string) (database.Table, error) {
	restaurant, err := store.GetDefaultRestaurant(ctx)
	if err != nil {
		return database.Table{}, fmt.Errorf("get restaurant: %w", err)
	}
	table, err := store.GetTableByNumber(ctx, database.GetTableByNumberParams{
		RestaurantID: restaurant.ID,
		TableNumber:  tableNumber,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Table{}, ErrTableNotFound
		}
		return database.Table{}, fmt.Errorf("get table: %w", err)
	}
	return table, nil
}

// UnpaidItems returns the table's outstanding bill, aggregated by menu item.
func (s *SettlementService) UnpaidItems(ctx context.Context, tableNumber string) ([]AggregatedItem, error) {
	table, err := resolveTable(ctx, s.store, tableNumber)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListUnpaidSessionItems(ctx, table.ID)
	if err != nil {
		return nil, fmt.Errorf("list unpaid items: %w", err)
	}
	return aggregateItems(rows), nil
}

// PaidItems returns what the table's current session has already paid,
// aggregated by menu item, with the paid subtotal.
func (s *SettlementService) PaidItems(ctx context.Context, tableNumber string) ([]AggregatedItem, decimal.Decimal, error) {
	table, err := resolveTable(ctx, s.store, tableNumber)
	if err != nil {
		return nil, decimal.Zero, err
	}
	rows, err := s.store.ListPaidSessionItems(ctx, table.ID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("list paid items: %w", err)
	}
	items := aggregateItems(rows)
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.TotalPrice)
	}
	return items, subtotal, nil
}

// aggregateItems collapses row-level order items into menu-item lines,
// preserving first-seen order.
func aggregateItems(rows []database.SessionItemRow) []AggregatedItem {
	index := make(map[uuid.UUID]int)
	var items []AggregatedItem
	for _, r := range rows {
		i, ok := index[r.MenuItemID]
		if !ok {
			i = len(items)
			index[r.MenuItemID] = i
			items = append(items, AggregatedItem{
				MenuItemID: r.MenuItemID,
				Name:       r.Name,
				ImageURL:   r.ImageUrl.String,
				UnitPrice:  numericToDecimal(r.UnitPrice),
			})
		}
		items[i].Quantity += r.Quantity
		items[i].TotalPrice = items[i].TotalPrice.Add(numericToDecimal(r.TotalPrice))
		items[i].ItemIDs = append(items[i].ItemIDs, r.OrderItemID)
	}
	return items
}

// SettleOrderRequest pays one order in full.
type SettleOrderRequest struct {
	OrderID       uuid.UUID
	Tip           decimal.Decimal
	PaymentMethod string
	CustomerEmail string
	Provider      string
}

// SettleItemsRequest pays an arbitrary subset of a table's unpaid items.
type SettleItemsRequest struct {
	ItemIDs       []uuid.UUID
	Tip           decimal.Decimal
	PaymentMethod string
	CustomerEmail string
	Provider      string
}

// SettlementResult reports a completed payment.
type SettlementResult struct {
	Transaction database.PaymentTransaction
	Order       *database.Order // set on the full-order path
}

func newReceiptNumber() string {
	return "RCP-" + strings.ToUpper(uuid.NewString()[:8])
}

// charge runs the provider charge. Provider failures surface as
// ErrProviderFailure so handlers can map them to an upstream error; nothing
// is written to the database before the charge succeeds.
func (s *SettlementService) charge(ctx context.Context, req payment.ChargeRequest, providerName string) (payment.Provider, payment.ChargeResult, error) {
	provider, err := s.providers.Get(providerName)
	if err != nil {
		return nil, payment.ChargeResult{}, err
	}
	result, err := provider.Charge(ctx, req)
	if err != nil {
		return nil, payment.ChargeResult{}, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	return provider, result, nil
}

// SettleOrder charges an order's total (plus extra tip) through the provider,
// then atomically marks the whole order and its items paid and re-derives the
// table status.
func (s *SettlementService) SettleOrder(ctx context.Context, req SettleOrderRequest) (*SettlementResult, error) {
	if req.Tip.IsNegative() {
		return nil, ErrInvalidTip
	}

	order, err := s.store.GetOrder(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.PaymentStatus == database.PaymentStatusCOMPLETED {
		return nil, ErrOrderAlreadyPaid
	}

	restaurant, err := s.store.GetDefaultRestaurant(ctx)
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}

	total := numericToDecimal(order.Total).Add(req.Tip)
	tip := numericToDecimal(order.Tip).Add(req.Tip)

	provider, chargeResult, err := s.charge(ctx, payment.ChargeRequest{
		Amount:        total,
		Currency:      restaurant.Currency,
		PaymentMethod: req.PaymentMethod,
		CustomerEmail: req.CustomerEmail,
		Description:   "order " + order.OrderNumber,
	}, req.Provider)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	txStore := s.newStore(tx)

	// Lock the table row so the unpaid count below runs under the same lock
	// as the marking, serializing concurrent settlements on the table.
	if _, err := txStore.GetTableForUpdate(ctx, order.TableID); err != nil {
		return nil, fmt.Errorf("lock table: %w", err)
	}

	if _, err := txStore.MarkOrderItemsPaidByOrder(ctx, database.MarkOrderItemsPaidByOrderParams{
		OrderID: order.ID,
		PaidAt:  s.now(),
	}); err != nil {
		return nil, fmt.Errorf("mark order items paid: %w", err)
	}

	paidOrder, err := txStore.ConfirmOrderPayment(ctx, database.ConfirmOrderPaymentParams{
		ID:            order.ID,
		PaymentMethod: pgtype.Text{String: req.PaymentMethod, Valid: true},
		PaymentRef:    pgtype.Text{String: chargeResult.Reference, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("confirm order payment: %w", err)
	}

	txn, err := txStore.CreatePaymentTransaction(ctx, database.CreatePaymentTransactionParams{
		RestaurantID:  restaurant.ID,
		TableID:       order.TableID,
		OrderID:       pgtype.UUID{Bytes: order.ID, Valid: true},
		ReceiptNumber: newReceiptNumber(),
		PaymentMethod: req.PaymentMethod,
		Provider:      provider.Name(),
		ProviderRef:   pgtype.Text{String: chargeResult.Reference, Valid: true},
		CustomerEmail: optionalText(req.CustomerEmail),
		Subtotal:      order.Subtotal,
		Tax:           order.Tax,
		ServiceCharge: order.ServiceCharge,
		Tip:           decimalToNumeric(tip),
		Total:         decimalToNumeric(total),
	})
	if err != nil {
		return nil, fmt.Errorf("create payment transaction: %w", err)
	}

	items, err := txStore.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	for _, item := range items {
		if err := txStore.CreatePaymentTransactionItem(ctx, database.CreatePaymentTransactionItemParams{
			TransactionID: txn.ID,
			OrderItemID:   item.ID,
		}); err != nil {
			return nil, fmt.Errorf("create transaction item: %w", err)
		}
	}

	// A split person's running total reflects what they have settled.
	if order.PersonID.Valid {
		if err := txStore.AddPersonTotal(ctx, database.AddPersonTotalParams{
			ID:     order.PersonID.Bytes,
			Amount: decimalToNumeric(total),
		}); err != nil {
			return nil, fmt.Errorf("add person total: %w", err)
		}
	}

	if err := rederiveTableStatus(ctx, txStore, order.TableID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &SettlementResult{Transaction: txn, Order: &paidOrder}, nil
}

// SettleItems charges an arbitrary unpaid subset of a table's items, then
// atomically marks exactly that subset paid and re-derives the table status.
func (s *SettlementService) SettleItems(ctx context.Context, req SettleItemsRequest) (*SettlementResult, error) {
	if req.Tip.IsNegative() {
		return nil, ErrInvalidTip
	}
	if len(req.ItemIDs) == 0 {
		return nil, ErrEmptyItemSet
	}

	rows, err := s.store.ListOrderItemsForSettlement(ctx, req.ItemIDs)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if len(rows) != len(uniqueIDs(req.ItemIDs)) {
		return nil, ErrItemsNotFound
	}

	tableID := rows[0].TableID
	subtotal := decimal.Zero
	var unpaidIDs []uuid.UUID
	for _, r := range rows {
		if r.TableID != tableID {
			return nil, ErrCrossTableItems
		}
		if !r.IsPaid {
			unpaidIDs = append(unpaidIDs, r.ID)
			subtotal = subtotal.Add(numericToDecimal(r.TotalPrice))
		}
	}
	if len(unpaidIDs) == 0 {
		return nil, ErrItemsAlreadyPaid
	}

	restaurant, err := s.store.GetDefaultRestaurant(ctx)
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}

	tax := subtotal.Mul(numericToDecimal(restaurant.TaxRate)).Round(2)
	serviceCharge := subtotal.Mul(numericToDecimal(restaurant.ServiceChargeRate)).Round(2)
	total := subtotal.Add(tax).Add(serviceCharge).Add(req.Tip)

	provider, chargeResult, err := s.charge(ctx, payment.ChargeRequest{
		Amount:        total,
		Currency:      restaurant.Currency,
		PaymentMethod: req.PaymentMethod,
		CustomerEmail: req.CustomerEmail,
		Description:   fmt.Sprintf("%d items", len(unpaidIDs)),
	}, req.Provider)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	txStore := s.newStore(tx)

	if _, err := txStore.GetTableForUpdate(ctx, tableID); err != nil {
		return nil, fmt.Errorf("lock table: %w", err)
	}

	// Idempotent mark: only still-unpaid rows transition. A concurrent
	// settlement that beat us to every row leaves nothing to pay for.
	markedIDs, err := txStore.MarkOrderItemsPaid(ctx, database.MarkOrderItemsPaidParams{
		IDs:    unpaidIDs,
		PaidAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("mark items paid: %w", err)
	}
	if len(markedIDs) == 0 {
		return nil, ErrItemsAlreadyPaid
	}

	txn, err := txStore.CreatePaymentTransaction(ctx, database.CreatePaymentTransactionParams{
		RestaurantID:  restaurant.ID,
		TableID:       tableID,
		ReceiptNumber: newReceiptNumber(),
		PaymentMethod: req.PaymentMethod,
		Provider:      provider.Name(),
		ProviderRef:   pgtype.Text{String: chargeResult.Reference, Valid: true},
		CustomerEmail: optionalText(req.CustomerEmail),
		Subtotal:      decimalToNumeric(subtotal),
		Tax:           decimalToNumeric(tax),
		ServiceCharge: decimalToNumeric(serviceCharge),
		Tip:           decimalToNumeric(req.Tip),
		Total:         decimalToNumeric(total),
	})
	if err != nil {
		return nil, fmt.Errorf("create payment transaction: %w", err)
	}

	for _, id := range markedIDs {
		if err := txStore.CreatePaymentTransactionItem(ctx, database.CreatePaymentTransactionItemParams{
			TransactionID: txn.ID,
			OrderItemID:   id,
		}); err != nil {
			return nil, fmt.Errorf("create transaction item: %w", err)
		}
	}

	if err := rederiveTableStatus(ctx, txStore, tableID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &SettlementResult{Transaction: txn}, nil
}

// rederiveTableStatus recomputes the table's occupancy from its unpaid item
// count. Zero unpaid items left means the session is over: every outstanding
// order completes and the table frees up. Must run inside the settlement
// transaction, after the table row lock.
func rederiveTableStatus(ctx context.Context, store SettlementStore, tableID uuid.UUID) error {
	unpaid, err := store.CountUnpaidItemsByTable(ctx, tableID)
	if err != nil {
		return fmt.Errorf("count unpaid items: %w", err)
	}

	status := database.TableStatusOCCUPIED
	if unpaid == 0 {
		if _, err := store.CompleteTableOrders(ctx, tableID); err != nil {
			return fmt.Errorf("complete table orders: %w", err)
		}
		status = database.TableStatusAVAILABLE
	}

	if _, err := store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
		ID:     tableID,
		Status: status,
	}); err != nil {
		return fmt.Errorf("update table status: %w", err)
	}
	return nil
}

// ClearTableResult reports what a clear operation removed.
type ClearTableResult struct {
	DeletedItems  int64
	DeletedOrders int64
}

// ClearTable wipes every order (and item) at a table and frees it.
func (s *SettlementService) ClearTable(ctx context.Context, tableNumber string) (*ClearTableResult, error) {
	table, err := resolveTable(ctx, s.store, tableNumber)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	txStore := s.newStore(tx)

	if _, err := txStore.GetTableForUpdate(ctx, table.ID); err != nil {
		return nil, fmt.Errorf("lock table: %w", err)
	}

	deletedItems, err := txStore.DeleteOrderItemsByTable(ctx, table.ID)
	if err != nil {
		return nil, fmt.Errorf("delete order items: %w", err)
	}
	deletedOrders, err := txStore.DeleteOrdersByTable(ctx, table.ID)
	if err != nil {
		return nil, fmt.Errorf("delete orders: %w", err)
	}

	if _, err := txStore.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
		ID:     table.ID,
		Status: database.TableStatusAVAILABLE,
	}); err != nil {
		return nil, fmt.Errorf("update table status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &ClearTableResult{DeletedItems: deletedItems, DeletedOrders: deletedOrders}, nil
}

// ResetTable returns every item at a table to unpaid and the orders to
// PENDING, re-occupying the table. A development and recovery tool.
func (s *SettlementService) ResetTable(ctx context.Context, tableNumber string) (int64, error) {
	table, err := resolveTable(ctx, s.store, tableNumber)
	if err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	txStore := s.newStore(tx)

	if _, err := txStore.GetTableForUpdate(ctx, table.ID); err != nil {
		return 0, fmt.Errorf("lock table: %w", err)
	}

	count, err := txStore.ResetOrderItemsByTable(ctx, table.ID)
	if err != nil {
		return 0, fmt.Errorf("reset order items: %w", err)
	}
	if _, err := txStore.ResetOrdersByTable(ctx, table.ID); err != nil {
		return 0, fmt.Errorf("reset orders: %w", err)
	}

	if _, err := txStore.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
		ID:     table.ID,
		Status: database.TableStatusOCCUPIED,
	}); err != nil {
		return 0, fmt.Errorf("update table status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return count, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	var out []uuid.UUID
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
