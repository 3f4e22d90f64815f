package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderItemColumns = `id, order_id, menu_item_id, quantity, unit_price, total_price, is_paid, paid_at, created_at`

func scanOrderItem(row interface{ Scan(dest ...any) error }) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.MenuItemID,
		&i.Quantity,
		&i.UnitPrice,
		&i.TotalPrice,
		&i.IsPaid,
		&i.PaidAt,
		&i.CreatedAt,
	)
	return i, err
}

type CreateOrderItemParams struct {
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Quantity   int32
	UnitPrice  pgtype.Numeric
	TotalPrice pgtype.Numeric
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, menu_item_id, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+orderItemColumns,
		arg.OrderID, arg.MenuItemID, arg.Quantity, arg.UnitPrice, arg.TotalPrice)
	return scanOrderItem(row)
}

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderItemColumns+` FROM order_items
		WHERE order_id = $1
		ORDER BY created_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		i, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// currentSessionOrders selects the "current session" order set for a table:
// orders that have not failed and still contain at least one unpaid item.
// Both the unpaid and the paid read paths are restricted to this set so that
// unpaid + paid always partitions the session's items.
const currentSessionOrders = `
	SELECT o.id FROM orders o
	WHERE o.table_id = $1
	  AND o.payment_status <> 'FAILED'
	  AND EXISTS (
	      SELECT 1 FROM order_items i
	      WHERE i.order_id = o.id AND i.is_paid = false
	  )`

type SessionItemRow struct {
	OrderItemID uuid.UUID
	OrderID     uuid.UUID
	MenuItemID  uuid.UUID
	Name        string
	ImageUrl    pgtype.Text
	Quantity    int32
	UnitPrice   pgtype.Numeric
	TotalPrice  pgtype.Numeric
	PaidAt      pgtype.Timestamptz
}

func scanSessionItem(row interface{ Scan(dest ...any) error }) (SessionItemRow, error) {
	var r SessionItemRow
	err := row.Scan(
		&r.OrderItemID,
		&r.OrderID,
		&r.MenuItemID,
		&r.Name,
		&r.ImageUrl,
		&r.Quantity,
		&r.UnitPrice,
		&r.TotalPrice,
		&r.PaidAt,
	)
	return r, err
}

const sessionItemColumns = `
	i.id, i.order_id, i.menu_item_id, m.name, m.image_url,
	i.quantity, i.unit_price, i.total_price, i.paid_at`

// ListUnpaidSessionItems returns every unpaid item in the table's current
// session, joined with its menu item for display fields.
func (q *Queries) ListUnpaidSessionItems(ctx context.Context, tableID uuid.UUID) ([]SessionItemRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+sessionItemColumns+`
		FROM order_items i
		JOIN menu_items m ON m.id = i.menu_item_id
		WHERE i.order_id IN (`+currentSessionOrders+`)
		  AND i.is_paid = false
		ORDER BY i.created_at`, tableID)
	if err != nil {
		return nil, err
	}
	return collectSessionItems(rows)
}

// ListPaidSessionItems mirrors ListUnpaidSessionItems for already-paid items,
// most recent payment first.
func (q *Queries) ListPaidSessionItems(ctx context.Context, tableID uuid.UUID) ([]SessionItemRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+sessionItemColumns+`
		FROM order_items i
		JOIN menu_items m ON m.id = i.menu_item_id
		WHERE i.order_id IN (`+currentSessionOrders+`)
		  AND i.is_paid = true
		ORDER BY i.paid_at DESC`, tableID)
	if err != nil {
		return nil, err
	}
	return collectSessionItems(rows)
}

func collectSessionItems(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}) ([]SessionItemRow, error) {
	defer rows.Close()
	var items []SessionItemRow
	for rows.Next() {
		r, err := scanSessionItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

type SettlementItemRow struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	TableID    uuid.UUID
	IsPaid     bool
	TotalPrice pgtype.Numeric
}

// ListOrderItemsForSettlement loads the given items with their owning table,
// so the settlement engine can reject ids that leak across tables.
func (q *Queries) ListOrderItemsForSettlement(ctx context.Context, ids []uuid.UUID) ([]SettlementItemRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT i.id, i.order_id, o.table_id, i.is_paid, i.total_price
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE i.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SettlementItemRow
	for rows.Next() {
		var r SettlementItemRow
		if err := rows.Scan(&r.ID, &r.OrderID, &r.TableID, &r.IsPaid, &r.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

type MarkOrderItemsPaidParams struct {
	IDs    []uuid.UUID
	PaidAt time.Time
}

// MarkOrderItemsPaid marks the given items paid. Already-paid items are left
// untouched; the returned ids are exactly the items transitioned by this call.
func (q *Queries) MarkOrderItemsPaid(ctx context.Context, arg MarkOrderItemsPaidParams) ([]uuid.UUID, error) {
	rows, err := q.db.Query(ctx, `
		UPDATE order_items
		SET is_paid = true, paid_at = $2
		WHERE id = ANY($1) AND is_paid = false
		RETURNING id`, arg.IDs, arg.PaidAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type MarkOrderItemsPaidByOrderParams struct {
	OrderID uuid.UUID
	PaidAt  time.Time
}

func (q *Queries) MarkOrderItemsPaidByOrder(ctx context.Context, arg MarkOrderItemsPaidByOrderParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE order_items
		SET is_paid = true, paid_at = $2
		WHERE order_id = $1 AND is_paid = false`,
		arg.OrderID, arg.PaidAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountUnpaidItemsByTable counts unpaid items across the table's non-failed
// orders. Runs inside the settlement transaction after marking, so the count
// observes the transaction's own writes.
func (q *Queries) CountUnpaidItemsByTable(ctx context.Context, tableID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE o.table_id = $1
		  AND o.payment_status <> 'FAILED'
		  AND i.is_paid = false`, tableID).Scan(&n)
	return n, err
}

func (q *Queries) ResetOrderItemsByTable(ctx context.Context, tableID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE order_items
		SET is_paid = false, paid_at = NULL
		WHERE order_id IN (SELECT id FROM orders WHERE table_id = $1)`, tableID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) DeleteOrderItemsByTable(ctx context.Context, tableID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		DELETE FROM order_items
		WHERE order_id IN (SELECT id FROM orders WHERE table_id = $1)`, tableID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
