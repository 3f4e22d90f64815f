package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, restaurant_id, table_id, order_number, bill_split_id, person_id,
	subtotal, tax, service_charge, tip, total, status, payment_status,
	payment_method, payment_ref, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.RestaurantID,
		&o.TableID,
		&o.OrderNumber,
		&o.BillSplitID,
		&o.PersonID,
		&o.Subtotal,
		&o.Tax,
		&o.ServiceCharge,
		&o.Tip,
		&o.Total,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.PaymentRef,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

func (q *Queries) scanOrders(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}) ([]Order, error) {
	defer rows.Close()
	var items []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

// GetNextOrderNumber returns the next numeric suffix for order numbers at a
// restaurant. Callers must handle the 23505 race on the generated number.
func (q *Queries) GetNextOrderNumber(ctx context.Context, restaurantID uuid.UUID) (int32, error) {
	var n int32
	err := q.db.QueryRow(ctx, `
		SELECT COALESCE(MAX(CAST(SUBSTRING(order_number FROM 5) AS INT)), 0) + 1
		FROM orders
		WHERE restaurant_id = $1`, restaurantID).Scan(&n)
	return n, err
}

type CreateOrderParams struct {
	RestaurantID  uuid.UUID
	TableID       uuid.UUID
	OrderNumber   string
	BillSplitID   pgtype.UUID
	PersonID      pgtype.UUID
	Subtotal      pgtype.Numeric
	Tax           pgtype.Numeric
	ServiceCharge pgtype.Numeric
	Tip           pgtype.Numeric
	Total         pgtype.Numeric
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO orders (restaurant_id, table_id, order_number, bill_split_id, person_id,
			subtotal, tax, service_charge, tip, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+orderColumns,
		arg.RestaurantID, arg.TableID, arg.OrderNumber, arg.BillSplitID, arg.PersonID,
		arg.Subtotal, arg.Tax, arg.ServiceCharge, arg.Tip, arg.Total)
	return scanOrder(row)
}

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

type ListOrdersParams struct {
	RestaurantID uuid.UUID
	Status       pgtype.Text
	TableID      pgtype.UUID
	Limit        int32
	Offset       int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE restaurant_id = $1
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::uuid IS NULL OR table_id = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`,
		arg.RestaurantID, arg.Status, arg.TableID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return q.scanOrders(rows)
}

type ListOrdersByPersonParams struct {
	BillSplitID uuid.UUID
	PersonID    uuid.UUID
}

func (q *Queries) ListOrdersByPerson(ctx context.Context, arg ListOrdersByPersonParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE bill_split_id = $1 AND person_id = $2
		ORDER BY created_at`, arg.BillSplitID, arg.PersonID)
	if err != nil {
		return nil, err
	}
	return q.scanOrders(rows)
}

type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	Status     OrderStatus
	FromStatus OrderStatus
}

// UpdateOrderStatus performs a compare-and-set on the kitchen status so a
// concurrent transition surfaces as ErrNoRows instead of a silent overwrite.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING `+orderColumns,
		arg.ID, arg.Status, arg.FromStatus)
	return scanOrder(row)
}

type ConfirmOrderPaymentParams struct {
	ID            uuid.UUID
	PaymentMethod pgtype.Text
	PaymentRef    pgtype.Text
}

// ConfirmOrderPayment marks a single order fully paid.
func (q *Queries) ConfirmOrderPayment(ctx context.Context, arg ConfirmOrderPaymentParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders
		SET payment_status = 'COMPLETED',
		    status = 'CONFIRMED',
		    payment_method = COALESCE($2, payment_method),
		    payment_ref = COALESCE($3, payment_ref),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		arg.ID, arg.PaymentMethod, arg.PaymentRef)
	return scanOrder(row)
}

// CompleteTableOrders flips every not-yet-completed order at a table to paid.
// Used by table status re-derivation once zero unpaid items remain.
func (q *Queries) CompleteTableOrders(ctx context.Context, tableID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE orders
		SET payment_status = 'COMPLETED', status = 'CONFIRMED', updated_at = now()
		WHERE table_id = $1 AND payment_status <> 'COMPLETED'`, tableID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type UpdatePersonOrdersPaymentParams struct {
	BillSplitID   uuid.UUID
	PersonID      uuid.UUID
	PaymentMethod pgtype.Text
	PaymentRef    pgtype.Text
}

// UpdatePersonOrdersPayment settles every order a split person placed.
func (q *Queries) UpdatePersonOrdersPayment(ctx context.Context, arg UpdatePersonOrdersPaymentParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE orders
		SET payment_status = 'COMPLETED', status = 'CONFIRMED',
		    payment_method = $3, payment_ref = $4, updated_at = now()
		WHERE bill_split_id = $1 AND person_id = $2`,
		arg.BillSplitID, arg.PersonID, arg.PaymentMethod, arg.PaymentRef)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) ResetOrdersByTable(ctx context.Context, tableID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE orders
		SET payment_status = 'PENDING', status = 'PENDING',
		    payment_method = NULL, payment_ref = NULL, updated_at = now()
		WHERE table_id = $1`, tableID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) DeleteOrdersByTable(ctx context.Context, tableID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM orders WHERE table_id = $1`, tableID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
