package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const paymentTransactionColumns = `id, restaurant_id, table_id, order_id, receipt_number,
	payment_method, provider, provider_ref, customer_email,
	subtotal, tax, service_charge, tip, total, status, created_at`

func scanPaymentTransaction(row interface{ Scan(dest ...any) error }) (PaymentTransaction, error) {
	var t PaymentTransaction
	err := row.Scan(
		&t.ID,
		&t.RestaurantID,
		&t.TableID,
		&t.OrderID,
		&t.ReceiptNumber,
		&t.PaymentMethod,
		&t.Provider,
		&t.ProviderRef,
		&t.CustomerEmail,
		&t.Subtotal,
		&t.Tax,
		&t.ServiceCharge,
		&t.Tip,
		&t.Total,
		&t.Status,
		&t.CreatedAt,
	)
	return t, err
}

type CreatePaymentTransactionParams struct {
	RestaurantID  uuid.UUID
	TableID       uuid.UUID
	OrderID       pgtype.UUID
	ReceiptNumber string
	PaymentMethod string
	Provider      string
	ProviderRef   pgtype.Text
	CustomerEmail pgtype.Text
	Subtotal      pgtype.Numeric
	Tax           pgtype.Numeric
	ServiceCharge pgtype.Numeric
	Tip           pgtype.Numeric
	Total         pgtype.Numeric
}

func (q *Queries) CreatePaymentTransaction(ctx context.Context, arg CreatePaymentTransactionParams) (PaymentTransaction, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO payment_transactions (restaurant_id, table_id, order_id, receipt_number,
			payment_method, provider, provider_ref, customer_email,
			subtotal, tax, service_charge, tip, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+paymentTransactionColumns,
		arg.RestaurantID, arg.TableID, arg.OrderID, arg.ReceiptNumber,
		arg.PaymentMethod, arg.Provider, arg.ProviderRef, arg.CustomerEmail,
		arg.Subtotal, arg.Tax, arg.ServiceCharge, arg.Tip, arg.Total)
	return scanPaymentTransaction(row)
}

type CreatePaymentTransactionItemParams struct {
	TransactionID uuid.UUID
	OrderItemID   uuid.UUID
}

// CreatePaymentTransactionItem records which order item a transaction covered.
func (q *Queries) CreatePaymentTransactionItem(ctx context.Context, arg CreatePaymentTransactionItemParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO payment_transaction_items (transaction_id, order_item_id)
		VALUES ($1, $2)`, arg.TransactionID, arg.OrderItemID)
	return err
}
