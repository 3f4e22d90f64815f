package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const tableColumns = `id, restaurant_id, table_number, capacity, status, qr_code, created_at, updated_at`

func scanTable(row interface{ Scan(dest ...any) error }) (Table, error) {
	var t Table
	err := row.Scan(
		&t.ID,
		&t.RestaurantID,
		&t.TableNumber,
		&t.Capacity,
		&t.Status,
		&t.QrCode,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

type CreateTableParams struct {
	RestaurantID uuid.UUID
	TableNumber  string
	Capacity     int32
	QrCode       pgtype.Text
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO tables (restaurant_id, table_number, capacity, qr_code)
		VALUES ($1, $2, $3, $4)
		RETURNING `+tableColumns,
		arg.RestaurantID, arg.TableNumber, arg.Capacity, arg.QrCode)
	return scanTable(row)
}

func (q *Queries) GetTable(ctx context.Context, id uuid.UUID) (Table, error) {
	row := q.db.QueryRow(ctx, `SELECT `+tableColumns+` FROM tables WHERE id = $1`, id)
	return scanTable(row)
}

type GetTableByNumberParams struct {
	RestaurantID uuid.UUID
	TableNumber  string
}

func (q *Queries) GetTableByNumber(ctx context.Context, arg GetTableByNumberParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+tableColumns+` FROM tables
		WHERE restaurant_id = $1 AND table_number = $2`,
		arg.RestaurantID, arg.TableNumber)
	return scanTable(row)
}

// GetTableForUpdate locks the table row to serialize concurrent settlement
// on the same table within a transaction.
func (q *Queries) GetTableForUpdate(ctx context.Context, id uuid.UUID) (Table, error) {
	row := q.db.QueryRow(ctx, `SELECT `+tableColumns+` FROM tables WHERE id = $1 FOR UPDATE`, id)
	return scanTable(row)
}

func (q *Queries) ListTables(ctx context.Context, restaurantID uuid.UUID) ([]Table, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+tableColumns+` FROM tables
		WHERE restaurant_id = $1
		ORDER BY table_number`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

type UpdateTableParams struct {
	ID       uuid.UUID
	Capacity int32
	Status   TableStatus
}

func (q *Queries) UpdateTable(ctx context.Context, arg UpdateTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE tables SET capacity = $2, status = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+tableColumns,
		arg.ID, arg.Capacity, arg.Status)
	return scanTable(row)
}

type UpdateTableStatusParams struct {
	ID     uuid.UUID
	Status TableStatus
}

func (q *Queries) UpdateTableStatus(ctx context.Context, arg UpdateTableStatusParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE tables SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+tableColumns,
		arg.ID, arg.Status)
	return scanTable(row)
}

type UpdateTableQrCodeParams struct {
	ID     uuid.UUID
	QrCode pgtype.Text
}

func (q *Queries) UpdateTableQrCode(ctx context.Context, arg UpdateTableQrCodeParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE tables SET qr_code = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+tableColumns,
		arg.ID, arg.QrCode)
	return scanTable(row)
}

func (q *Queries) CountOrdersByTable(ctx context.Context, tableID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE table_id = $1`, tableID).Scan(&n)
	return n, err
}

func (q *Queries) DeleteTable(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM tables WHERE id = $1`, id)
	return err
}
