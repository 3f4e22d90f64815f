package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const billSplitColumns = `id, table_id, session_id, total_people, is_active, created_at`

func scanBillSplit(row interface{ Scan(dest ...any) error }) (BillSplit, error) {
	var b BillSplit
	err := row.Scan(
		&b.ID,
		&b.TableID,
		&b.SessionID,
		&b.TotalPeople,
		&b.IsActive,
		&b.CreatedAt,
	)
	return b, err
}

type CreateBillSplitParams struct {
	TableID     uuid.UUID
	SessionID   string
	TotalPeople int32
}

func (q *Queries) CreateBillSplit(ctx context.Context, arg CreateBillSplitParams) (BillSplit, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO bill_splits (table_id, session_id, total_people)
		VALUES ($1, $2, $3)
		RETURNING `+billSplitColumns,
		arg.TableID, arg.SessionID, arg.TotalPeople)
	return scanBillSplit(row)
}

// DeactivateBillSplits retires every active split on a table. Must run before
// inserting a new split, or the one-active-per-table index rejects the insert.
func (q *Queries) DeactivateBillSplits(ctx context.Context, tableID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE bill_splits SET is_active = false
		WHERE table_id = $1 AND is_active = true`, tableID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) GetBillSplitBySession(ctx context.Context, sessionID string) (BillSplit, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+billSplitColumns+` FROM bill_splits
		WHERE session_id = $1`, sessionID)
	return scanBillSplit(row)
}

// GetBillSplitForUpdate locks the split row for the duration of a resize or
// completion transaction.
func (q *Queries) GetBillSplitForUpdate(ctx context.Context, sessionID string) (BillSplit, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+billSplitColumns+` FROM bill_splits
		WHERE session_id = $1
		FOR UPDATE`, sessionID)
	return scanBillSplit(row)
}

type UpdateBillSplitTotalPeopleParams struct {
	ID          uuid.UUID
	TotalPeople int32
}

func (q *Queries) UpdateBillSplitTotalPeople(ctx context.Context, arg UpdateBillSplitTotalPeopleParams) (BillSplit, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE bill_splits SET total_people = $2
		WHERE id = $1
		RETURNING `+billSplitColumns,
		arg.ID, arg.TotalPeople)
	return scanBillSplit(row)
}

const personColumns = `id, bill_split_id, person_number, name, qr_code, total_amount, is_completed, created_at`

func scanPerson(row interface{ Scan(dest ...any) error }) (Person, error) {
	var p Person
	err := row.Scan(
		&p.ID,
		&p.BillSplitID,
		&p.PersonNumber,
		&p.Name,
		&p.QrCode,
		&p.TotalAmount,
		&p.IsCompleted,
		&p.CreatedAt,
	)
	return p, err
}

type CreatePersonParams struct {
	BillSplitID  uuid.UUID
	PersonNumber int32
	Name         pgtype.Text
	QrCode       string
}

func (q *Queries) CreatePerson(ctx context.Context, arg CreatePersonParams) (Person, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO persons (bill_split_id, person_number, name, qr_code)
		VALUES ($1, $2, $3, $4)
		RETURNING `+personColumns,
		arg.BillSplitID, arg.PersonNumber, arg.Name, arg.QrCode)
	return scanPerson(row)
}

func (q *Queries) ListPersonsBySplit(ctx context.Context, billSplitID uuid.UUID) ([]Person, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+personColumns+` FROM persons
		WHERE bill_split_id = $1
		ORDER BY person_number`, billSplitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

type GetPersonByNumberParams struct {
	BillSplitID  uuid.UUID
	PersonNumber int32
}

func (q *Queries) GetPersonByNumber(ctx context.Context, arg GetPersonByNumberParams) (Person, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+personColumns+` FROM persons
		WHERE bill_split_id = $1 AND person_number = $2`,
		arg.BillSplitID, arg.PersonNumber)
	return scanPerson(row)
}

type PersonsAboveParams struct {
	BillSplitID  uuid.UUID
	PersonNumber int32
}

// ListBlockedPersonsAbove returns persons past the new size that cannot be
// dropped by a shrink: they have completed, or they have placed orders.
func (q *Queries) ListBlockedPersonsAbove(ctx context.Context, arg PersonsAboveParams) ([]Person, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+personColumns+` FROM persons p
		WHERE p.bill_split_id = $1
		  AND p.person_number > $2
		  AND (p.is_completed
		       OR EXISTS (SELECT 1 FROM orders o WHERE o.person_id = p.id))
		ORDER BY p.person_number`,
		arg.BillSplitID, arg.PersonNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (q *Queries) DeletePersonsAbove(ctx context.Context, arg PersonsAboveParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		DELETE FROM persons
		WHERE bill_split_id = $1 AND person_number > $2`,
		arg.BillSplitID, arg.PersonNumber)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) CompletePerson(ctx context.Context, id uuid.UUID) (Person, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE persons SET is_completed = true
		WHERE id = $1
		RETURNING `+personColumns, id)
	return scanPerson(row)
}

type AddPersonTotalParams struct {
	ID     uuid.UUID
	Amount pgtype.Numeric
}

// AddPersonTotal accumulates an order total onto the person's running amount.
func (q *Queries) AddPersonTotal(ctx context.Context, arg AddPersonTotalParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE persons SET total_amount = total_amount + $2
		WHERE id = $1`, arg.ID, arg.Amount)
	return err
}
