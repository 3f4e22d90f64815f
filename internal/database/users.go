package database

import (
	"context"

	"github.com/google/uuid"
)

const userColumns = `id, restaurant_id, email, hashed_password, full_name, role, is_active, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.RestaurantID,
		&u.Email,
		&u.HashedPassword,
		&u.FullName,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
	)
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE email = $1 AND is_active = true`, email)
	return scanUser(row)
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id = $1 AND is_active = true`, id)
	return scanUser(row)
}
