package database

import (
	"context"
)

const restaurantColumns = `id, name, address, phone, tax_rate, service_charge_rate, currency, is_active, created_at`

func scanRestaurant(row interface{ Scan(dest ...any) error }) (Restaurant, error) {
	var r Restaurant
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Address,
		&r.Phone,
		&r.TaxRate,
		&r.ServiceChargeRate,
		&r.Currency,
		&r.IsActive,
		&r.CreatedAt,
	)
	return r, err
}

// GetDefaultRestaurant returns the single active restaurant. The application
// is single-tenant; all public routes resolve against this row.
func (q *Queries) GetDefaultRestaurant(ctx context.Context) (Restaurant, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+restaurantColumns+` FROM restaurants
		WHERE is_active = true
		ORDER BY created_at
		LIMIT 1`)
	return scanRestaurant(row)
}
