package database

import (
	"context"

	"github.com/google/uuid"
)

const menuItemColumns = `id, restaurant_id, category_id, name, description, price, image_url, is_available, created_at`

func scanMenuItem(row interface{ Scan(dest ...any) error }) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(
		&m.ID,
		&m.RestaurantID,
		&m.CategoryID,
		&m.Name,
		&m.Description,
		&m.Price,
		&m.ImageUrl,
		&m.IsAvailable,
		&m.CreatedAt,
	)
	return m, err
}

func (q *Queries) ListCategories(ctx context.Context, restaurantID uuid.UUID) ([]Category, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, restaurant_id, name, sort_order, is_active FROM categories
		WHERE restaurant_id = $1 AND is_active = true
		ORDER BY sort_order, name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.SortOrder, &c.IsActive); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (q *Queries) ListAvailableMenuItems(ctx context.Context, restaurantID uuid.UUID) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+menuItemColumns+` FROM menu_items
		WHERE restaurant_id = $1 AND is_available = true
		ORDER BY name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// GetMenuItemForOrder returns an available menu item for price snapshotting.
func (q *Queries) GetMenuItemForOrder(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+menuItemColumns+` FROM menu_items
		WHERE id = $1 AND is_available = true`, id)
	return scanMenuItem(row)
}
