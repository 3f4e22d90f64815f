// Seed creates a demo restaurant with an admin user, a handful of tables
// (QR codes included), and a starter menu. It refuses to run against a
// database that already holds a restaurant.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/alisoleah/qr-ordering-api/internal/qr"
)

type seedItem struct {
	name  string
	price string
}

type seedCategory struct {
	name  string
	items []seedItem
}

var menu = []seedCategory{
	{"Starters", []seedItem{
		{"Garlic Bread", "5.50"},
		{"Soup of the Day", "6.00"},
	}},
	{"Mains", []seedItem{
		{"Classic Burger", "14.50"},
		{"Margherita Pizza", "12.00"},
		{"Grilled Salmon", "18.00"},
	}},
	{"Drinks", []seedItem{
		{"Sparkling Water", "3.00"},
		{"Fresh Orange Juice", "4.50"},
	}},
}

func main() {
	email := flag.String("email", "", "Admin email address")
	password := flag.String("password", "", "Admin password")
	name := flag.String("name", "", "Restaurant name")
	tables := flag.Int("tables", 8, "Number of tables to create")
	flag.Parse()

	if *email == "" {
		*email = os.Getenv("SEED_EMAIL")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *name == "" {
		*name = os.Getenv("SEED_NAME")
	}

	if *email == "" {
		*email = "admin@example.com"
	}
	if *password == "" {
		*password = "password123"
		log.Println("WARNING: Using default password 'password123'. Change immediately in production!")
	}
	if *name == "" {
		*name = "Demo Restaurant"
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "postgres://qr:qr@localhost:5432/qr_ordering?sslmode=disable"
	}
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}

	var existing int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM restaurants`).Scan(&existing); err != nil {
		log.Fatalf("Check existing restaurants: %v", err)
	}
	if existing > 0 {
		log.Fatal("Database already seeded; refusing to run again")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Begin tx: %v", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var restaurantID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO restaurants (name, tax_rate, service_charge_rate, currency)
		VALUES ($1, 0.1000, 0.0500, 'USD')
		RETURNING id`, *name).Scan(&restaurantID)
	if err != nil {
		log.Fatalf("Create restaurant: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Hash password: %v", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO users (restaurant_id, email, hashed_password, full_name, role)
		VALUES ($1, $2, $3, 'Administrator', 'ADMIN')`,
		restaurantID, *email, string(hash))
	if err != nil {
		log.Fatalf("Create admin user: %v", err)
	}

	qrGen := qr.NewGenerator(baseURL)
	for i := 1; i <= *tables; i++ {
		tableNumber := fmt.Sprintf("T%d", i)
		qrCode, err := qrGen.TableDataURI(tableNumber)
		if err != nil {
			log.Fatalf("Render QR for %s: %v", tableNumber, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO tables (restaurant_id, table_number, capacity, qr_code)
			VALUES ($1, $2, 4, $3)`,
			restaurantID, tableNumber, qrCode)
		if err != nil {
			log.Fatalf("Create table %s: %v", tableNumber, err)
		}
	}

	for sortOrder, cat := range menu {
		var categoryID uuid.UUID
		err = tx.QueryRow(ctx, `
			INSERT INTO categories (restaurant_id, name, sort_order)
			VALUES ($1, $2, $3)
			RETURNING id`, restaurantID, cat.name, sortOrder+1).Scan(&categoryID)
		if err != nil {
			log.Fatalf("Create category %s: %v", cat.name, err)
		}
		for _, item := range cat.items {
			_, err = tx.Exec(ctx, `
				INSERT INTO menu_items (restaurant_id, category_id, name, price)
				VALUES ($1, $2, $3, $4)`,
				restaurantID, categoryID, item.name, item.price)
			if err != nil {
				log.Fatalf("Create menu item %s: %v", item.name, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Commit: %v", err)
	}

	log.Printf("Seeded restaurant %q with admin %s and %d tables", *name, *email, *tables)
}
