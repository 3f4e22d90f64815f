package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Restaurant struct {
	ID                uuid.UUID
	Name              string
	Address           pgtype.Text
	Phone             pgtype.Text
	TaxRate           pgtype.Numeric
	ServiceChargeRate pgtype.Numeric
	Currency          string
	IsActive          bool
	CreatedAt         time.Time
}

type User struct {
	ID             uuid.UUID
	RestaurantID   uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Role           string
	IsActive       bool
	CreatedAt      time.Time
}

type Table struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	TableNumber  string
	Capacity     int32
	Status       TableStatus
	QrCode       pgtype.Text
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Category struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	SortOrder    int32
	IsActive     bool
}

type MenuItem struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	CategoryID   uuid.UUID
	Name         string
	Description  pgtype.Text
	Price        pgtype.Numeric
	ImageUrl     pgtype.Text
	IsAvailable  bool
	CreatedAt    time.Time
}

type BillSplit struct {
	ID          uuid.UUID
	TableID     uuid.UUID
	SessionID   string
	TotalPeople int32
	IsActive    bool
	CreatedAt   time.Time
}

type Person struct {
	ID           uuid.UUID
	BillSplitID  uuid.UUID
	PersonNumber int32
	Name         pgtype.Text
	QrCode       string
	TotalAmount  pgtype.Numeric
	IsCompleted  bool
	CreatedAt    time.Time
}

type Order struct {
	ID            uuid.UUID
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
	Status        OrderStatus
	PaymentStatus PaymentStatus
	PaymentMethod pgtype.Text
	PaymentRef    pgtype.Text
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OrderItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Quantity   int32
	UnitPrice  pgtype.Numeric
	TotalPrice pgtype.Numeric
	IsPaid     bool
	PaidAt     pgtype.Timestamptz
	CreatedAt  time.Time
}

type PaymentTransaction struct {
	ID            uuid.UUID
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
	Status        PaymentStatus
	CreatedAt     time.Time
}
