package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/alisoleah/qr-ordering-api/internal/database"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// noStore disables caching on polling endpoints so clients always see fresh
// settlement state.
func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
}

func numericString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func textOrEmpty(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// --- Shared response shapes ---

type orderItemResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int32     `json:"quantity"`
	UnitPrice  string    `json:"unit_price"`
	TotalPrice string    `json:"total_price"`
	IsPaid     bool      `json:"is_paid"`
}

func dbOrderItemToResponse(i database.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:         i.ID,
		MenuItemID: i.MenuItemID,
		Quantity:   i.Quantity,
		UnitPrice:  numericString(i.UnitPrice),
		TotalPrice: numericString(i.TotalPrice),
		IsPaid:     i.IsPaid,
	}
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	TableID       uuid.UUID           `json:"table_id"`
	Subtotal      string              `json:"subtotal"`
	Tax           string              `json:"tax"`
	ServiceCharge string              `json:"service_charge"`
	Tip           string              `json:"tip"`
	Total         string              `json:"total"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	PaymentMethod string              `json:"payment_method,omitempty"`
	Items         []orderItemResponse `json:"items,omitempty"`
}

func dbOrderToResponse(o database.Order, items []database.OrderItem) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		TableID:       o.TableID,
		Subtotal:      numericString(o.Subtotal),
		Tax:           numericString(o.Tax),
		ServiceCharge: numericString(o.ServiceCharge),
		Tip:           numericString(o.Tip),
		Total:         numericString(o.Total),
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		PaymentMethod: textOrEmpty(o.PaymentMethod),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dbOrderItemToResponse(it))
	}
	return resp
}

type personResponse struct {
	ID           uuid.UUID `json:"id"`
	PersonNumber int32     `json:"person_number"`
	Name         string    `json:"name,omitempty"`
	QrCode       string    `json:"qr_code"`
	TotalAmount  string    `json:"total_amount"`
	IsCompleted  bool      `json:"is_completed"`
}

func dbPersonToResponse(p database.Person) personResponse {
	return personResponse{
		ID:           p.ID,
		PersonNumber: p.PersonNumber,
		Name:         textOrEmpty(p.Name),
		QrCode:       p.QrCode,
		TotalAmount:  numericString(p.TotalAmount),
		IsCompleted:  p.IsCompleted,
	}
}

type billSplitResponse struct {
	ID          uuid.UUID        `json:"id"`
	TableID     uuid.UUID        `json:"table_id"`
	SessionID   string           `json:"session_id"`
	TotalPeople int32            `json:"total_people"`
	IsActive    bool             `json:"is_active"`
	Persons     []personResponse `json:"persons,omitempty"`
}

func dbBillSplitToResponse(s database.BillSplit, persons []database.Person) billSplitResponse {
	resp := billSplitResponse{
		ID:          s.ID,
		TableID:     s.TableID,
		SessionID:   s.SessionID,
		TotalPeople: s.TotalPeople,
		IsActive:    s.IsActive,
	}
	for _, p := range persons {
		resp.Persons = append(resp.Persons, dbPersonToResponse(p))
	}
	return resp
}

type tableResponse struct {
	ID          uuid.UUID `json:"id"`
	TableNumber string    `json:"table_number"`
	Capacity    int32     `json:"capacity"`
	Status      string    `json:"status"`
	QrCode      string    `json:"qr_code,omitempty"`
}

func dbTableToResponse(t database.Table) tableResponse {
	return tableResponse{
		ID:          t.ID,
		TableNumber: t.TableNumber,
		Capacity:    t.Capacity,
		Status:      string(t.Status),
		QrCode:      textOrEmpty(t.QrCode),
	}
}
