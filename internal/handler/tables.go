package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/alisoleah/qr-ordering-api/internal/database"
)

// TableQR renders table QR codes. Satisfied by *qr.Generator.
type TableQR interface {
	TableDataURI(tableNumber string) (string, error)
}

// TableStore defines the database methods needed by table handlers.
type TableStore interface {
	GetDefaultRestaurant(ctx context.Context) (database.Restaurant, error)
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.Table, error)
	GetTable(ctx context.Context, id uuid.UUID) (database.Table, error)
	ListTables(ctx context.Context, restaurantID uuid.UUID) ([]database.Table, error)
	UpdateTable(ctx context.Context, arg database.UpdateTableParams) (database.Table, error)
	UpdateTableQrCode(ctx context.Context, arg database.UpdateTableQrCodeParams) (database.Table, error)
	CountOrdersByTable(ctx context.Context, tableID uuid.UUID) (int64, error)
	DeleteTable(ctx context.Context, id uuid.UUID) error
}

// TableHandler handles admin table management.
type TableHandler struct {
	store TableStore
	qr    TableQR
}

func NewTableHandler(store TableStore, qr TableQR) *TableHandler {
	return &TableHandler{store: store, qr: qr}
}

// RegisterRoutes registers table endpoints. Expected to be mounted under the
// authenticated admin subtree.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/qr", h.RegenerateQR)
}

type createTableRequest struct {
	TableNumber string `json:"table_number"`
	Capacity    int32  `json:"capacity"`
}

type updateTableRequest struct {
	Capacity int32  `json:"capacity"`
	Status   string `json:"status"`
}

func isValidTableStatus(s database.TableStatus) bool {
	switch s {
	case database.TableStatusAVAILABLE,
		database.TableStatusOCCUPIED,
		database.TableStatusRESERVED,
		database.TableStatusOUTOFSERVICE:
		return true
	}
	return false
}

// List handles GET /api/admin/tables.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.store.GetDefaultRestaurant(r.Context())
	if err != nil {
		log.Printf("ERROR: get restaurant for list tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	tables, err := h.store.ListTables(r.Context(), restaurant.ID)
	if err != nil {
		log.Printf("ERROR: list tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = dbTableToResponse(t)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tables": resp})
}

// Create handles POST /api/admin/tables. The table's QR code is rendered at
// creation time and stored on the row.
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.TableNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_number is required"})
		return
	}
	if req.Capacity <= 0 {
		req.Capacity = 4
	}

	restaurant, err := h.store.GetDefaultRestaurant(r.Context())
	if err != nil {
		log.Printf("ERROR: get restaurant for create table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	qrCode, err := h.qr.TableDataURI(req.TableNumber)
	if err != nil {
		log.Printf("ERROR: render table qr: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	table, err := h.store.CreateTable(r.Context(), database.CreateTableParams{
		RestaurantID: restaurant.ID,
		TableNumber:  req.TableNumber,
		Capacity:     req.Capacity,
		QrCode:       pgtype.Text{String: qrCode, Valid: true},
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "table number already exists"})
			return
		}
		log.Printf("ERROR: create table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"table": dbTableToResponse(table)})
}

// Update handles PATCH /api/admin/tables/{id}.
func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	var req updateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	current, err := h.store.GetTable(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: get table for update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	capacity := current.Capacity
	if req.Capacity > 0 {
		capacity = req.Capacity
	}
	status := current.Status
	if req.Status != "" {
		status = database.TableStatus(req.Status)
		if !isValidTableStatus(status) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
	}

	table, err := h.store.UpdateTable(r.Context(), database.UpdateTableParams{
		ID:       id,
		Capacity: capacity,
		Status:   status,
	})
	if err != nil {
		log.Printf("ERROR: update table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"table": dbTableToResponse(table)})
}

// Delete handles DELETE /api/admin/tables/{id}. Tables with order history
// cannot be deleted.
func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	if _, err := h.store.GetTable(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: get table for delete: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	count, err := h.store.CountOrdersByTable(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: count orders for delete table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if count > 0 {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "table has orders; clear it first"})
		return
	}

	if err := h.store.DeleteTable(r.Context(), id); err != nil {
		log.Printf("ERROR: delete table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// RegenerateQR handles POST /api/admin/tables/{id}/qr.
func (h *TableHandler) RegenerateQR(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	table, err := h.store.GetTable(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: get table for qr: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	qrCode, err := h.qr.TableDataURI(table.TableNumber)
	if err != nil {
		log.Printf("ERROR: render table qr: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	updated, err := h.store.UpdateTableQrCode(r.Context(), database.UpdateTableQrCodeParams{
		ID:     id,
		QrCode: pgtype.Text{String: qrCode, Valid: true},
	})
	if err != nil {
		log.Printf("ERROR: update table qr: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"table": dbTableToResponse(updated)})
}
