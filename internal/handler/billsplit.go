package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/alisoleah/qr-ordering-api/internal/database"
	"github.com/alisoleah/qr-ordering-api/internal/service"
)

// BillSplitter is the service surface the bill-split endpoints need.
type BillSplitter interface {
	CreateSession(ctx context.Context, tableID uuid.UUID, totalPeople int32) (*service.SessionResult, error)
	ResizeSession(ctx context.Context, sessionID string, newTotal int32) (*service.SessionResult, error)
	CompletePerson(ctx context.Context, sessionID string, personNumber int32, method, ref string) (database.Person, error)
	PersonContext(ctx context.Context, sessionID string, personNumber int32) (*service.PersonContextResult, error)
}

// BillSplitHandler handles bill-split session management and per-person pages.
type BillSplitHandler struct {
	svc BillSplitter
}

func NewBillSplitHandler(svc BillSplitter) *BillSplitHandler {
	return &BillSplitHandler{svc: svc}
}

// RegisterGuestRoutes registers the public per-person endpoints.
func (h *BillSplitHandler) RegisterGuestRoutes(r chi.Router) {
	r.Get("/person/{sessionID}/{personNumber}", h.PersonContext)
	r.Post("/person/{sessionID}/{personNumber}/complete", h.CompletePerson)
}

// RegisterAdminRoutes registers the staff session management endpoints.
// POST takes a table ID, PATCH takes a session ID; chi requires both methods
// to share the param name.
func (h *BillSplitHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/bill-split/{id}", h.CreateSession)
	r.Patch("/bill-split/{id}", h.ResizeSession)
}

type billSplitSessionRequest struct {
	TotalPeople int32 `json:"total_people"`
}

// CreateSession handles POST /api/bill-split/{tableID}. Any previously active
// session at the table is deactivated.
func (h *BillSplitHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	tableID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	var req billSplitSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.CreateSession(r.Context(), tableID, req.TotalPeople)
	if err != nil {
		h.respondBillSplitError(w, err, "create bill split")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"bill_split": dbBillSplitToResponse(result.Split, result.Persons),
	})
}

// ResizeSession handles PATCH /api/bill-split/{sessionID}. Growing adds new
// persons; shrinking is refused while any removed seat has activity.
func (h *BillSplitHandler) ResizeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req billSplitSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.ResizeSession(r.Context(), sessionID, req.TotalPeople)
	if err != nil {
		h.respondBillSplitError(w, err, "resize bill split")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bill_split": dbBillSplitToResponse(result.Split, result.Persons),
	})
}

// PersonContext handles GET /api/person/{sessionID}/{personNumber}. Works on
// inactive sessions too, so stale QR pages still render.
func (h *BillSplitHandler) PersonContext(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	personNumber, err := parsePersonNumber(chi.URLParam(r, "personNumber"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid person number"})
		return
	}

	result, err := h.svc.PersonContext(r.Context(), sessionID, personNumber)
	if err != nil {
		h.respondBillSplitError(w, err, "person context")
		return
	}

	orders := make([]orderResponse, len(result.Orders))
	for i, po := range result.Orders {
		orders[i] = dbOrderToResponse(po.Order, po.Items)
	}

	noStore(w)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"restaurant": result.Restaurant.Name,
		"currency":   result.Restaurant.Currency,
		"table":      dbTableToResponse(result.Table),
		"bill_split": dbBillSplitToResponse(result.Split, nil),
		"person":     dbPersonToResponse(result.Person),
		"orders":     orders,
	})
}

type completePersonRequest struct {
	PaymentMethod string `json:"payment_method"`
	PaymentID     string `json:"payment_id,omitempty"`
}

// CompletePerson handles POST /api/person/{sessionID}/{personNumber}/complete.
func (h *BillSplitHandler) CompletePerson(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	personNumber, err := parsePersonNumber(chi.URLParam(r, "personNumber"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid person number"})
		return
	}

	var req completePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.PaymentMethod == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payment_method is required"})
		return
	}

	person, err := h.svc.CompletePerson(r.Context(), sessionID, personNumber, req.PaymentMethod, req.PaymentID)
	if err != nil {
		h.respondBillSplitError(w, err, "complete person")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"person": dbPersonToResponse(person),
	})
}

func parsePersonNumber(raw string) (int32, error) {
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n < 1 {
		return 0, errors.New("invalid person number")
	}
	return int32(n), nil
}

func (h *BillSplitHandler) respondBillSplitError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrInvalidPeopleCount):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrPersonNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrShrinkBlocked):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
