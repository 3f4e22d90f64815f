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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/alisoleah/qr-ordering-api/internal/database"
	"github.com/alisoleah/qr-ordering-api/internal/service"
)

// OrderPlacer is the service surface the guest ordering endpoint needs.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req service.PlaceOrderRequest) (*service.PlaceOrderResult, error)
}

// AdminOrderStore defines the database methods for admin order management.
type AdminOrderStore interface {
	GetDefaultRestaurant(ctx context.Context) (database.Restaurant, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// OrderHandler handles guest order placement and admin order management.
type OrderHandler struct {
	placer OrderPlacer
	store  AdminOrderStore
}

func NewOrderHandler(placer OrderPlacer, store AdminOrderStore) *OrderHandler {
	return &OrderHandler{placer: placer, store: store}
}

// RegisterGuestRoutes registers the public ordering endpoint.
func (h *OrderHandler) RegisterGuestRoutes(r chi.Router) {
	r.Post("/orders", h.Place)
}

// RegisterAdminRoutes registers staff-facing order endpoints. Expected to be
// mounted under the authenticated admin subtree.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
}

type placeOrderRequest struct {
	TableNumber  string `json:"table_number"`
	SessionID    string `json:"session_id,omitempty"`
	PersonNumber int32  `json:"person_number,omitempty"`
	Tip          string `json:"tip,omitempty"`
	Items        []struct {
		MenuItemID string `json:"menu_item_id"`
		Quantity   int32  `json:"quantity"`
	} `json:"items"`
}

// Place handles POST /api/orders.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.TableNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_number is required"})
		return
	}

	svcReq := service.PlaceOrderRequest{
		TableNumber:  req.TableNumber,
		SessionID:    req.SessionID,
		PersonNumber: req.PersonNumber,
		Tip:          req.Tip,
	}
	for _, it := range req.Items {
		svcReq.Items = append(svcReq.Items, service.PlaceOrderItem{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
		})
	}

	result, err := h.placer.PlaceOrder(r.Context(), svcReq)
	if err != nil {
		h.respondPlaceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"order": dbOrderToResponse(result.Order, result.Items),
	})
}

func (h *OrderHandler) respondPlaceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidMenuItemID),
		errors.Is(err, service.ErrInvalidTip):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, service.ErrMenuItemNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrPersonNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrPersonCompleted):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: place order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// List handles GET /api/admin/orders?status=&table=&limit=&offset=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.store.GetDefaultRestaurant(r.Context())
	if err != nil {
		log.Printf("ERROR: get restaurant for list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	params := database.ListOrdersParams{
		RestaurantID: restaurant.ID,
		Limit:        50,
		Offset:       0,
	}
	if s := r.URL.Query().Get("status"); s != "" {
		if !isValidOrderStatus(database.OrderStatus(s)) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		params.Status = pgtype.Text{String: s, Valid: true}
	}
	if t := r.URL.Query().Get("table"); t != "" {
		tableID, err := uuid.Parse(t)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
			return
		}
		params.TableID = pgtype.UUID{Bytes: tableID, Valid: true}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 || n > 200 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		params.Limit = int32(n)
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		n, err := strconv.Atoi(o)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offset"})
			return
		}
		params.Offset = int32(n)
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o, nil)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": resp})
}

// Get handles GET /api/admin/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), order.ID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"order": dbOrderToResponse(order, items)})
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// kitchenTransitions maps each order status to its allowed successor.
var kitchenTransitions = map[database.OrderStatus]database.OrderStatus{
	database.OrderStatusPENDING:   database.OrderStatusCONFIRMED,
	database.OrderStatusCONFIRMED: database.OrderStatusPREPARING,
	database.OrderStatusPREPARING: database.OrderStatusREADY,
	database.OrderStatusREADY:     database.OrderStatusCOMPLETED,
}

func isValidOrderStatus(s database.OrderStatus) bool {
	switch s {
	case database.OrderStatusPENDING,
		database.OrderStatusCONFIRMED,
		database.OrderStatusPREPARING,
		database.OrderStatusREADY,
		database.OrderStatusCOMPLETED:
		return true
	}
	return false
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status. Only the next
// step in the kitchen flow is accepted; a lost compare-and-set race returns
// 409 so the caller can refresh.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	target := database.OrderStatus(req.Status)
	if !isValidOrderStatus(target) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order for status update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if kitchenTransitions[order.Status] != target {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "invalid status transition from " + string(order.Status) + " to " + string(target),
		})
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:         id,
		Status:     target,
		FromStatus: order.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order status changed concurrently"})
			return
		}
		log.Printf("ERROR: update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"order": dbOrderToResponse(updated, nil)})
}
