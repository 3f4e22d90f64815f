package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alisoleah/qr-ordering-api/internal/payment"
	"github.com/alisoleah/qr-ordering-api/internal/service"
)

// Settler is the service surface the settlement endpoints need.
type Settler interface {
	UnpaidItems(ctx context.Context, tableNumber string) ([]service.AggregatedItem, error)
	PaidItems(ctx context.Context, tableNumber string) ([]service.AggregatedItem, decimal.Decimal, error)
	SettleOrder(ctx context.Context, req service.SettleOrderRequest) (*service.SettlementResult, error)
	SettleItems(ctx context.Context, req service.SettleItemsRequest) (*service.SettlementResult, error)
	ClearTable(ctx context.Context, tableNumber string) (*service.ClearTableResult, error)
	ResetTable(ctx context.Context, tableNumber string) (int64, error)
}

// SettlementHandler handles unpaid/paid bill views and payments.
type SettlementHandler struct {
	svc Settler
}

func NewSettlementHandler(svc Settler) *SettlementHandler {
	return &SettlementHandler{svc: svc}
}

// RegisterGuestRoutes registers the public settlement endpoints.
func (h *SettlementHandler) RegisterGuestRoutes(r chi.Router) {
	r.Get("/tables/{tableNumber}/unpaid-items", h.UnpaidItems)
	r.Get("/tables/{tableNumber}/paid-items", h.PaidItems)
	r.Post("/payment", h.Pay)
}

// RegisterAdminRoutes registers staff-only table recovery endpoints.
func (h *SettlementHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/clear-table/{tableNumber}", h.ClearTable)
	r.Post("/reset-table/{tableNumber}", h.ResetTable)
}

type aggregatedItemResponse struct {
	MenuItemID uuid.UUID   `json:"menu_item_id"`
	Name       string      `json:"name"`
	ImageURL   string      `json:"image_url,omitempty"`
	Quantity   int32       `json:"quantity"`
	UnitPrice  string      `json:"unit_price"`
	TotalPrice string      `json:"total_price"`
	ItemIDs    []uuid.UUID `json:"item_ids"`
}

func aggregatedItemsToResponse(items []service.AggregatedItem) []aggregatedItemResponse {
	resp := make([]aggregatedItemResponse, len(items))
	for i, it := range items {
		resp[i] = aggregatedItemResponse{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			ImageURL:   it.ImageURL,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.StringFixed(2),
			TotalPrice: it.TotalPrice.StringFixed(2),
			ItemIDs:    it.ItemIDs,
		}
	}
	return resp
}

// UnpaidItems handles GET /api/tables/{tableNumber}/unpaid-items. Polled by
// guest phones, so responses are never cached.
func (h *SettlementHandler) UnpaidItems(w http.ResponseWriter, r *http.Request) {
	tableNumber := chi.URLParam(r, "tableNumber")

	items, err := h.svc.UnpaidItems(r.Context(), tableNumber)
	if err != nil {
		h.respondSettlementError(w, err, "unpaid items")
		return
	}

	noStore(w)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"table_number": tableNumber,
		"items":        aggregatedItemsToResponse(items),
	})
}

// PaidItems handles GET /api/tables/{tableNumber}/paid-items.
func (h *SettlementHandler) PaidItems(w http.ResponseWriter, r *http.Request) {
	tableNumber := chi.URLParam(r, "tableNumber")

	items, subtotal, err := h.svc.PaidItems(r.Context(), tableNumber)
	if err != nil {
		h.respondSettlementError(w, err, "paid items")
		return
	}

	noStore(w)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"table_number": tableNumber,
		"items":        aggregatedItemsToResponse(items),
		"subtotal":     subtotal.StringFixed(2),
	})
}

type paymentRequest struct {
	OrderID       string   `json:"order_id,omitempty"`
	ItemIDs       []string `json:"item_ids,omitempty"`
	Tip           string   `json:"tip,omitempty"`
	PaymentMethod string   `json:"payment_method"`
	CustomerEmail string   `json:"customer_email,omitempty"`
	Provider      string   `json:"provider,omitempty"`
}

type paymentResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	ReceiptNumber string `json:"receipt_number"`
	OrderID       string `json:"order_id,omitempty"`
	Provider      string `json:"provider"`
	ProviderRef   string `json:"provider_ref,omitempty"`
	Total         string `json:"total"`
}

// Pay handles POST /api/payment. An order_id pays the whole order; item_ids
// pays an itemized subset. Exactly one of the two must be present.
func (h *SettlementHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.PaymentMethod == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payment_method is required"})
		return
	}
	if (req.OrderID == "") == (len(req.ItemIDs) == 0) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exactly one of order_id or item_ids is required"})
		return
	}

	tip := decimal.Zero
	if req.Tip != "" {
		var err error
		tip, err = decimal.NewFromString(req.Tip)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tip"})
			return
		}
	}

	var (
		result *service.SettlementResult
		err    error
	)
	if req.OrderID != "" {
		orderID, perr := uuid.Parse(req.OrderID)
		if perr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
			return
		}
		result, err = h.svc.SettleOrder(r.Context(), service.SettleOrderRequest{
			OrderID:       orderID,
			Tip:           tip,
			PaymentMethod: req.PaymentMethod,
			CustomerEmail: req.CustomerEmail,
			Provider:      req.Provider,
		})
	} else {
		itemIDs := make([]uuid.UUID, 0, len(req.ItemIDs))
		for _, raw := range req.ItemIDs {
			id, perr := uuid.Parse(raw)
			if perr != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID: " + raw})
				return
			}
			itemIDs = append(itemIDs, id)
		}
		result, err = h.svc.SettleItems(r.Context(), service.SettleItemsRequest{
			ItemIDs:       itemIDs,
			Tip:           tip,
			PaymentMethod: req.PaymentMethod,
			CustomerEmail: req.CustomerEmail,
			Provider:      req.Provider,
		})
	}
	if err != nil {
		h.respondSettlementError(w, err, "payment")
		return
	}

	resp := paymentResponse{
		Success:       true,
		TransactionID: result.Transaction.ID.String(),
		ReceiptNumber: result.Transaction.ReceiptNumber,
		Provider:      result.Transaction.Provider,
		ProviderRef:   textOrEmpty(result.Transaction.ProviderRef),
		Total:         numericString(result.Transaction.Total),
	}
	if result.Order != nil {
		resp.OrderID = result.Order.ID.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ClearTable handles POST /api/clear-table/{tableNumber}.
func (h *SettlementHandler) ClearTable(w http.ResponseWriter, r *http.Request) {
	tableNumber := chi.URLParam(r, "tableNumber")

	result, err := h.svc.ClearTable(r.Context(), tableNumber)
	if err != nil {
		h.respondSettlementError(w, err, "clear table")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"deleted_items":  result.DeletedItems,
		"deleted_orders": result.DeletedOrders,
	})
}

// ResetTable handles POST /api/reset-table/{tableNumber}.
func (h *SettlementHandler) ResetTable(w http.ResponseWriter, r *http.Request) {
	tableNumber := chi.URLParam(r, "tableNumber")

	count, err := h.svc.ResetTable(r.Context(), tableNumber)
	if err != nil {
		h.respondSettlementError(w, err, "reset table")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   count,
	})
}

func (h *SettlementHandler) respondSettlementError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrEmptyItemSet),
		errors.Is(err, service.ErrInvalidTip),
		errors.Is(err, payment.ErrUnknownProvider):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrItemsNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrOrderAlreadyPaid),
		errors.Is(err, service.ErrItemsAlreadyPaid),
		errors.Is(err, service.ErrCrossTableItems):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrProviderFailure):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
