package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alisoleah/qr-ordering-api/internal/database"
	"github.com/alisoleah/qr-ordering-api/internal/handler"
	"github.com/alisoleah/qr-ordering-api/internal/service"
)

type mockSettler struct {
	unpaidFn      func(ctx context.Context, tableNumber string) ([]service.AggregatedItem, error)
	paidFn        func(ctx context.Context, tableNumber string) ([]service.AggregatedItem, decimal.Decimal, error)
	settleOrderFn func(ctx context.Context, req service.SettleOrderRequest) (*service.SettlementResult, error)
	settleItemsFn func(ctx context.Context, req service.SettleItemsRequest) (*service.SettlementResult, error)
	clearFn       func(ctx context.Context, tableNumber string) (*service.ClearTableResult, error)
	resetFn       func(ctx context.Context, tableNumber string) (int64, error)
}

func (m *mockSettler) UnpaidItems(ctx context.Context, tableNumber string) ([]service.AggregatedItem, error) {
	return m.unpaidFn(ctx, tableNumber)
}

func (m *mockSettler) PaidItems(ctx context.Context, tableNumber string) ([]service.AggregatedItem, decimal.Decimal, error) {
	return m.paidFn(ctx, tableNumber)
}

func (m *mockSettler) SettleOrder(ctx context.Context, req service.SettleOrderRequest) (*service.SettlementResult, error) {
	return m.settleOrderFn(ctx, req)
}

func (m *mockSettler) SettleItems(ctx context.Context, req service.SettleItemsRequest) (*service.SettlementResult, error) {
	return m.settleItemsFn(ctx, req)
}

func (m *mockSettler) ClearTable(ctx context.Context, tableNumber string) (*service.ClearTableResult, error) {
	return m.clearFn(ctx, tableNumber)
}

func (m *mockSettler) ResetTable(ctx context.Context, tableNumber string) (int64, error) {
	return m.resetFn(ctx, tableNumber)
}

func setupSettlementRouter(svc *mockSettler) *chi.Mux {
	h := handler.NewSettlementHandler(svc)
	r := chi.NewRouter()
	h.RegisterGuestRoutes(r)
	h.RegisterAdminRoutes(r)
	return r
}

func testTransaction(total string) database.PaymentTransaction {
	return database.PaymentTransaction{
		ID:            uuid.New(),
		RestaurantID:  uuid.New(),
		TableID:       uuid.New(),
		ReceiptNumber: "RCP-ABCD1234",
		PaymentMethod: "CARD",
		Provider:      "simulated",
		Total:         testNumeric(total),
		Status:        database.PaymentStatusCOMPLETED,
	}
}

func TestUnpaidItems(t *testing.T) {
	itemID := uuid.New()
	svc := &mockSettler{
		unpaidFn: func(_ context.Context, tableNumber string) ([]service.AggregatedItem, error) {
			if tableNumber != "T1" {
				t.Errorf("table number: got %q, want T1", tableNumber)
			}
			return []service.AggregatedItem{{
				MenuItemID: uuid.New(),
				Name:       "Burger",
				Quantity:   2,
				UnitPrice:  decimal.RequireFromString("10.00"),
				TotalPrice: decimal.RequireFromString("20.00"),
				ItemIDs:    []uuid.UUID{itemID},
			}}, nil
		},
	}
	router := setupSettlementRouter(svc)

	rr := doRequest(t, router, "GET", "/tables/T1/unpaid-items", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if cc := rr.Header().Get("Cache-Control"); cc != "no-store, no-cache, must-revalidate" {
		t.Errorf("Cache-Control: got %q", cc)
	}

	resp := decodeResponse(t, rr)
	if resp["table_number"] != "T1" {
		t.Errorf("table_number: got %v, want T1", resp["table_number"])
	}
	items := resp["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("items: got %d, want 1", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["total_price"] != "20.00" {
		t.Errorf("total_price: got %v, want 20.00", first["total_price"])
	}
	ids := first["item_ids"].([]interface{})
	if len(ids) != 1 || ids[0] != itemID.String() {
		t.Errorf("item_ids: got %v", ids)
	}
}

func TestUnpaidItems_UnknownTable(t *testing.T) {
	svc := &mockSettler{
		unpaidFn: func(_ context.Context, _ string) ([]service.AggregatedItem, error) {
			return nil, service.ErrTableNotFound
		},
	}
	router := setupSettlementRouter(svc)

	rr := doRequest(t, router, "GET", "/tables/T9/unpaid-items", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestPaidItems(t *testing.T) {
	svc := &mockSettler{
		paidFn: func(_ context.Context, _ string) ([]service.AggregatedItem, decimal.Decimal, error) {
			return []service.AggregatedItem{{
				MenuItemID: uuid.New(),
				Name:       "Cola",
				Quantity:   1,
				UnitPrice:  decimal.RequireFromString("3.00"),
				TotalPrice: decimal.RequireFromString("3.00"),
				ItemIDs:    []uuid.UUID{uuid.New()},
			}}, decimal.RequireFromString("3.00"), nil
		},
	}
	router := setupSettlementRouter(svc)

	rr := doRequest(t, router, "GET", "/tables/T1/paid-items", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["subtotal"] != "3.00" {
		t.Errorf("subtotal: got %v, want 3.00", resp["subtotal"])
	}
}

func TestPay_FullOrder(t *testing.T) {
	orderID := uuid.New()
	var gotReq service.SettleOrderRequest
	svc := &mockSettler{
		settleOrderFn: func(_ context.Context, req service.SettleOrderRequest) (*service.SettlementResult, error) {
			gotReq = req
			txn := testTransaction("25.00")
			order := database.Order{ID: orderID, PaymentStatus: database.PaymentStatusCOMPLETED}
			return &service.SettlementResult{Transaction: txn, Order: &order}, nil
		},
	}
	router := setupSettlementRouter(svc)

	rr := doRequest(t, router, "POST", "/payment", map[string]interface{}{
		"order_id":       orderID.String(),
		"tip":            "2.00",
		"payment_method": "CARD",
		"provider":       "simulated",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if gotReq.OrderID != orderID {
		t.Errorf("order ID: got %v, want %v", gotReq.OrderID, orderID)
	}
	if !gotReq.Tip.Equal(decimal.RequireFromString("2.00")) {
		t.Errorf("tip: got %v, want 2.00", gotReq.Tip)
	}

	resp := decodeResponse(t, rr)
	if resp["success"] != true {
		t.Error("expected success true")
	}
	if resp["order_id"] != orderID.String() {
		t.Errorf("order_id: got %v, want %v", resp["order_id"], orderID)
	}
	if resp["total"] != "25.00" {
		t.Errorf("total: got %v, want 25.00", resp["total"])
	}
	if resp["receipt_number"] != "RCP-ABCD1234" {
		t.Errorf("receipt_number: got %v", resp["receipt_number"])
	}
}

func TestPay_Itemized(t *testing.T) {
	itemA, itemB := uuid.New(), uuid.New()
	var gotReq service.SettleItemsRequest
	svc := &mockSettler{
		settleItemsFn: func(_ context.Context, req service.SettleItemsRequest) (*service.SettlementResult, error) {
			gotReq = req
			return &service.SettlementResult{Transaction: testTransaction("13.00")}, nil
		},
	}
	router := setupSettlementRouter(svc)

	rr := doRequest(t, router, "POST", "/payment", map[string]interface{}{
		"item_ids":       []string{itemA.String(), itemB.String()},
		"payment_method": "CASH",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if len(gotReq.ItemIDs) != 2 || gotReq.ItemIDs[0] != itemA || gotReq.ItemIDs[1] != itemB {
		t.Errorf("item IDs not forwarded: %v", gotReq.ItemIDs)
	}

	resp := decodeResponse(t, rr)
	if _, ok := resp["order_id"]; ok {
		t.Error("itemized payment should not include order_id")
	}
}

func TestPay_RequiresExactlyOneTarget(t *testing.T) {
	router := setupSettlementRouter(&mockSettler{})

	// Neither order_id nor item_ids.
	rr := doRequest(t, router, "POST", "/payment", map[string]interface{}{
		"payment_method": "CARD",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("neither: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	// Both at once.
	rr = doRequest(t, router, "POST", "/payment", map[string]interface{}{
		"order_id":       uuid.NewString(),
		"item_ids":       []string{uuid.NewString()},
		"payment_method": "CARD",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("both: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestPay_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"order not found", service.ErrOrderNotFound, http.StatusNotFound},
		{"already paid", service.ErrOrderAlreadyPaid, http.StatusConflict},
		{"provider failure", service.ErrProviderFailure, http.StatusBadGateway},
		{"invalid tip", service.ErrInvalidTip, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockSettler{
				settleOrderFn: func(_ context.Context, _ service.SettleOrderRequest) (*service.SettlementResult, error) {
					return nil, tc.err
				},
			}
			router := setupSettlementRouter(svc)

			rr := doRequest(t, router, "POST", "/payment", map[string]interface{}{
				"order_id":       uuid.NewString(),
				"payment_method": "CARD",
			})
			if rr.Code != tc.want {
				t.Errorf("status: got %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestPay_ItemizedErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"items not found", service.ErrItemsNotFound, http.StatusNotFound},
		{"items already paid", service.ErrItemsAlreadyPaid, http.StatusConflict},
		{"cross table", service.ErrCrossTableItems, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockSettler{
				settleItemsFn: func(_ context.Context, _ service.SettleItemsRequest) (*service.SettlementResult, error) {
					return nil, tc.err
				},
			}
			router := setupSettlementRouter(svc)

			rr := doRequest(t, router, "POST", "/payment", map[string]interface{}{
				"item_ids":       []string{uuid.NewString()},
				"payment_method": "CARD",
			})
			if rr.Code != tc.want {
				t.Errorf("status: got %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestClearTable(t *testing.T) {
	svc := &mockSettler{
		clearFn: func(_ context.Context, tableNumber string) (*service.ClearTableResult, error) {
			if tableNumber != "T1" {
				t.Errorf("table number: got %q, want T1", tableNumber)
			}
			return &service.ClearTableResult{DeletedItems: 5, DeletedOrders: 2}, nil
		},
	}
	router := setupSettlementRouter(svc)

	rr := doRequest(t, router, "POST", "/clear-table/T1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["success"] != true {
		t.Error("expected success true")
	}
	if resp["deleted_items"] != float64(5) {
		t.Errorf("deleted_items: got %v, want 5", resp["deleted_items"])
	}
	if resp["deleted_orders"] != float64(2) {
		t.Errorf("deleted_orders: got %v, want 2", resp["deleted_orders"])
	}
}

func TestResetTable(t *testing.T) {
	svc := &mockSettler{
		resetFn: func(_ context.Context, _ string) (int64, error) {
			return 7, nil
		},
	}
	router := setupSettlementRouter(svc)

	rr := doRequest(t, router, "POST", "/reset-table/T1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["count"] != float64(7) {
		t.Errorf("count: got %v, want 7", resp["count"])
	}
}
