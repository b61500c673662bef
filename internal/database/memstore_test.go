package database

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func seedStore(t *testing.T) *MemStore {
	t.Helper()
	s := NewMemStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []struct {
		orderID  string
		customer string
		status   string
		total    string
		paid     bool
		day      int
	}{
		{"ORD-001", "Alice Johnson", "Pending", "100.00", true, 1},
		{"ORD-002", "Bob Martinez", "Shipped", "250.50", true, 2},
		{"ORD-003", "Carol Chen", "Shipped", "75.25", false, 3},
		{"ORD-004", "David Okafor", "Processing", "310.00", false, 4},
		{"ORD-005", "Eve Lindqvist", "Cancelled", "42.99", true, 5},
		{"ORD-006", "Alice Cooper", "Pending", "180.00", false, 6},
	}
	for _, r := range rows {
		o := s.InsertOrder(Order{
			OrderID:      r.orderID,
			CustomerName: r.customer,
			Status:       r.status,
			Total:        decimal.RequireFromString(r.total),
			Paid:         r.paid,
			CreatedAt:    base.AddDate(0, 0, r.day),
		})
		s.InsertOrderItem(OrderItem{OrderID: o.ID, ProductName: "Widget", Quantity: 1, Price: o.Total})
	}
	return s
}

func TestMemStoreListOrdersPaging(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	f := mustFilter(t, url.Values{"sortBy": {"total"}, "sortOrder": {"asc"}})
	page, err := s.ListOrders(ctx, ListOrdersParams{Filter: f, Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("got %d orders, want 2", len(page))
	}
	if page[0].OrderID != "ORD-005" || page[1].OrderID != "ORD-003" {
		t.Errorf("got %s, %s; want ORD-005, ORD-003", page[0].OrderID, page[1].OrderID)
	}

	// Offset past the end yields an empty page, not an error.
	empty, err := s.ListOrders(ctx, ListOrdersParams{Filter: f, Limit: 10, Offset: 100})
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("got %d orders past the end, want 0", len(empty))
	}
}

func TestMemStoreCountOrders(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	n, err := s.CountOrders(ctx, mustFilter(t, url.Values{}))
	if err != nil {
		t.Fatalf("CountOrders() error = %v", err)
	}
	if n != 6 {
		t.Errorf("count = %d, want 6", n)
	}

	n, _ = s.CountOrders(ctx, mustFilter(t, url.Values{"status": {"Shipped"}}))
	if n != 2 {
		t.Errorf("shipped count = %d, want 2", n)
	}

	n, _ = s.CountOrders(ctx, mustFilter(t, url.Values{"search": {"alice"}}))
	if n != 2 {
		t.Errorf("search count = %d, want 2", n)
	}
}

func TestMemStoreAggregateOrders(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	row, err := s.AggregateOrders(ctx, AggregateOrdersParams{Filter: mustFilter(t, url.Values{})})
	if err != nil {
		t.Fatalf("AggregateOrders() error = %v", err)
	}
	if row.TotalOrders != 6 {
		t.Errorf("totalOrders = %d, want 6", row.TotalOrders)
	}
	wantRevenue := decimal.RequireFromString("958.74")
	if !row.TotalRevenue.Equal(wantRevenue) {
		t.Errorf("totalRevenue = %s, want %s", row.TotalRevenue, wantRevenue)
	}
	wantAvg := wantRevenue.Div(decimal.NewFromInt(6))
	if !row.AverageOrderValue.Equal(wantAvg) {
		t.Errorf("averageOrderValue = %s, want %s", row.AverageOrderValue, wantAvg)
	}
}

func TestMemStoreAggregateOrdersEmpty(t *testing.T) {
	s := NewMemStore()
	row, err := s.AggregateOrders(context.Background(), AggregateOrdersParams{Filter: mustFilter(t, url.Values{})})
	if err != nil {
		t.Fatalf("AggregateOrders() error = %v", err)
	}
	if row.TotalOrders != 0 || !row.TotalRevenue.IsZero() || !row.AverageOrderValue.IsZero() {
		t.Errorf("empty store aggregate = %+v, want zeros", row)
	}
}

func TestMemStoreAggregatePaidOverride(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	// The filter pins paid=false; the override ignores it and counts paid
	// orders against the remaining conditions.
	f := mustFilter(t, url.Values{"paid": {"false"}})
	paid := true
	row, err := s.AggregateOrders(ctx, AggregateOrdersParams{Filter: f, ExcludePaid: true, PaidOverride: &paid})
	if err != nil {
		t.Fatalf("AggregateOrders() error = %v", err)
	}
	if row.TotalOrders != 3 {
		t.Errorf("paid bucket = %d, want 3", row.TotalOrders)
	}

	unpaid := false
	row, _ = s.AggregateOrders(ctx, AggregateOrdersParams{Filter: f, ExcludePaid: true, PaidOverride: &unpaid})
	if row.TotalOrders != 3 {
		t.Errorf("unpaid bucket = %d, want 3", row.TotalOrders)
	}
}

func TestMemStoreAggregateByStatusSparse(t *testing.T) {
	s := seedStore(t)
	rows, err := s.AggregateOrdersByStatus(context.Background(), mustFilter(t, url.Values{"paid": {"true"}}))
	if err != nil {
		t.Fatalf("AggregateOrdersByStatus() error = %v", err)
	}
	// Paid orders span Pending, Shipped, Cancelled; Processing has none and
	// must not produce a zero bucket.
	want := map[string]int64{"Cancelled": 1, "Pending": 1, "Shipped": 1}
	if len(rows) != len(want) {
		t.Fatalf("got %d buckets %v, want %d", len(rows), rows, len(want))
	}
	for _, r := range rows {
		if want[r.Status] != r.Count {
			t.Errorf("bucket %s count = %d, want %d", r.Status, r.Count, want[r.Status])
		}
	}
}

func TestMemStoreGetOrderByOrderID(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	o, err := s.GetOrderByOrderID(ctx, "ORD-003")
	if err != nil {
		t.Fatalf("GetOrderByOrderID() error = %v", err)
	}
	if o.CustomerName != "Carol Chen" {
		t.Errorf("customer = %s, want Carol Chen", o.CustomerName)
	}

	items, err := s.ListOrderItemsByOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("ListOrderItemsByOrder() error = %v", err)
	}
	if len(items) != 1 {
		t.Errorf("got %d items, want 1", len(items))
	}

	if _, err := s.GetOrderByOrderID(ctx, "ORD-MISSING"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing order error = %v, want ErrNotFound", err)
	}
}

func TestMemStoreUpdateOrderPayment(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	before, _ := s.GetOrderByOrderID(ctx, "ORD-003")
	if before.Paid {
		t.Fatal("fixture expects ORD-003 unpaid")
	}

	updated, err := s.UpdateOrderPayment(ctx, "ORD-003", true)
	if err != nil {
		t.Fatalf("UpdateOrderPayment() error = %v", err)
	}
	if !updated.Paid {
		t.Error("order should be paid after update")
	}
	if !updated.UpdatedAt.After(before.UpdatedAt) {
		t.Error("updated_at should advance on payment update")
	}

	again, _ := s.GetOrderByOrderID(ctx, "ORD-003")
	if !again.Paid {
		t.Error("update should persist")
	}

	if _, err := s.UpdateOrderPayment(ctx, "ORD-MISSING", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing order error = %v, want ErrNotFound", err)
	}
}
