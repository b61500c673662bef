package client

import (
	"context"
	"net/url"
	"testing"

	"github.com/orderdesk/api/internal/query"
)

type mockAPI struct {
	ordersPages   []*OrdersPage
	statsResult   *OrderStats
	detailsResult *OrderDetails
	updateResult  *PaymentUpdateResult
	updateErr     error
}

func (m *mockAPI) GetOrders(ctx context.Context, f query.Filter) (*OrdersPage, error) {
	page := m.ordersPages[0]
	if len(m.ordersPages) > 1 {
		m.ordersPages = m.ordersPages[1:]
	}
	return page, nil
}

func (m *mockAPI) GetOrderStats(ctx context.Context, f query.Filter) (*OrderStats, error) {
	return m.statsResult, nil
}

func (m *mockAPI) GetOrderDetails(ctx context.Context, orderID string) (*OrderDetails, error) {
	return m.detailsResult, nil
}

func (m *mockAPI) UpdatePaymentStatus(ctx context.Context, orderID string, paid bool) (*PaymentUpdateResult, error) {
	return m.updateResult, m.updateErr
}

func TestSessionCachesReads(t *testing.T) {
	f := mustFilter(t, url.Values{"status": {"Pending"}})
	api := &mockAPI{
		ordersPages:   []*OrdersPage{cachedPage(Order{OrderID: "ORD-1"})},
		statsResult:   &OrderStats{},
		detailsResult: &OrderDetails{Order: Order{OrderID: "ORD-1"}},
	}
	s := NewSession(api)
	ctx := context.Background()

	if _, err := s.Orders(ctx, f); err != nil {
		t.Fatalf("Orders() error = %v", err)
	}
	if _, ok := s.Cache().Get(ListKey(f)); !ok {
		t.Error("list result should be cached under the filter key")
	}

	if _, err := s.Stats(ctx, f); err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if _, ok := s.Cache().Get(StatsKey(f)); !ok {
		t.Error("stats result should be cached under the pagination-free key")
	}

	if _, err := s.Details(ctx, "ORD-1"); err != nil {
		t.Fatalf("Details() error = %v", err)
	}
	if _, ok := s.Cache().Get(DetailKey("ORD-1")); !ok {
		t.Error("details should be cached by business id")
	}
}

func TestSessionToggleInvalidatesStats(t *testing.T) {
	f := mustFilter(t, url.Values{})
	api := &mockAPI{
		ordersPages:  []*OrdersPage{cachedPage(Order{OrderID: "ORD-1", Paid: false})},
		statsResult:  &OrderStats{},
		updateResult: &PaymentUpdateResult{Message: "Order successfully marked as paid"},
	}
	s := NewSession(api)
	ctx := context.Background()

	if _, err := s.Orders(ctx, f); err != nil {
		t.Fatalf("Orders() error = %v", err)
	}
	if _, err := s.Stats(ctx, f); err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	outcome, err := s.TogglePayment(ctx, "ORD-1", true)
	if err != nil {
		t.Fatalf("TogglePayment() error = %v", err)
	}
	if outcome.State != StateCommitted || !outcome.Patched {
		t.Errorf("outcome = %+v", outcome)
	}

	if s.Cache().Len(KindStats) != 0 {
		t.Error("stats cache should be empty after a committed toggle")
	}
	v, _ := s.Cache().Get(ListKey(f))
	if !v.(*OrdersPage).Orders[0].Paid {
		t.Error("list cache should keep the optimistic value")
	}
}
