package database

import (
	"net/url"
	"testing"
	"time"

	"github.com/orderdesk/api/internal/enum"
	"github.com/orderdesk/api/internal/query"
	"github.com/shopspring/decimal"
)

func mustFilter(t *testing.T, params url.Values) query.Filter {
	t.Helper()
	f, err := query.Normalize(params)
	if err != nil {
		t.Fatalf("Normalize(%v) error = %v", params, err)
	}
	return f
}

func testOrder(id int64, status string, paid bool, total string, created time.Time) Order {
	return Order{
		ID:           id,
		OrderID:      "ORD-TEST",
		CustomerName: "Alice Johnson",
		Status:       status,
		Total:        decimal.RequireFromString(total),
		Paid:         paid,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestBuildPredicatesEmptyFilter(t *testing.T) {
	preds := BuildPredicates(mustFilter(t, url.Values{}), false)
	if len(preds) != 0 {
		t.Errorf("empty filter produced %d predicates, want 0", len(preds))
	}
}

func TestBuildPredicatesMatching(t *testing.T) {
	jan15 := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		params url.Values
		order  Order
		want   bool
	}{
		{"status match", url.Values{"status": {"Shipped"}}, testOrder(1, "Shipped", true, "50.00", jan15), true},
		{"status mismatch", url.Values{"status": {"Shipped"}}, testOrder(1, "Pending", true, "50.00", jan15), false},
		{"paid match", url.Values{"paid": {"false"}}, testOrder(1, "Pending", false, "50.00", jan15), true},
		{"paid mismatch", url.Values{"paid": {"false"}}, testOrder(1, "Pending", true, "50.00", jan15), false},
		{"search case-insensitive", url.Values{"search": {"aLiCe"}}, testOrder(1, "Pending", true, "50.00", jan15), true},
		{"search substring", url.Values{"search": {"johnson"}}, testOrder(1, "Pending", true, "50.00", jan15), true},
		{"search miss", url.Values{"search": {"bob"}}, testOrder(1, "Pending", true, "50.00", jan15), false},
		{"dateFrom inclusive", url.Values{"dateFrom": {"2024-01-15T12:00:00Z"}}, testOrder(1, "Pending", true, "50.00", jan15), true},
		{"dateFrom excludes earlier", url.Values{"dateFrom": {"2024-01-16"}}, testOrder(1, "Pending", true, "50.00", jan15), false},
		{"bare dateTo includes same-day evening", url.Values{"dateTo": {"2024-01-15"}},
			testOrder(1, "Pending", true, "50.00", time.Date(2024, 1, 15, 23, 59, 59, 0, time.UTC)), true},
		{"dateTo excludes next day", url.Values{"dateTo": {"2024-01-14"}}, testOrder(1, "Pending", true, "50.00", jan15), false},
		{"minTotal inclusive", url.Values{"minTotal": {"50.00"}}, testOrder(1, "Pending", true, "50.00", jan15), true},
		{"minTotal excludes below", url.Values{"minTotal": {"50.01"}}, testOrder(1, "Pending", true, "50.00", jan15), false},
		{"maxTotal inclusive", url.Values{"maxTotal": {"50.00"}}, testOrder(1, "Pending", true, "50.00", jan15), true},
		{"maxTotal excludes above", url.Values{"maxTotal": {"49.99"}}, testOrder(1, "Pending", true, "50.00", jan15), false},
		{
			"conjunction",
			url.Values{"status": {"Shipped"}, "paid": {"true"}, "minTotal": {"10"}},
			testOrder(1, "Shipped", true, "50.00", jan15),
			true,
		},
		{
			"conjunction one miss",
			url.Values{"status": {"Shipped"}, "paid": {"true"}, "minTotal": {"100"}},
			testOrder(1, "Shipped", true, "50.00", jan15),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preds := BuildPredicates(mustFilter(t, tt.params), false)
			if got := MatchesAll(tt.order, preds); got != tt.want {
				t.Errorf("MatchesAll = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildPredicatesExcludePaid(t *testing.T) {
	f := mustFilter(t, url.Values{"paid": {"true"}, "status": {"Pending"}})
	preds := BuildPredicates(f, true)

	unpaid := testOrder(1, "Pending", false, "50.00", time.Now())
	if !MatchesAll(unpaid, preds) {
		t.Error("excludePaid must drop the paid condition but keep the rest")
	}
	wrongStatus := testOrder(2, "Shipped", false, "50.00", time.Now())
	if MatchesAll(wrongStatus, preds) {
		t.Error("excludePaid must not drop other conditions")
	}
}

func TestLessOrdering(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	a := testOrder(1, "Pending", true, "10.00", early)
	b := testOrder(2, "Shipped", true, "20.00", late)

	tests := []struct {
		name      string
		sortBy    string
		sortOrder string
		first     Order
	}{
		{"createdAt asc", enum.SortByCreatedAt, enum.SortOrderAsc, a},
		{"createdAt desc", enum.SortByCreatedAt, enum.SortOrderDesc, b},
		{"total asc", enum.SortByTotal, enum.SortOrderAsc, a},
		{"total desc", enum.SortByTotal, enum.SortOrderDesc, b},
		{"status asc", enum.SortByStatus, enum.SortOrderAsc, a},
		{"status desc", enum.SortByStatus, enum.SortOrderDesc, b},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			less := Less(tt.sortBy, tt.sortOrder)
			second := b
			if tt.first.ID == b.ID {
				second = a
			}
			if !less(tt.first, second) {
				t.Errorf("expected order %d before %d", tt.first.ID, second.ID)
			}
			if less(second, tt.first) {
				t.Error("ordering is not antisymmetric")
			}
		})
	}
}

func TestLessTiebreakIsAlwaysIDAscending(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := testOrder(1, "Pending", true, "10.00", created)
	b := testOrder(2, "Pending", true, "10.00", created)

	for _, order := range []string{enum.SortOrderAsc, enum.SortOrderDesc} {
		less := Less(enum.SortByTotal, order)
		if !less(a, b) {
			t.Errorf("sortOrder=%s: tied orders must fall back to id ascending", order)
		}
		if less(b, a) {
			t.Errorf("sortOrder=%s: tiebreak must not flip with direction", order)
		}
	}
}
