package service

import (
	"context"

	"github.com/orderdesk/api/internal/database"
	"github.com/orderdesk/api/internal/query"
	"golang.org/x/sync/errgroup"
)

// OrderAggregator defines the store methods the stats engine needs.
// Satisfied by *database.Queries and *database.MemStore; narrow interface for
// testability.
type OrderAggregator interface {
	AggregateOrders(ctx context.Context, arg database.AggregateOrdersParams) (database.AggregateOrdersRow, error)
	AggregateOrdersByStatus(ctx context.Context, f query.Filter) ([]database.StatusAggregateRow, error)
}

// Overview is the headline rollup over the fully filtered set.
type Overview struct {
	TotalOrders       int64   `json:"totalOrders"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

// StatusBucket is one row of the per-status breakdown. Statuses with zero
// matching orders are omitted, so callers must not assume all four are
// present.
type StatusBucket struct {
	Status  string  `json:"status"`
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

// PaymentBucket is one side of the paid/unpaid breakdown.
type PaymentBucket struct {
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

// PaymentStatus is the paid/unpaid breakdown, computed with the paid filter
// excluded from the shared predicate set.
type PaymentStatus struct {
	Paid   PaymentBucket `json:"paid"`
	Unpaid PaymentBucket `json:"unpaid"`
}

// StatsResult is the merged output of the three sub-aggregations. It is
// derived state, recomputed per request and never persisted.
type StatsResult struct {
	Overview        Overview       `json:"overview"`
	StatusBreakdown []StatusBucket `json:"statusBreakdown"`
	PaymentStatus   PaymentStatus  `json:"paymentStatus"`
}

// Stats computes overview, status breakdown, and payment breakdown under
// predicate sets derived from a single filter.
type Stats struct {
	store OrderAggregator
}

// NewStats creates the stats aggregation engine.
func NewStats(store OrderAggregator) *Stats {
	return &Stats{store: store}
}

// Aggregate runs the three sub-aggregations concurrently and merges them.
//
// Overview and status breakdown use the full predicate set. The payment
// breakdown drops the paid filter and evaluates twice, once per paid value:
// leaving the paid filter in would make one bucket of the very breakdown
// meant to explain payment status vacuous.
func (s *Stats) Aggregate(ctx context.Context, f query.Filter) (StatsResult, error) {
	var result StatsResult
	result.StatusBreakdown = []StatusBucket{}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		row, err := s.store.AggregateOrders(ctx, database.AggregateOrdersParams{Filter: f})
		if err != nil {
			return err
		}
		result.Overview = Overview{
			TotalOrders:       row.TotalOrders,
			TotalRevenue:      row.TotalRevenue.InexactFloat64(),
			AverageOrderValue: row.AverageOrderValue.InexactFloat64(),
		}
		return nil
	})

	g.Go(func() error {
		rows, err := s.store.AggregateOrdersByStatus(ctx, f)
		if err != nil {
			return err
		}
		buckets := make([]StatusBucket, len(rows))
		for i, r := range rows {
			buckets[i] = StatusBucket{
				Status:  r.Status,
				Count:   r.Count,
				Revenue: r.Revenue.InexactFloat64(),
			}
		}
		result.StatusBreakdown = buckets
		return nil
	})

	g.Go(func() error {
		paid := true
		paidRow, err := s.store.AggregateOrders(ctx, database.AggregateOrdersParams{
			Filter:       f,
			ExcludePaid:  true,
			PaidOverride: &paid,
		})
		if err != nil {
			return err
		}
		unpaid := false
		unpaidRow, err := s.store.AggregateOrders(ctx, database.AggregateOrdersParams{
			Filter:       f,
			ExcludePaid:  true,
			PaidOverride: &unpaid,
		})
		if err != nil {
			return err
		}
		result.PaymentStatus = PaymentStatus{
			Paid:   PaymentBucket{Count: paidRow.TotalOrders, Revenue: paidRow.TotalRevenue.InexactFloat64()},
			Unpaid: PaymentBucket{Count: unpaidRow.TotalOrders, Revenue: unpaidRow.TotalRevenue.InexactFloat64()},
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return StatsResult{}, err
	}
	return result, nil
}
