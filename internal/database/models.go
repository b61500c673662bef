// Package database holds the order data model and the two stores that serve
// it: a Postgres-backed store (pgx) and an in-memory store driven by the same
// predicate set.
package database

import (
	"context"
	"errors"
	"time"

	"github.com/orderdesk/api/internal/query"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a referenced order does not exist.
// Both store implementations translate their native miss into this sentinel.
var ErrNotFound = errors.New("order not found")

// Order is a commercial order row. ID is the immutable surrogate key; OrderID
// is the immutable business id shown to operators. Total always carries
// exactly two fractional digits on the wire.
type Order struct {
	ID           int64
	OrderID      string
	CustomerName string
	Status       string
	Total        decimal.Decimal
	Paid         bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrderItem belongs to exactly one order and is cascade-deleted with it.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductName string
	Quantity    int32
	Price       decimal.Decimal
}

// ListOrdersParams selects one page of filtered, sorted orders.
type ListOrdersParams struct {
	Filter query.Filter
	Limit  int32
	Offset int32
}

// AggregateOrdersParams controls which predicate set an aggregate runs under.
// ExcludePaid drops the filter's paid constraint; PaidOverride conjoins an
// explicit paid condition on top of whatever remains.
type AggregateOrdersParams struct {
	Filter       query.Filter
	ExcludePaid  bool
	PaidOverride *bool
}

// AggregateOrdersRow is a count/sum/avg rollup. Empty result sets resolve to
// zero values, never absent ones.
type AggregateOrdersRow struct {
	TotalOrders       int64
	TotalRevenue      decimal.Decimal
	AverageOrderValue decimal.Decimal
}

// StatusAggregateRow is one GROUP BY status bucket. Statuses with no matching
// rows produce no bucket.
type StatusAggregateRow struct {
	Status  string
	Count   int64
	Revenue decimal.Decimal
}

// Store is the persistence surface the engines run on.
// Satisfied by *Queries (Postgres) and *MemStore.
type Store interface {
	ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error)
	CountOrders(ctx context.Context, f query.Filter) (int64, error)
	AggregateOrders(ctx context.Context, arg AggregateOrdersParams) (AggregateOrdersRow, error)
	AggregateOrdersByStatus(ctx context.Context, f query.Filter) ([]StatusAggregateRow, error)
	GetOrderByOrderID(ctx context.Context, orderID string) (Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]OrderItem, error)
	UpdateOrderPayment(ctx context.Context, orderID string, paid bool) (Order, error)
}
