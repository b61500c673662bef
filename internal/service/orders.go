// Package service holds the order query and stats aggregation engines.
package service

import (
	"context"

	"github.com/orderdesk/api/internal/database"
	"github.com/orderdesk/api/internal/query"
)

// OrderLister defines the store methods the query engine needs.
// Satisfied by *database.Queries and *database.MemStore; narrow interface for
// testability.
type OrderLister interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	CountOrders(ctx context.Context, f query.Filter) (int64, error)
}

// Pagination is the page metadata returned with every list result.
type Pagination struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	Total           int64 `json:"total"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// QueryResult is one page of orders plus its pagination metadata.
type QueryResult struct {
	Orders     []database.Order
	Pagination Pagination
}

// Orders applies the full predicate set, sorting, and pagination to produce
// pages of orders.
type Orders struct {
	store OrderLister
}

// NewOrders creates the order query engine.
func NewOrders(store OrderLister) *Orders {
	return &Orders{store: store}
}

// Query runs the list query for a validated filter. A page past the end
// yields an empty page with truthful metadata; the requested page is never
// silently clamped.
func (s *Orders) Query(ctx context.Context, f query.Filter) (QueryResult, error) {
	total, err := s.store.CountOrders(ctx, f)
	if err != nil {
		return QueryResult{}, err
	}

	totalPages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	offset := (f.Page - 1) * f.Limit

	orders, err := s.store.ListOrders(ctx, database.ListOrdersParams{
		Filter: f,
		Limit:  int32(f.Limit),
		Offset: int32(offset),
	})
	if err != nil {
		return QueryResult{}, err
	}

	return QueryResult{
		Orders: orders,
		Pagination: Pagination{
			Page:            f.Page,
			Limit:           f.Limit,
			Total:           total,
			TotalPages:      totalPages,
			HasNextPage:     f.Page < totalPages,
			HasPreviousPage: f.Page > 1,
		},
	}, nil
}
