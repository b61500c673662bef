package client

import (
	"context"

	"github.com/orderdesk/api/internal/query"
)

// OrdersAPI is the full remote surface a dashboard session consumes.
// Satisfied by *OrdersClient.
type OrdersAPI interface {
	GetOrders(ctx context.Context, f query.Filter) (*OrdersPage, error)
	GetOrderStats(ctx context.Context, f query.Filter) (*OrderStats, error)
	GetOrderDetails(ctx context.Context, orderID string) (*OrderDetails, error)
	PaymentUpdater
}

// Session ties the transport, the cache, and the mutation coordinator
// together: reads go through the cache's query ordering protocol, writes go
// through the coordinator.
type Session struct {
	api       OrdersAPI
	cache     *Cache
	mutations *MutationCoordinator
}

// NewSession creates a session with a fresh cache.
func NewSession(api OrdersAPI) *Session {
	cache := NewCache()
	return &Session{
		api:       api,
		cache:     cache,
		mutations: NewMutationCoordinator(cache, api),
	}
}

// Cache exposes the session's cache for direct reads (e.g. instant render of
// last-known data while a refetch is in flight).
func (s *Session) Cache() *Cache { return s.cache }

// Orders fetches a page of orders and records it in the cache unless a more
// recent read or a pending optimistic mutation supersedes it.
func (s *Session) Orders(ctx context.Context, f query.Filter) (*OrdersPage, error) {
	gen := s.cache.BeginQuery(KindList)
	page, err := s.api.GetOrders(ctx, f)
	if err != nil {
		return nil, err
	}
	s.cache.CompleteQuery(ListKey(f), gen, page)
	return page, nil
}

// Stats fetches aggregate stats and caches them under the pagination-free
// form of the filter.
func (s *Session) Stats(ctx context.Context, f query.Filter) (*OrderStats, error) {
	gen := s.cache.BeginQuery(KindStats)
	stats, err := s.api.GetOrderStats(ctx, f)
	if err != nil {
		return nil, err
	}
	s.cache.CompleteQuery(StatsKey(f), gen, stats)
	return stats, nil
}

// Details fetches one order with its items and caches it by business id.
func (s *Session) Details(ctx context.Context, orderID string) (*OrderDetails, error) {
	gen := s.cache.BeginQuery(KindDetail)
	details, err := s.api.GetOrderDetails(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.cache.CompleteQuery(DetailKey(orderID), gen, details)
	return details, nil
}

// TogglePayment runs the optimistic payment mutation.
func (s *Session) TogglePayment(ctx context.Context, orderID string, paid bool) (*MutationOutcome, error) {
	return s.mutations.TogglePayment(ctx, orderID, paid)
}
