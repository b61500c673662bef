package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/orderdesk/api/internal/query"
	"github.com/shopspring/decimal"
)

// MemStore is an in-memory Store. It backs the embedded demo mode of the
// server and the engine-level tests, and its filtering runs entirely on the
// predicate set from BuildPredicates, making that set the executable
// definition of the filter semantics.
type MemStore struct {
	mu     sync.RWMutex
	orders []Order
	items  map[int64][]OrderItem

	nextOrderID int64
	nextItemID  int64
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{items: make(map[int64][]OrderItem)}
}

// InsertOrder stores an order, assigning the surrogate id and timestamps when
// unset, and returns the stored value.
func (s *MemStore) InsertOrder(o Order) Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == 0 {
		s.nextOrderID++
		o.ID = s.nextOrderID
	} else if o.ID > s.nextOrderID {
		s.nextOrderID = o.ID
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
	s.orders = append(s.orders, o)
	return o
}

// InsertOrderItem stores an item under its order's surrogate id.
func (s *MemStore) InsertOrderItem(it OrderItem) OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if it.ID == 0 {
		s.nextItemID++
		it.ID = s.nextItemID
	}
	s.items[it.OrderID] = append(s.items[it.OrderID], it)
	return it
}

func (s *MemStore) filtered(f query.Filter, excludePaid bool, paidOverride *bool) []Order {
	preds := BuildPredicates(f, excludePaid)
	if paidOverride != nil {
		paid := *paidOverride
		preds = append(preds, func(o Order) bool { return o.Paid == paid })
	}

	var matched []Order
	for _, o := range s.orders {
		if MatchesAll(o, preds) {
			matched = append(matched, o)
		}
	}
	return matched
}

// ListOrders returns one page of filtered orders.
func (s *MemStore) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filtered(arg.Filter, false, nil)
	less := Less(arg.Filter.SortBy, arg.Filter.SortOrder)
	sort.SliceStable(matched, func(i, j int) bool { return less(matched[i], matched[j]) })

	start := int(arg.Offset)
	if start >= len(matched) {
		return nil, nil
	}
	end := start + int(arg.Limit)
	if end > len(matched) {
		end = len(matched)
	}
	page := make([]Order, end-start)
	copy(page, matched[start:end])
	return page, nil
}

// CountOrders counts all orders matching the full filter.
func (s *MemStore) CountOrders(ctx context.Context, f query.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.filtered(f, false, nil))), nil
}

// AggregateOrders computes count, revenue sum, and average order value.
func (s *MemStore) AggregateOrders(ctx context.Context, arg AggregateOrdersParams) (AggregateOrdersRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filtered(arg.Filter, arg.ExcludePaid, arg.PaidOverride)

	row := AggregateOrdersRow{TotalOrders: int64(len(matched))}
	for _, o := range matched {
		row.TotalRevenue = row.TotalRevenue.Add(o.Total)
	}
	if row.TotalOrders > 0 {
		row.AverageOrderValue = row.TotalRevenue.Div(decimal.NewFromInt(row.TotalOrders))
	}
	return row, nil
}

// AggregateOrdersByStatus groups matching orders by status; only statuses
// present in the filtered set produce a bucket.
func (s *MemStore) AggregateOrdersByStatus(ctx context.Context, f query.Filter) ([]StatusAggregateRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buckets := make(map[string]*StatusAggregateRow)
	for _, o := range s.filtered(f, false, nil) {
		b, ok := buckets[o.Status]
		if !ok {
			b = &StatusAggregateRow{Status: o.Status}
			buckets[o.Status] = b
		}
		b.Count++
		b.Revenue = b.Revenue.Add(o.Total)
	}

	var rows []StatusAggregateRow
	for _, b := range buckets {
		rows = append(rows, *b)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Status < rows[j].Status })
	return rows, nil
}

// GetOrderByOrderID looks up a single order by its business id.
func (s *MemStore) GetOrderByOrderID(ctx context.Context, orderID string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.OrderID == orderID {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

// ListOrderItemsByOrder returns the items belonging to an order.
func (s *MemStore) ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.items[orderID]
	out := make([]OrderItem, len(items))
	copy(out, items)
	return out, nil
}

// UpdateOrderPayment sets the paid flag and bumps updated_at.
func (s *MemStore) UpdateOrderPayment(ctx context.Context, orderID string, paid bool) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].OrderID == orderID {
			s.orders[i].Paid = paid
			s.orders[i].UpdatedAt = time.Now().UTC()
			return s.orders[i], nil
		}
	}
	return Order{}, ErrNotFound
}
