package database

import (
	"strings"

	"github.com/orderdesk/api/internal/enum"
	"github.com/orderdesk/api/internal/query"
)

// Predicate is a single boolean condition over an order. A filter expands to
// one predicate per set field; the set is conjoined with MatchesAll.
type Predicate func(Order) bool

// BuildPredicates converts a validated filter into its predicate set. When
// excludePaid is set the paid condition is omitted regardless of the filter,
// so payment-breakdown aggregation runs against the rest of the active
// filters instead of a paid constraint that would empty one bucket.
//
// The Postgres store mirrors these seven conditions in SQL (see whereClause);
// this set is authoritative for the in-memory store.
func BuildPredicates(f query.Filter, excludePaid bool) []Predicate {
	var preds []Predicate

	if f.Status != nil {
		status := *f.Status
		preds = append(preds, func(o Order) bool { return o.Status == status })
	}
	if !excludePaid && f.Paid != nil {
		paid := *f.Paid
		preds = append(preds, func(o Order) bool { return o.Paid == paid })
	}
	if f.Search != nil {
		needle := strings.ToLower(*f.Search)
		preds = append(preds, func(o Order) bool {
			return strings.Contains(strings.ToLower(o.CustomerName), needle)
		})
	}
	if f.DateFrom != nil {
		from := *f.DateFrom
		preds = append(preds, func(o Order) bool { return !o.CreatedAt.Before(from) })
	}
	if f.DateTo != nil {
		to := *f.DateTo
		preds = append(preds, func(o Order) bool { return !o.CreatedAt.After(to) })
	}
	if f.MinTotal != nil {
		min := *f.MinTotal
		preds = append(preds, func(o Order) bool { return o.Total.Cmp(min) >= 0 })
	}
	if f.MaxTotal != nil {
		max := *f.MaxTotal
		preds = append(preds, func(o Order) bool { return o.Total.Cmp(max) <= 0 })
	}

	return preds
}

// MatchesAll reports whether the order satisfies every predicate.
func MatchesAll(o Order, preds []Predicate) bool {
	for _, p := range preds {
		if !p(o) {
			return false
		}
	}
	return true
}

// Less returns a strict ordering for the given sort field and direction.
// Ties on the primary key fall back to surrogate id ascending so paging stays
// deterministic; the direction never flips the tiebreak.
func Less(sortBy, sortOrder string) func(a, b Order) bool {
	desc := sortOrder == enum.SortOrderDesc

	cmp := func(a, b Order) int {
		switch sortBy {
		case enum.SortByTotal:
			return a.Total.Cmp(b.Total)
		case enum.SortByCustomerName:
			return strings.Compare(a.CustomerName, b.CustomerName)
		case enum.SortByStatus:
			return strings.Compare(a.Status, b.Status)
		default: // createdAt
			switch {
			case a.CreatedAt.Before(b.CreatedAt):
				return -1
			case a.CreatedAt.After(b.CreatedAt):
				return 1
			}
			return 0
		}
	}

	return func(a, b Order) bool {
		c := cmp(a, b)
		if c == 0 {
			return a.ID < b.ID
		}
		if desc {
			return c > 0
		}
		return c < 0
	}
}
