// Package query turns raw order-dashboard query parameters into a validated
// filter descriptor and derives predicates, sort comparators, and canonical
// cache keys from it.
package query

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/orderdesk/api/internal/enum"
	"github.com/shopspring/decimal"
)

const (
	// DefaultLimit is the page size used when none is requested.
	DefaultLimit = 10
	// MaxLimit caps the page size; larger requests are clamped, not rejected.
	MaxLimit = 100
)

var (
	moneyPattern  = regexp.MustCompile(`^\d+(\.\d{2})?$`)
	digitsPattern = regexp.MustCompile(`^\d+$`)

	// OrderIDPattern constrains business order ids end to end: URL params,
	// client-side mutation input, and seeded data all validate against it.
	OrderIDPattern = regexp.MustCompile(`^[A-Z0-9-]{1,50}$`)
)

// Filter is the validated, fully-typed representation of user-supplied query
// constraints. Optional fields are pointers: non-nil means present and valid.
// A Filter is only ever produced by Normalize; callers treat it as immutable.
type Filter struct {
	Status   *string
	Paid     *bool
	Search   *string
	DateFrom *time.Time
	DateTo   *time.Time
	MinTotal *decimal.Decimal
	MaxTotal *decimal.Decimal

	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// FieldError describes a single hard validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors aggregates every violated field so the caller never sees a
// partially applied normalization.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	fields := make([]string, len(e))
	for i, fe := range e {
		fields[i] = fe.Field
	}
	return "invalid query parameters: " + strings.Join(fields, ", ")
}

// Normalize parses raw query parameters into a Filter.
//
// Hard rules (status, minTotal/maxTotal format, sortBy/sortOrder) reject the
// whole request via FieldErrors. Defensive rules degrade instead: unparsable
// dates and non-boolean paid values are treated as absent, and an over-cap
// limit is clamped. Normalize is total and idempotent: re-normalizing the
// parameters a Filter encodes yields an equal Filter.
func Normalize(params url.Values) (Filter, error) {
	f := Filter{
		Page:      1,
		Limit:     DefaultLimit,
		SortBy:    enum.SortByCreatedAt,
		SortOrder: enum.SortOrderDesc,
	}
	var errs FieldErrors

	if s := params.Get("status"); s != "" {
		if enum.IsValidOrderStatus(s) {
			f.Status = &s
		} else {
			errs = append(errs, FieldError{"status", "must be one of Pending, Processing, Shipped, Cancelled"})
		}
	}

	switch params.Get("paid") {
	case "true":
		v := true
		f.Paid = &v
	case "false":
		v := false
		f.Paid = &v
	}

	if s := params.Get("search"); s != "" {
		f.Search = &s
	}

	if s := params.Get("dateFrom"); s != "" {
		if t, ok := parseDate(s, false); ok {
			f.DateFrom = &t
		}
	}
	if s := params.Get("dateTo"); s != "" {
		if t, ok := parseDate(s, true); ok {
			f.DateTo = &t
		}
	}

	if s := params.Get("minTotal"); s != "" {
		if moneyPattern.MatchString(s) {
			d, _ := decimal.NewFromString(s)
			f.MinTotal = &d
		} else {
			errs = append(errs, FieldError{"minTotal", "must match " + moneyPattern.String()})
		}
	}
	if s := params.Get("maxTotal"); s != "" {
		if moneyPattern.MatchString(s) {
			d, _ := decimal.NewFromString(s)
			f.MaxTotal = &d
		} else {
			errs = append(errs, FieldError{"maxTotal", "must match " + moneyPattern.String()})
		}
	}

	if s := params.Get("page"); s != "" && digitsPattern.MatchString(s) {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			f.Page = v
		}
	}
	if s := params.Get("limit"); s != "" && digitsPattern.MatchString(s) {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			f.Limit = v
		}
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}

	if s := params.Get("sortBy"); s != "" {
		switch s {
		case enum.SortByCreatedAt, enum.SortByTotal, enum.SortByCustomerName, enum.SortByStatus:
			f.SortBy = s
		default:
			errs = append(errs, FieldError{"sortBy", "must be one of createdAt, total, customerName, status"})
		}
	}
	if s := params.Get("sortOrder"); s != "" {
		switch s {
		case enum.SortOrderAsc, enum.SortOrderDesc:
			f.SortOrder = s
		default:
			errs = append(errs, FieldError{"sortOrder", "must be asc or desc"})
		}
	}

	if len(errs) > 0 {
		return Filter{}, errs
	}
	return f, nil
}

// parseDate accepts RFC 3339 timestamps and bare YYYY-MM-DD dates.
// A bare date is midnight UTC; when endOfDay is set it is advanced to the
// last instant of that day so date-only ranges include the whole end day.
func parseDate(s string, endOfDay bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t, true
	}
	return time.Time{}, false
}

// Params re-encodes the filter as canonical query parameters. Normalize is the
// inverse: Normalize(f.Params()) == f.
func (f Filter) Params() url.Values {
	v := url.Values{}
	if f.Status != nil {
		v.Set("status", *f.Status)
	}
	if f.Paid != nil {
		v.Set("paid", strconv.FormatBool(*f.Paid))
	}
	if f.Search != nil {
		v.Set("search", *f.Search)
	}
	if f.DateFrom != nil {
		v.Set("dateFrom", f.DateFrom.Format(time.RFC3339Nano))
	}
	if f.DateTo != nil {
		v.Set("dateTo", f.DateTo.Format(time.RFC3339Nano))
	}
	if f.MinTotal != nil {
		v.Set("minTotal", f.MinTotal.StringFixed(2))
	}
	if f.MaxTotal != nil {
		v.Set("maxTotal", f.MaxTotal.StringFixed(2))
	}
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("limit", strconv.Itoa(f.Limit))
	v.Set("sortBy", f.SortBy)
	v.Set("sortOrder", f.SortOrder)
	return v
}

// Key is the canonical string form of the filter, used as the cache key
// component. url.Values.Encode sorts by key, so equal filters always produce
// equal keys.
func (f Filter) Key() string {
	return f.Params().Encode()
}

// WithoutPagination strips page, limit, and sort so stats queries derived from
// a list filter share one predicate set regardless of the visible page.
func (f Filter) WithoutPagination() Filter {
	f.Page = 1
	f.Limit = DefaultLimit
	f.SortBy = enum.SortByCreatedAt
	f.SortOrder = enum.SortOrderDesc
	return f
}

// WithoutPaid clears the paid constraint. The payment breakdown aggregates
// under this derived filter so neither bucket is trivially empty.
func (f Filter) WithoutPaid() Filter {
	f.Paid = nil
	return f
}

// Applied reports the filter fields that are actually set, echoed back to
// callers alongside query results.
func (f Filter) Applied(includePagination bool) map[string]interface{} {
	m := map[string]interface{}{}
	if f.Status != nil {
		m["status"] = *f.Status
	}
	if f.Paid != nil {
		m["paid"] = *f.Paid
	}
	if f.Search != nil {
		m["search"] = *f.Search
	}
	if f.DateFrom != nil {
		m["dateFrom"] = f.DateFrom.Format(time.RFC3339Nano)
	}
	if f.DateTo != nil {
		m["dateTo"] = f.DateTo.Format(time.RFC3339Nano)
	}
	if f.MinTotal != nil {
		m["minTotal"] = f.MinTotal.StringFixed(2)
	}
	if f.MaxTotal != nil {
		m["maxTotal"] = f.MaxTotal.StringFixed(2)
	}
	if includePagination {
		m["page"] = f.Page
		m["limit"] = f.Limit
		m["sortBy"] = f.SortBy
		m["sortOrder"] = f.SortOrder
	}
	return m
}

// Equal reports whether two filters describe the same query.
func (f Filter) Equal(other Filter) bool {
	return f.Key() == other.Key()
}

// ValidateOrderID checks a business order id against the accepted pattern.
func ValidateOrderID(orderID string) error {
	if !OrderIDPattern.MatchString(orderID) {
		return fmt.Errorf("order ID must contain only uppercase letters, numbers, and hyphens (1-50 chars)")
	}
	return nil
}
