package database

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/orderdesk/api/internal/enum"
	"github.com/orderdesk/api/internal/query"
	"github.com/shopspring/decimal"
)

// DBTX is the subset of pgx methods the queries need.
// Satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Queries is the Postgres-backed store.
type Queries struct {
	db DBTX
}

// New creates a Queries over a pool or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const orderColumns = "id, order_id, customer_name, status, total, paid, created_at, updated_at"

// sortColumns whitelists sort fields; sortBy is never interpolated raw.
var sortColumns = map[string]string{
	enum.SortByCreatedAt:    "created_at",
	enum.SortByTotal:        "total",
	enum.SortByCustomerName: "customer_name",
	enum.SortByStatus:       "status",
}

// whereClause renders the filter's predicate set as SQL. It mirrors
// BuildPredicates condition for condition; the two must stay in lockstep.
func whereClause(f query.Filter, excludePaid bool, paidOverride *bool) (string, []interface{}) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Status != nil {
		conds = append(conds, "status = "+arg(*f.Status))
	}
	if !excludePaid && f.Paid != nil {
		conds = append(conds, "paid = "+arg(*f.Paid))
	}
	if paidOverride != nil {
		conds = append(conds, "paid = "+arg(*paidOverride))
	}
	if f.Search != nil {
		conds = append(conds, "customer_name ILIKE "+arg("%"+*f.Search+"%"))
	}
	if f.DateFrom != nil {
		conds = append(conds, "created_at >= "+arg(*f.DateFrom))
	}
	if f.DateTo != nil {
		conds = append(conds, "created_at <= "+arg(*f.DateTo))
	}
	if f.MinTotal != nil {
		conds = append(conds, "total >= "+arg(*f.MinTotal))
	}
	if f.MaxTotal != nil {
		conds = append(conds, "total <= "+arg(*f.MaxTotal))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListOrders returns one page of filtered orders, sorted with an id ASC
// tiebreak so equal sort keys page deterministically.
func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	where, args := whereClause(arg.Filter, false, nil)

	col := sortColumns[arg.Filter.SortBy]
	if col == "" {
		col = "created_at"
	}
	dir := "DESC"
	if arg.Filter.SortOrder == enum.SortOrderAsc {
		dir = "ASC"
	}

	sql := "SELECT " + orderColumns + " FROM orders" + where +
		" ORDER BY " + col + " " + dir + ", id ASC" +
		" LIMIT $" + strconv.Itoa(len(args)+1) +
		" OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// CountOrders counts all rows matching the full filter predicate set.
func (q *Queries) CountOrders(ctx context.Context, f query.Filter) (int64, error) {
	where, args := whereClause(f, false, nil)
	var n int64
	err := q.db.QueryRow(ctx, "SELECT COUNT(*) FROM orders"+where, args...).Scan(&n)
	return n, err
}

// AggregateOrders computes count, revenue sum, and average order value under
// the requested predicate set. NULL sums coalesce to zero.
func (q *Queries) AggregateOrders(ctx context.Context, arg AggregateOrdersParams) (AggregateOrdersRow, error) {
	where, args := whereClause(arg.Filter, arg.ExcludePaid, arg.PaidOverride)

	var row AggregateOrdersRow
	var sum, avg pgtype.Numeric
	err := q.db.QueryRow(ctx,
		"SELECT COUNT(*), COALESCE(SUM(total), 0), COALESCE(AVG(total), 0) FROM orders"+where,
		args...,
	).Scan(&row.TotalOrders, &sum, &avg)
	if err != nil {
		return AggregateOrdersRow{}, err
	}
	row.TotalRevenue = numericToDecimal(sum)
	row.AverageOrderValue = numericToDecimal(avg)
	return row, nil
}

// AggregateOrdersByStatus groups the full predicate set by status. Only
// statuses present in the filtered set produce a row.
func (q *Queries) AggregateOrdersByStatus(ctx context.Context, f query.Filter) ([]StatusAggregateRow, error) {
	where, args := whereClause(f, false, nil)

	rows, err := q.db.Query(ctx,
		"SELECT status, COUNT(*), COALESCE(SUM(total), 0) FROM orders"+where+" GROUP BY status",
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusAggregateRow
	for rows.Next() {
		var r StatusAggregateRow
		var sum pgtype.Numeric
		if err := rows.Scan(&r.Status, &r.Count, &sum); err != nil {
			return nil, err
		}
		r.Revenue = numericToDecimal(sum)
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetOrderByOrderID looks up a single order by its business id.
func (q *Queries) GetOrderByOrderID(ctx context.Context, orderID string) (Order, error) {
	row := q.db.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE order_id = $1", orderID)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

// ListOrderItemsByOrder returns the items belonging to an order.
func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx,
		"SELECT id, order_id, product_name, quantity, price FROM order_items WHERE order_id = $1 ORDER BY id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		var price pgtype.Numeric
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductName, &it.Quantity, &price); err != nil {
			return nil, err
		}
		it.Price = numericToDecimal(price)
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateOrderPayment sets the paid flag and bumps updated_at.
// Callers check for no-op transitions before calling; this always writes.
func (q *Queries) UpdateOrderPayment(ctx context.Context, orderID string, paid bool) (Order, error) {
	row := q.db.QueryRow(ctx,
		"UPDATE orders SET paid = $2, updated_at = now() WHERE order_id = $1 RETURNING "+orderColumns,
		orderID, paid)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var total pgtype.Numeric
	err := row.Scan(&o.ID, &o.OrderID, &o.CustomerName, &o.Status, &total, &o.Paid, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	o.Total = numericToDecimal(total)
	return o, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}
