package enum

// ── Order lifecycle (enum constrained in DB) ──

const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusCancelled  = "Cancelled"
)

// OrderStatuses lists every valid order status, in display order.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusCancelled,
}

// IsValidOrderStatus reports whether s is one of the four order statuses.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

// ── Query sorting (whitelisted, never interpolated raw) ──

const (
	SortByCreatedAt    = "createdAt"
	SortByTotal        = "total"
	SortByCustomerName = "customerName"
	SortByStatus       = "status"
)

const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)
