package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/orderdesk/api/internal/database"
	"github.com/orderdesk/api/internal/query"
	"github.com/orderdesk/api/internal/service"
)

// OrderQuerier runs the list query. Satisfied by *service.Orders; narrow
// interface for testability.
type OrderQuerier interface {
	Query(ctx context.Context, f query.Filter) (service.QueryResult, error)
}

// StatsAggregator runs the stats query. Satisfied by *service.Stats.
type StatsAggregator interface {
	Aggregate(ctx context.Context, f query.Filter) (service.StatsResult, error)
}

// OrderStore defines the store methods needed by the detail and payment
// handlers. Satisfied by *database.Queries and *database.MemStore.
type OrderStore interface {
	GetOrderByOrderID(ctx context.Context, orderID string) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.OrderItem, error)
	UpdateOrderPayment(ctx context.Context, orderID string, paid bool) (database.Order, error)
}

// Broadcaster pushes order events to connected dashboards.
// Satisfied by *ws.Hub; nil disables push.
type Broadcaster interface {
	BroadcastPaymentUpdate(orderID string, paid bool, updatedAt time.Time)
}

// OrderHandler handles the order endpoints.
type OrderHandler struct {
	querier OrderQuerier
	stats   StatsAggregator
	store   OrderStore
	hub     Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(querier OrderQuerier, stats StatsAggregator, store OrderStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{querier: querier, stats: stats, store: store, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/stats", h.Stats)
	r.Get("/{orderId}", h.Get)
	r.Patch("/{orderId}/payment", h.UpdatePayment)
}

// --- Response types ---

type orderResponse struct {
	ID           int64     `json:"id"`
	OrderID      string    `json:"orderId"`
	CustomerName string    `json:"customerName"`
	Status       string    `json:"status"`
	Total        string    `json:"total"`
	Paid         bool      `json:"paid"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type orderItemResponse struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"orderId"`
	ProductName string `json:"productName"`
	Quantity    int32  `json:"quantity"`
	Price       string `json:"price"`
}

type orderListResponse struct {
	Orders     []orderResponse        `json:"orders"`
	Pagination service.Pagination     `json:"pagination"`
	Filters    map[string]interface{} `json:"filters"`
}

type orderDetailResponse struct {
	Order orderResponse       `json:"order"`
	Items []orderItemResponse `json:"items"`
}

type statsResponse struct {
	service.StatsResult
	Filters map[string]interface{} `json:"filters"`
}

type paymentUpdateRequest struct {
	Paid *bool `json:"paid"`
}

type paymentUpdateResponse struct {
	Order          orderResponse `json:"order"`
	Message        string        `json:"message"`
	PreviousStatus *bool         `json:"previousStatus,omitempty"`
	NewStatus      *bool         `json:"newStatus,omitempty"`
}

// --- Handlers ---

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := query.Normalize(r.URL.Query())
	if err != nil {
		var fieldErrs query.FieldErrors
		if errors.As(err, &fieldErrs) {
			writeError(w, http.StatusBadRequest, "Invalid query parameters", fieldErrs)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid query parameters", nil)
		return
	}

	result, err := h.querier.Query(r.Context(), f)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	orders := make([]orderResponse, len(result.Orders))
	for i, o := range result.Orders {
		orders[i] = toOrderResponse(o)
	}

	writeSuccess(w, orderListResponse{
		Orders:     orders,
		Pagination: result.Pagination,
		Filters:    f.Applied(true),
	})
}

// Stats handles GET /orders/stats. Pagination and sort parameters are
// accepted but ignored so a list filter can be passed through unchanged.
func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	f, err := query.Normalize(r.URL.Query())
	if err != nil {
		var fieldErrs query.FieldErrors
		if errors.As(err, &fieldErrs) {
			writeError(w, http.StatusBadRequest, "Invalid query parameters", fieldErrs)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid query parameters", nil)
		return
	}
	f = f.WithoutPagination()

	result, err := h.stats.Aggregate(r.Context(), f)
	if err != nil {
		log.Printf("ERROR: aggregate order stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	writeSuccess(w, statsResponse{
		StatsResult: result,
		Filters:     f.Applied(false),
	})
}

// Get handles GET /orders/{orderId}, where orderId is the business id.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if err := query.ValidateOrderID(orderID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order ID format", err.Error())
		return
	}

	order, err := h.store.GetOrderByOrderID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found", nil)
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), order.ID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	itemResponses := make([]orderItemResponse, len(items))
	for i, it := range items {
		itemResponses[i] = orderItemResponse{
			ID:          it.ID,
			OrderID:     it.OrderID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price.StringFixed(2),
		}
	}

	writeSuccess(w, orderDetailResponse{
		Order: toOrderResponse(order),
		Items: itemResponses,
	})
}

// UpdatePayment handles PATCH /orders/{orderId}/payment.
// Toggling to the current value is accepted as a no-op: it returns success
// with an explanatory message and performs no write.
func (h *OrderHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if err := query.ValidateOrderID(orderID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	var req paymentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Paid == nil {
		writeError(w, http.StatusBadRequest, "Invalid request data", "paid must be a boolean")
		return
	}
	paid := *req.Paid

	existing, err := h.store.GetOrderByOrderID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found", nil)
			return
		}
		log.Printf("ERROR: get order for payment update: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	if existing.Paid == paid {
		writeSuccess(w, paymentUpdateResponse{
			Order:   toOrderResponse(existing),
			Message: "Order is already marked as " + paidLabel(paid),
		})
		return
	}

	updated, err := h.store.UpdateOrderPayment(r.Context(), orderID, paid)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found", nil)
			return
		}
		log.Printf("ERROR: update order payment: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	if h.hub != nil {
		h.hub.BroadcastPaymentUpdate(updated.OrderID, updated.Paid, updated.UpdatedAt)
	}

	writeSuccess(w, paymentUpdateResponse{
		Order:          toOrderResponse(updated),
		Message:        "Order successfully marked as " + paidLabel(paid),
		PreviousStatus: &existing.Paid,
		NewStatus:      &updated.Paid,
	})
}

// --- Helpers ---

func toOrderResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:           o.ID,
		OrderID:      o.OrderID,
		CustomerName: o.CustomerName,
		Status:       o.Status,
		Total:        o.Total.StringFixed(2),
		Paid:         o.Paid,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func paidLabel(paid bool) string {
	if paid {
		return "paid"
	}
	return "unpaid"
}
