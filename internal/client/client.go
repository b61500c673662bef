package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/orderdesk/api/internal/query"
)

// Doer issues a single HTTP request. Satisfied by *http.Client; the client
// treats it as fallible and makes at most one attempt per call.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Order is an order as it appears on the wire.
type Order struct {
	ID           int64     `json:"id"`
	OrderID      string    `json:"orderId"`
	CustomerName string    `json:"customerName"`
	Status       string    `json:"status"`
	Total        string    `json:"total"`
	Paid         bool      `json:"paid"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// OrderItem is a line item in an order detail response.
type OrderItem struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"orderId"`
	ProductName string `json:"productName"`
	Quantity    int32  `json:"quantity"`
	Price       string `json:"price"`
}

// Pagination mirrors the server's page metadata.
type Pagination struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	Total           int64 `json:"total"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// OrdersPage is one page of list results.
type OrdersPage struct {
	Orders     []Order                `json:"orders"`
	Pagination Pagination             `json:"pagination"`
	Filters    map[string]interface{} `json:"filters"`
}

// OrderDetails is a single order with its items.
type OrderDetails struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

// OrderStats mirrors the server's aggregate result.
type OrderStats struct {
	Overview struct {
		TotalOrders       int64   `json:"totalOrders"`
		TotalRevenue      float64 `json:"totalRevenue"`
		AverageOrderValue float64 `json:"averageOrderValue"`
	} `json:"overview"`
	StatusBreakdown []struct {
		Status  string  `json:"status"`
		Count   int64   `json:"count"`
		Revenue float64 `json:"revenue"`
	} `json:"statusBreakdown"`
	PaymentStatus struct {
		Paid   struct {
			Count   int64   `json:"count"`
			Revenue float64 `json:"revenue"`
		} `json:"paid"`
		Unpaid struct {
			Count   int64   `json:"count"`
			Revenue float64 `json:"revenue"`
		} `json:"unpaid"`
	} `json:"paymentStatus"`
	Filters map[string]interface{} `json:"filters"`
}

// PaymentUpdateResult is the outcome of a payment-status change.
type PaymentUpdateResult struct {
	Order          Order  `json:"order"`
	Message        string `json:"message"`
	PreviousStatus *bool  `json:"previousStatus,omitempty"`
	NewStatus      *bool  `json:"newStatus,omitempty"`
}

// apiEnvelope is the server's response wrapper.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details interface{}     `json:"details"`
}

// OrdersClient talks to the orders API over a Doer.
type OrdersClient struct {
	baseURL string
	http    Doer
}

// NewOrdersClient creates a client for the API at baseURL. A nil doer falls
// back to http.DefaultClient.
func NewOrdersClient(baseURL string, doer Doer) *OrdersClient {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &OrdersClient{baseURL: strings.TrimRight(baseURL, "/"), http: doer}
}

// GetOrders fetches one page of orders for the filter.
func (c *OrdersClient) GetOrders(ctx context.Context, f query.Filter) (*OrdersPage, error) {
	var page OrdersPage
	if err := c.do(ctx, http.MethodGet, "/orders?"+f.Params().Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetOrderStats fetches aggregate stats for the filter. Pagination and sort
// parameters are stripped; stats are page-independent.
func (c *OrdersClient) GetOrderStats(ctx context.Context, f query.Filter) (*OrderStats, error) {
	params := f.Params()
	params.Del("page")
	params.Del("limit")
	params.Del("sortBy")
	params.Del("sortOrder")

	path := "/orders/stats"
	if enc := params.Encode(); enc != "" {
		path += "?" + enc
	}

	var stats OrderStats
	if err := c.do(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetOrderDetails fetches a single order with its items by business id.
func (c *OrdersClient) GetOrderDetails(ctx context.Context, orderID string) (*OrderDetails, error) {
	if err := query.ValidateOrderID(orderID); err != nil {
		return nil, &RequestError{
			Kind:        KindValidation,
			Message:     err.Error(),
			UserMessage: "Invalid order ID",
		}
	}
	var details OrderDetails
	if err := c.do(ctx, http.MethodGet, "/orders/"+orderID, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// UpdatePaymentStatus sets the paid flag of an order. The server treats
// setting the current value as an accepted no-op.
func (c *OrdersClient) UpdatePaymentStatus(ctx context.Context, orderID string, paid bool) (*PaymentUpdateResult, error) {
	if err := query.ValidateOrderID(orderID); err != nil {
		return nil, &RequestError{
			Kind:        KindValidation,
			Message:     err.Error(),
			UserMessage: "Invalid order ID",
		}
	}
	body := map[string]bool{"paid": paid}
	var result PaymentUpdateResult
	if err := c.do(ctx, http.MethodPatch, "/orders/"+orderID+"/payment", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do issues one request and decodes the envelope. Failures carry the error
// taxonomy: transport faults are KindNetwork, 400 KindValidation, 404
// KindNotFound, anything else KindServer.
func (c *OrdersClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Kind: KindValidation, Message: "encode request body: " + err.Error()}
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &RequestError{Kind: KindValidation, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{
			Kind:        KindNetwork,
			Message:     err.Error(),
			UserMessage: "Unable to reach the order service",
		}
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &RequestError{
			Kind:        KindServer,
			Status:      resp.StatusCode,
			Message:     "decode response: " + err.Error(),
			UserMessage: "The order service returned an unreadable response",
		}
	}

	if resp.StatusCode >= 400 || !envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = "request failed: " + resp.Status
		}
		kind := KindServer
		user := "Something went wrong, please try again"
		switch resp.StatusCode {
		case http.StatusBadRequest:
			kind = KindValidation
			user = "Invalid request"
		case http.StatusNotFound:
			kind = KindNotFound
			user = "Order not found"
		}
		return &RequestError{
			Kind:        kind,
			Status:      resp.StatusCode,
			Message:     msg,
			UserMessage: user,
			Details:     envelope.Details,
		}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return &RequestError{
				Kind:        KindServer,
				Status:      resp.StatusCode,
				Message:     "decode data: " + err.Error(),
				UserMessage: "The order service returned an unreadable response",
			}
		}
	}
	return nil
}
