package client

import (
	"context"
	"errors"
	"time"

	"github.com/orderdesk/api/internal/query"
)

// MutationState is where a payment mutation instance ended up.
// Each instance runs Idle -> Optimistic -> {Committed | RolledBack}; a
// mutation that needed no optimistic patch commits straight from Idle.
type MutationState int

const (
	StateIdle MutationState = iota
	StateOptimistic
	StateCommitted
	StateRolledBack
)

// PaymentUpdater performs the remote payment-status change.
// Satisfied by *OrdersClient; narrow interface for testability.
type PaymentUpdater interface {
	UpdatePaymentStatus(ctx context.Context, orderID string, paid bool) (*PaymentUpdateResult, error)
}

// MutationOutcome reports the result of one payment toggle.
type MutationOutcome struct {
	Result  *PaymentUpdateResult
	State   MutationState
	Patched bool // whether an optimistic cache patch was applied
}

// MutationCoordinator orchestrates optimistic payment-status changes against
// the cache.
type MutationCoordinator struct {
	cache *Cache
	api   PaymentUpdater
	now   func() time.Time
}

// NewMutationCoordinator creates a coordinator over the given cache and API.
func NewMutationCoordinator(cache *Cache, api PaymentUpdater) *MutationCoordinator {
	return &MutationCoordinator{cache: cache, api: api, now: time.Now}
}

// TogglePayment changes an order's paid flag, updating cached list pages
// before the server confirms.
//
// Invalid input is rejected before the cache is touched. Otherwise every
// cached list page containing the order with a different paid value is
// patched in place (paid plus updatedAt), in one atomic step that also
// supersedes in-flight list reads. Superseding uses a revision barrier rather
// than transport-level cancellation, so a stale read that lands later is
// simply discarded. On success the optimistic values stand and
// every cached stats entry is invalidated, since toggling payment changes the
// overview and payment breakdown while list pages stay valid. On failure the
// snapshot is restored verbatim and the error carries a user-facing message.
//
// A remote call that never returns leaves the mutation in the Optimistic
// state until ctx expires; no additional timeout is imposed here.
func (m *MutationCoordinator) TogglePayment(ctx context.Context, orderID string, paid bool) (*MutationOutcome, error) {
	if err := query.ValidateOrderID(orderID); err != nil {
		return nil, &RequestError{
			Kind:        KindValidation,
			Message:     err.Error(),
			UserMessage: "Invalid order ID",
		}
	}

	outcome := &MutationOutcome{State: StateIdle}

	updatedAt := m.now()
	snap, patched := m.cache.ApplyOptimistic(KindList, func(value interface{}) (interface{}, bool) {
		page, ok := value.(*OrdersPage)
		if !ok {
			return value, false
		}
		return patchPage(page, orderID, paid, updatedAt)
	})
	outcome.Patched = patched
	if patched {
		outcome.State = StateOptimistic
	}

	result, err := m.api.UpdatePaymentStatus(ctx, orderID, paid)
	if err != nil {
		if patched {
			m.cache.Restore(snap)
			outcome.State = StateRolledBack
		}
		var re *RequestError
		if errors.As(err, &re) && re.UserMessage == "" {
			re.UserMessage = "Failed to update payment status"
		}
		return outcome, err
	}

	m.cache.InvalidateKind(KindStats)
	outcome.State = StateCommitted
	outcome.Result = result
	return outcome, nil
}

// patchPage returns a copy of the page with the matching order's paid flag
// rewritten. The copy keeps the original slices untouched so a snapshot of
// the old value stays valid for rollback.
func patchPage(page *OrdersPage, orderID string, paid bool, updatedAt time.Time) (*OrdersPage, bool) {
	idx := -1
	for i, o := range page.Orders {
		if o.OrderID == orderID && o.Paid != paid {
			idx = i
			break
		}
	}
	if idx == -1 {
		return page, false
	}

	next := *page
	next.Orders = make([]Order, len(page.Orders))
	copy(next.Orders, page.Orders)
	next.Orders[idx].Paid = paid
	next.Orders[idx].UpdatedAt = updatedAt
	return &next, true
}
