package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/trungvq/bida-pos/internal/billing"
	"github.com/trungvq/bida-pos/internal/model"
	"github.com/trungvq/bida-pos/internal/repository"
)

// Paid-order history page bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// LineInput is one requested bill line: a catalog item reference and
// a positive quantity. Snapshotting happens at resolution time.
type LineInput struct {
	ItemID   uint64 `json:"item_id"`
	Quantity int64  `json:"quantity"`
}

// OrdersPage is one page of finalized orders plus pagination cursors.
// NextPage is nil on the last page; PreviousPage is nil on the first.
type OrdersPage struct {
	Orders       []model.Order `json:"orders"`
	NextPage     *int          `json:"next_page"`
	PreviousPage *int          `json:"previous_page"`
}

// OrderService composes bills: replacing line sets before (or
// correcting them after) checkout, and creating counter sales.
type OrderService struct {
	Items    ItemStore
	Orders   OrderStore
	Bookings BookingStore

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewOrderService constructs an OrderService. All stores must be non-nil.
func NewOrderService(items ItemStore, orders OrderStore, bookings BookingStore) *OrderService {
	if items == nil || orders == nil || bookings == nil {
		panic("nil store passed to NewOrderService")
	}
	return &OrderService{Items: items, Orders: orders, Bookings: bookings, now: time.Now}
}

// resolveLines turns requested lines into snapshotted order lines and
// their sum. Unknown item ids are detected by comparing the resolved
// count against the requested count, and nothing is written when any
// id fails to resolve.
func (s *OrderService) resolveLines(ctx context.Context, lines []LineInput) ([]model.OrderItem, int64, *Result[model.Order]) {
	for _, li := range lines {
		if li.Quantity <= 0 {
			r := fail[model.Order](KindInvalid, "quantity must be a positive integer")
			return nil, 0, &r
		}
	}
	ids := make([]uint64, 0, len(lines))
	for _, li := range lines {
		ids = append(ids, li.ItemID)
	}
	items, err := s.Items.ListByIDs(ctx, ids)
	if err != nil {
		r := internalErr[model.Order]("resolve lines: list items", err)
		return nil, 0, &r
	}
	if len(items) != len(lines) {
		r := fail[model.Order](KindInvalidReference, "item does not exist")
		return nil, 0, &r
	}
	byID := make(map[uint64]model.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	out := make([]model.OrderItem, 0, len(lines))
	var itemsTotal int64
	for _, li := range lines {
		it, okFound := byID[li.ItemID]
		if !okFound {
			r := fail[model.Order](KindInvalidReference, "item does not exist")
			return nil, 0, &r
		}
		lineTotal := billing.LineTotal(it.Price, li.Quantity)
		itemsTotal += lineTotal
		out = append(out, model.OrderItem{
			ItemID:      it.ID,
			Name:        it.Name,
			Price:       it.Price,
			Quantity:    li.Quantity,
			TotalAmount: lineTotal,
		})
	}
	return out, itemsTotal, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// GetOrder returns one order with its lines and booking, paid or not.
func (s *OrderService) GetOrder(ctx context.Context, orderID uint64) Result[model.Order] {
	order, err := s.Orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return fail[model.Order](KindNotFound, "order not found")
		}
		return internalErr[model.Order]("get order", err)
	}
	return ok("order found", order)
}

// ReplaceOrderItems swaps an order's whole line set for freshly
// snapshotted lines and re-derives the total from scratch: the sum of
// the new lines plus, when the order's booking is already closed, the
// time charge recorded at checkout. Calling it again with the same
// lines yields the same totals — replace, never append. Policy forbids
// using it to edit a paid order's pre-checkout state; it exists after
// payment only as the correction flow, which keeps paid_at untouched.
func (s *OrderService) ReplaceOrderItems(ctx context.Context, orderID uint64, customerName, phoneNumber string, lines []LineInput) Result[model.Order] {
	if _, err := s.Orders.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return fail[model.Order](KindNotFound, "order not found")
		}
		return internalErr[model.Order]("replace items: find order", err)
	}

	newLines, itemsTotal, failed := s.resolveLines(ctx, lines)
	if failed != nil {
		return *failed
	}

	charge := billing.Charge{Kind: billing.DirectSale}
	booking, err := s.Bookings.FindByOrderID(ctx, orderID)
	switch {
	case err == nil && !booking.Open():
		// Closed booking: its recorded charge stays on the bill.
		charge = billing.Charge{Kind: billing.TableBooking, Amount: booking.TotalAmount}
	case err == nil:
		// Open booking: time is not charged until checkout.
	case errors.Is(err, repository.ErrBookingNotFound):
		// Counter sale.
	default:
		return internalErr[model.Order]("replace items: find booking", err)
	}

	total := billing.InvoiceTotal(itemsTotal, charge)
	updated, err := s.Orders.ReplaceItems(ctx, orderID, optional(customerName), optional(phoneNumber), newLines, total)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return fail[model.Order](KindNotFound, "order not found")
		}
		return internalErr[model.Order]("replace items: replace", err)
	}
	return ok("order updated", updated)
}

// CreateDirectOrder rings up a counter sale: the lines are resolved
// and snapshotted exactly like a table order's, but the order has no
// booking and is paid the moment it is created.
func (s *OrderService) CreateDirectOrder(ctx context.Context, customerName, phoneNumber string, lines []LineInput) Result[model.Order] {
	if len(lines) == 0 {
		return fail[model.Order](KindInvalid, "order must contain at least one item")
	}
	newLines, itemsTotal, failed := s.resolveLines(ctx, lines)
	if failed != nil {
		return *failed
	}
	total := billing.InvoiceTotal(itemsTotal, billing.Charge{Kind: billing.DirectSale})
	created, err := s.Orders.CreateDirect(ctx, optional(customerName), optional(phoneNumber), newLines, total, s.now().UTC())
	if err != nil {
		return internalErr[model.Order]("create direct order", err)
	}
	return ok("order created", created)
}

// ListPaidOrders returns one page of finalized orders, newest paid
// first, with next/previous page cursors.
func (s *OrderService) ListPaidOrders(ctx context.Context, page, pageSize int) Result[OrdersPage] {
	if page < 0 {
		return fail[OrdersPage](KindInvalid, "page must not be negative")
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	orders, hasMore, err := s.Orders.ListPaid(ctx, page, pageSize)
	if err != nil {
		return internalErr[OrdersPage]("list paid orders", err)
	}
	result := OrdersPage{Orders: orders}
	if hasMore {
		next := page + 1
		result.NextPage = &next
	}
	if page > 0 {
		prev := page - 1
		result.PreviousPage = &prev
	}
	return ok("orders listed", &result)
}
