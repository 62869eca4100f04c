package service

import (
	"context"
	"errors"
	"time"

	"github.com/trungvq/bida-pos/internal/billing"
	"github.com/trungvq/bida-pos/internal/model"
	"github.com/trungvq/bida-pos/internal/repository"
)

// BookingService drives the table state machine: Free → Occupied via
// CreateBooking, Occupied → Free via Checkout. Both transitions are
// single transactions in the store, so a booking with an end time but
// an unpaid order (or the reverse) can never be observed.
type BookingService struct {
	Tables   TableStore
	Bookings BookingStore
	Orders   OrderStore

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewBookingService constructs a BookingService. All stores must be non-nil.
func NewBookingService(tables TableStore, bookings BookingStore, orders OrderStore) *BookingService {
	if tables == nil || bookings == nil || orders == nil {
		panic("nil store passed to NewBookingService")
	}
	return &BookingService{Tables: tables, Bookings: bookings, Orders: orders, now: time.Now}
}

// CreateBooking opens a play session on a free table: it atomically
// creates an empty unpaid order plus an open booking snapshotting the
// table's current name and hourly rate, and returns the table with its
// fresh booking for immediate display. A table that already has an
// open booking yields a conflict; the storage unique key backs the
// check under concurrency.
func (s *BookingService) CreateBooking(ctx context.Context, tableID uint64) Result[model.TableWithStatus] {
	table, err := s.Tables.FindByID(ctx, tableID)
	if err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return fail[model.TableWithStatus](KindNotFound, "table not found")
		}
		return internalErr[model.TableWithStatus]("create booking: find table", err)
	}

	if _, err := s.Bookings.FindOpenByTableID(ctx, tableID); err == nil {
		return fail[model.TableWithStatus](KindConflict, "table already occupied")
	} else if !errors.Is(err, repository.ErrBookingNotFound) {
		return internalErr[model.TableWithStatus]("create booking: check open booking", err)
	}

	booking, err := s.Bookings.CreateWithOrder(ctx, table, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrTableOccupied) {
			return fail[model.TableWithStatus](KindConflict, "table already occupied")
		}
		return internalErr[model.TableWithStatus]("create booking: create", err)
	}

	data := model.TableWithStatus{Table: *table, IsAvailable: false, OpenBooking: booking}
	return ok("table booked", &data)
}

// Checkout finalizes a bill. For an order paired with an open booking
// it computes the time charge up to now with the same formula used for
// live estimates, closes the booking and marks the order paid in one
// transaction, then returns the frozen invoice. An order without a
// booking (counter sale left unpaid) takes the simpler path of just
// being marked paid with its item total.
func (s *BookingService) Checkout(ctx context.Context, orderID uint64) Result[model.Order] {
	order, err := s.Orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return fail[model.Order](KindNotFound, "order not found")
		}
		return internalErr[model.Order]("checkout: find order", err)
	}
	if order.Paid() {
		return fail[model.Order](KindConflict, "order already paid")
	}

	end := s.now().UTC()
	itemsTotal := order.ItemsTotal()

	booking, err := s.Bookings.FindByOrderID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, repository.ErrBookingNotFound) {
			return internalErr[model.Order]("checkout: find booking", err)
		}
		// No booking: settle the items alone.
		total := billing.InvoiceTotal(itemsTotal, billing.Charge{Kind: billing.DirectSale})
		if err := s.Orders.MarkPaid(ctx, orderID, end, total); err != nil {
			if errors.Is(err, repository.ErrOrderPaid) {
				return fail[model.Order](KindConflict, "order already paid")
			}
			return internalErr[model.Order]("checkout: mark paid", err)
		}
		return s.reloadOrder(ctx, orderID)
	}

	charge, err := billing.TableCharge(booking.HourlyRate, booking.StartTime, end)
	if err != nil {
		// billing.ErrEndBeforeStart: the start time is in the future.
		return fail[model.Order](KindInvalid, "booking start time is after checkout time")
	}
	total := billing.InvoiceTotal(itemsTotal, billing.Charge{Kind: billing.TableBooking, Amount: charge})

	if err := s.Orders.FinalizeCheckout(ctx, orderID, end, charge, total); err != nil {
		if errors.Is(err, repository.ErrOrderPaid) {
			return fail[model.Order](KindConflict, "order already paid")
		}
		return internalErr[model.Order]("checkout: finalize", err)
	}
	return s.reloadOrder(ctx, orderID)
}

func (s *BookingService) reloadOrder(ctx context.Context, orderID uint64) Result[model.Order] {
	final, err := s.Orders.FindByID(ctx, orderID)
	if err != nil {
		return internalErr[model.Order]("checkout: reload order", err)
	}
	return ok("order paid", final)
}
