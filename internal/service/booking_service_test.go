package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trungvq/bida-pos/internal/model"
)

func TestCreateBookingOccupiesFreeTable(t *testing.T) {
	f := newFixture()
	table := f.addTable("Bàn 1", 30000)

	res := f.bookings.CreateBooking(context.Background(), table.ID)
	require.True(t, res.Success)
	require.NotNil(t, res.Data)

	assert.False(t, res.Data.IsAvailable)
	b := res.Data.OpenBooking
	require.NotNil(t, b)
	assert.Equal(t, table.ID, b.TableID)
	assert.Equal(t, "Bàn 1", b.TableName)
	assert.Equal(t, int64(30000), b.HourlyRate)
	assert.Nil(t, b.EndTime)
	assert.Equal(t, f.clock.Now(), b.StartTime)

	// The paired order exists, is unpaid and has no lines yet.
	require.NotNil(t, b.Order)
	assert.Nil(t, b.Order.PaidAt)
	assert.Empty(t, b.Order.OrderItems)
	assert.Zero(t, b.Order.TotalAmount)
}

func TestCreateBookingRejectsOccupiedTable(t *testing.T) {
	f := newFixture()
	table := f.addTable("Bàn 1", 30000)

	first := f.bookings.CreateBooking(context.Background(), table.ID)
	require.True(t, first.Success)

	second := f.bookings.CreateBooking(context.Background(), table.ID)
	assert.False(t, second.Success)
	assert.Equal(t, KindConflict, second.Kind)

	// Still exactly one open booking.
	open, err := bookingStoreView{f.store}.ListOpen(context.Background())
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestCreateBookingUnknownTable(t *testing.T) {
	f := newFixture()
	res := f.bookings.CreateBooking(context.Background(), 42)
	assert.False(t, res.Success)
	assert.Equal(t, KindNotFound, res.Kind)
}

func TestCreateBookingSnapshotsRateAgainstLaterEdits(t *testing.T) {
	f := newFixture()
	table := f.addTable("Bàn 2", 20000)
	admin := Actor{UserID: 1, DisplayName: "chủ quán", IsAdmin: true}

	res := f.bookings.CreateBooking(context.Background(), table.ID)
	require.True(t, res.Success)

	upd := f.tables.UpdateTable(context.Background(), admin, table.ID, "Bàn 2", 50000, nil)
	require.True(t, upd.Success)

	f.clock.Advance(time.Hour)
	checkout := f.bookings.Checkout(context.Background(), res.Data.OpenBooking.OrderID)
	require.True(t, checkout.Success)
	// One hour at the rate in effect when the booking opened.
	assert.Equal(t, int64(20000), checkout.Data.Booking.TotalAmount)
}

func TestCheckoutTwoHoursTenMinutes(t *testing.T) {
	f := newFixture()
	table := f.addTable("Bàn 3", 20000)
	coke := f.addItem("Coca", model.CategoryDrink, 15000)
	noodles := f.addItem("Mì xào bò", model.CategoryFood, 35000)

	booked := f.bookings.CreateBooking(context.Background(), table.ID)
	require.True(t, booked.Success)
	orderID := booked.Data.OpenBooking.OrderID

	added := f.orders.ReplaceOrderItems(context.Background(), orderID, "Anh Tuấn", "0901234567", []LineInput{
		{ItemID: coke.ID, Quantity: 2},
		{ItemID: noodles.ID, Quantity: 1},
	})
	require.True(t, added.Success)
	assert.Equal(t, int64(65000), added.Data.TotalAmount)

	f.clock.Advance(2*time.Hour + 10*time.Minute)
	res := f.bookings.Checkout(context.Background(), orderID)
	require.True(t, res.Success)
	order := res.Data
	require.NotNil(t, order)

	// 2h10m at 20000/h: ceil(2.1666*20000)=43334, rounded up to 44000.
	require.NotNil(t, order.Booking)
	assert.Equal(t, int64(44000), order.Booking.TotalAmount)
	require.NotNil(t, order.Booking.EndTime)
	assert.Equal(t, f.clock.Now(), *order.Booking.EndTime)

	assert.Equal(t, int64(109000), order.TotalAmount)
	require.NotNil(t, order.PaidAt)
	assert.Equal(t, f.clock.Now(), *order.PaidAt)

	// The table is free again.
	st := f.tables.GetTable(context.Background(), table.ID)
	require.True(t, st.Success)
	assert.True(t, st.Data.IsAvailable)
}

func TestCheckoutPaidOrderConflicts(t *testing.T) {
	f := newFixture()
	table := f.addTable("Bàn 4", 20000)
	booked := f.bookings.CreateBooking(context.Background(), table.ID)
	require.True(t, booked.Success)
	orderID := booked.Data.OpenBooking.OrderID

	f.clock.Advance(30 * time.Minute)
	first := f.bookings.Checkout(context.Background(), orderID)
	require.True(t, first.Success)
	firstTotal := first.Data.TotalAmount
	firstPaidAt := *first.Data.PaidAt

	f.clock.Advance(time.Hour)
	second := f.bookings.Checkout(context.Background(), orderID)
	assert.False(t, second.Success)
	assert.Equal(t, KindConflict, second.Kind)

	// Nothing about the frozen invoice moved.
	reloaded, err := orderStoreView{f.store}.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, firstTotal, reloaded.TotalAmount)
	assert.Equal(t, firstPaidAt, *reloaded.PaidAt)
}

func TestCheckoutWithoutBookingSettlesItemsOnly(t *testing.T) {
	f := newFixture()
	coke := f.addItem("Coca", model.CategoryDrink, 15000)

	// An unpaid order with no booking, as left behind by an aborted
	// direct-sale flow.
	f.store.mu.Lock()
	o := &model.Order{ID: f.store.id(), CreatedAt: f.clock.Now(), UpdatedAt: f.clock.Now()}
	f.store.orders[o.ID] = o
	f.store.mu.Unlock()

	added := f.orders.ReplaceOrderItems(context.Background(), o.ID, "", "", []LineInput{{ItemID: coke.ID, Quantity: 3}})
	require.True(t, added.Success)

	res := f.bookings.Checkout(context.Background(), o.ID)
	require.True(t, res.Success)
	assert.Equal(t, int64(45000), res.Data.TotalAmount)
	require.NotNil(t, res.Data.PaidAt)
	assert.Nil(t, res.Data.Booking)
}

func TestCheckoutBeforeStartIsInvalid(t *testing.T) {
	f := newFixture()
	table := f.addTable("Bàn 5", 20000)
	booked := f.bookings.CreateBooking(context.Background(), table.ID)
	require.True(t, booked.Success)

	f.clock.Set(f.clock.Now().Add(-time.Hour))
	res := f.bookings.Checkout(context.Background(), booked.Data.OpenBooking.OrderID)
	assert.False(t, res.Success)
	assert.Equal(t, KindInvalid, res.Kind)

	// The booking is still open and the order unpaid.
	reloaded, err := orderStoreView{f.store}.FindByID(context.Background(), booked.Data.OpenBooking.OrderID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.PaidAt)
	assert.Nil(t, reloaded.Booking.EndTime)
}

func TestCheckoutUnknownOrder(t *testing.T) {
	f := newFixture()
	res := f.bookings.Checkout(context.Background(), 99)
	assert.False(t, res.Success)
	assert.Equal(t, KindNotFound, res.Kind)
}
