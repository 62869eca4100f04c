package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trungvq/bida-pos/internal/model"
)

func openTableOrder(t *testing.T, f *fixture) uint64 {
	t.Helper()
	table := f.addTable("Bàn 1", 20000)
	booked := f.bookings.CreateBooking(context.Background(), table.ID)
	require.True(t, booked.Success)
	return booked.Data.OpenBooking.OrderID
}

func TestReplaceOrderItemsReplacesNotAppends(t *testing.T) {
	f := newFixture()
	orderID := openTableOrder(t, f)
	coke := f.addItem("Coca", model.CategoryDrink, 15000)
	beer := f.addItem("Bia Sài Gòn", model.CategoryDrink, 18000)

	lines := []LineInput{{ItemID: coke.ID, Quantity: 2}}
	first := f.orders.ReplaceOrderItems(context.Background(), orderID, "", "", lines)
	require.True(t, first.Success)
	assert.Equal(t, int64(30000), first.Data.TotalAmount)
	assert.Len(t, first.Data.OrderItems, 1)

	// Submitting the identical set again must not double anything.
	again := f.orders.ReplaceOrderItems(context.Background(), orderID, "", "", lines)
	require.True(t, again.Success)
	assert.Equal(t, int64(30000), again.Data.TotalAmount)
	assert.Len(t, again.Data.OrderItems, 1)
	assert.Equal(t, int64(2), again.Data.OrderItems[0].Quantity)

	// A different set replaces the previous one wholesale.
	swapped := f.orders.ReplaceOrderItems(context.Background(), orderID, "", "", []LineInput{{ItemID: beer.ID, Quantity: 1}})
	require.True(t, swapped.Success)
	require.Len(t, swapped.Data.OrderItems, 1)
	assert.Equal(t, beer.ID, swapped.Data.OrderItems[0].ItemID)
	assert.Equal(t, int64(18000), swapped.Data.TotalAmount)
}

func TestReplaceOrderItemsSnapshotsPriceAndName(t *testing.T) {
	f := newFixture()
	orderID := openTableOrder(t, f)
	coke := f.addItem("Coca", model.CategoryDrink, 15000)
	admin := Actor{UserID: 1, IsAdmin: true}

	res := f.orders.ReplaceOrderItems(context.Background(), orderID, "", "", []LineInput{{ItemID: coke.ID, Quantity: 2}})
	require.True(t, res.Success)

	upd := f.itemsSvc.UpdateItem(context.Background(), admin, coke.ID, "Coca Zero", model.CategoryDrink, 99000)
	require.True(t, upd.Success)

	reloaded, err := orderStoreView{f.store}.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	require.Len(t, reloaded.OrderItems, 1)
	assert.Equal(t, "Coca", reloaded.OrderItems[0].Name)
	assert.Equal(t, int64(15000), reloaded.OrderItems[0].Price)
	assert.Equal(t, int64(30000), reloaded.OrderItems[0].TotalAmount)
}

func TestReplaceOrderItemsUnknownItemLeavesOrderUnchanged(t *testing.T) {
	f := newFixture()
	orderID := openTableOrder(t, f)
	coke := f.addItem("Coca", model.CategoryDrink, 15000)

	seeded := f.orders.ReplaceOrderItems(context.Background(), orderID, "", "", []LineInput{{ItemID: coke.ID, Quantity: 1}})
	require.True(t, seeded.Success)

	res := f.orders.ReplaceOrderItems(context.Background(), orderID, "", "", []LineInput{
		{ItemID: coke.ID, Quantity: 5},
		{ItemID: 12345, Quantity: 1},
	})
	assert.False(t, res.Success)
	assert.Equal(t, KindInvalidReference, res.Kind)

	// The earlier line set survived untouched.
	reloaded, err := orderStoreView{f.store}.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	require.Len(t, reloaded.OrderItems, 1)
	assert.Equal(t, int64(1), reloaded.OrderItems[0].Quantity)
	assert.Equal(t, int64(15000), reloaded.TotalAmount)
}

func TestReplaceOrderItemsRejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture()
	orderID := openTableOrder(t, f)
	coke := f.addItem("Coca", model.CategoryDrink, 15000)

	for _, q := range []int64{0, -1} {
		res := f.orders.ReplaceOrderItems(context.Background(), orderID, "", "", []LineInput{{ItemID: coke.ID, Quantity: q}})
		assert.False(t, res.Success)
		assert.Equal(t, KindInvalid, res.Kind)
	}
}

func TestReplaceOrderItemsAfterCheckoutKeepsTimeCharge(t *testing.T) {
	f := newFixture()
	orderID := openTableOrder(t, f)
	coke := f.addItem("Coca", model.CategoryDrink, 15000)
	beer := f.addItem("Bia Sài Gòn", model.CategoryDrink, 18000)

	res := f.orders.ReplaceOrderItems(context.Background(), orderID, "", "", []LineInput{{ItemID: coke.ID, Quantity: 2}})
	require.True(t, res.Success)

	f.clock.Advance(time.Hour)
	paid := f.bookings.Checkout(context.Background(), orderID)
	require.True(t, paid.Success)
	paidAt := *paid.Data.PaidAt
	charge := paid.Data.Booking.TotalAmount
	require.Equal(t, int64(20000), charge)
	require.Equal(t, int64(50000), paid.Data.TotalAmount)

	// Post-payment correction: the recorded time charge stays on the
	// bill and paid_at does not move.
	f.clock.Advance(10 * time.Minute)
	fixed := f.orders.ReplaceOrderItems(context.Background(), orderID, "", "", []LineInput{{ItemID: beer.ID, Quantity: 1}})
	require.True(t, fixed.Success)
	assert.Equal(t, charge+18000, fixed.Data.TotalAmount)
	require.NotNil(t, fixed.Data.PaidAt)
	assert.Equal(t, paidAt, *fixed.Data.PaidAt)
	assert.Equal(t, charge, fixed.Data.Booking.TotalAmount)
}

func TestCreateDirectOrderIsPaidImmediately(t *testing.T) {
	f := newFixture()
	coke := f.addItem("Coca", model.CategoryDrink, 15000)
	snack := f.addItem("Bò khô", model.CategoryFood, 40000)

	res := f.orders.CreateDirectOrder(context.Background(), "Chị Hoa", "0912345678", []LineInput{
		{ItemID: coke.ID, Quantity: 1},
		{ItemID: snack.ID, Quantity: 2},
	})
	require.True(t, res.Success)
	o := res.Data
	require.NotNil(t, o)

	assert.Equal(t, int64(95000), o.TotalAmount)
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, f.clock.Now(), *o.PaidAt)
	assert.Nil(t, o.Booking)
	require.NotNil(t, o.CustomerName)
	assert.Equal(t, "Chị Hoa", *o.CustomerName)
}

func TestCreateDirectOrderRequiresLines(t *testing.T) {
	f := newFixture()
	res := f.orders.CreateDirectOrder(context.Background(), "", "", nil)
	assert.False(t, res.Success)
	assert.Equal(t, KindInvalid, res.Kind)
}

func TestCreateDirectOrderUnknownItem(t *testing.T) {
	f := newFixture()
	res := f.orders.CreateDirectOrder(context.Background(), "", "", []LineInput{{ItemID: 7, Quantity: 1}})
	assert.False(t, res.Success)
	assert.Equal(t, KindInvalidReference, res.Kind)
}

func TestListPaidOrdersPagination(t *testing.T) {
	f := newFixture()
	coke := f.addItem("Coca", model.CategoryDrink, 15000)

	for i := 0; i < 5; i++ {
		f.clock.Advance(time.Minute)
		res := f.orders.CreateDirectOrder(context.Background(), "", "", []LineInput{{ItemID: coke.ID, Quantity: 1}})
		require.True(t, res.Success)
	}

	first := f.orders.ListPaidOrders(context.Background(), 0, 2)
	require.True(t, first.Success)
	assert.Len(t, first.Data.Orders, 2)
	require.NotNil(t, first.Data.NextPage)
	assert.Equal(t, 1, *first.Data.NextPage)
	assert.Nil(t, first.Data.PreviousPage)

	// Newest paid first.
	assert.True(t, first.Data.Orders[0].PaidAt.After(*first.Data.Orders[1].PaidAt))

	last := f.orders.ListPaidOrders(context.Background(), 2, 2)
	require.True(t, last.Success)
	assert.Len(t, last.Data.Orders, 1)
	assert.Nil(t, last.Data.NextPage)
	require.NotNil(t, last.Data.PreviousPage)
	assert.Equal(t, 1, *last.Data.PreviousPage)
}

func TestListPaidOrdersDefaultsPageSize(t *testing.T) {
	f := newFixture()
	res := f.orders.ListPaidOrders(context.Background(), 0, 0)
	require.True(t, res.Success)
	assert.Empty(t, res.Data.Orders)
	assert.Nil(t, res.Data.NextPage)
}

func TestListPaidOrdersNegativePage(t *testing.T) {
	f := newFixture()
	res := f.orders.ListPaidOrders(context.Background(), -1, 10)
	assert.False(t, res.Success)
	assert.Equal(t, KindInvalid, res.Kind)
}

func TestReplaceOrderItemsUnknownOrder(t *testing.T) {
	f := newFixture()
	res := f.orders.ReplaceOrderItems(context.Background(), 404, "", "", nil)
	assert.False(t, res.Success)
	assert.Equal(t, KindNotFound, res.Kind)
}
