package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trungvq/bida-pos/internal/model"
)

func TestItemCRUDRequiresAdmin(t *testing.T) {
	f := newFixture()
	it := f.addItem("Coca", model.CategoryDrink, 15000)

	created := f.itemsSvc.CreateItem(context.Background(), staff, "Bia", model.CategoryDrink, 18000)
	assert.Equal(t, KindUnauthorized, created.Kind)

	updated := f.itemsSvc.UpdateItem(context.Background(), staff, it.ID, "Coca", model.CategoryDrink, 16000)
	assert.Equal(t, KindUnauthorized, updated.Kind)

	deleted := f.itemsSvc.DeleteItem(context.Background(), staff, it.ID)
	assert.Equal(t, KindUnauthorized, deleted.Kind)

	// Reads are open to every authenticated user.
	listed := f.itemsSvc.ListItems(context.Background())
	assert.True(t, listed.Success)
	assert.Len(t, *listed.Data, 1)
}

func TestCreateItemValidation(t *testing.T) {
	f := newFixture()

	res := f.itemsSvc.CreateItem(context.Background(), admin, "", model.CategoryFood, 10000)
	assert.Equal(t, KindInvalid, res.Kind)

	res = f.itemsSvc.CreateItem(context.Background(), admin, "Mì xào", model.CategoryFood, 0)
	assert.Equal(t, KindInvalid, res.Kind)

	res = f.itemsSvc.CreateItem(context.Background(), admin, "Mì xào", "SNACK", 10000)
	assert.Equal(t, KindInvalid, res.Kind)

	res = f.itemsSvc.CreateItem(context.Background(), admin, "Mì xào", model.CategoryFood, 35000)
	require.True(t, res.Success)
	assert.Equal(t, model.CategoryFood, res.Data.Category)
}

func TestCreateItemDuplicateName(t *testing.T) {
	f := newFixture()
	first := f.itemsSvc.CreateItem(context.Background(), admin, "Coca", model.CategoryDrink, 15000)
	require.True(t, first.Success)

	dup := f.itemsSvc.CreateItem(context.Background(), admin, "Coca", model.CategoryDrink, 16000)
	assert.False(t, dup.Success)
	assert.Equal(t, KindConflict, dup.Kind)
}

func TestUpdateItem(t *testing.T) {
	f := newFixture()
	it := f.addItem("Coca", model.CategoryDrink, 15000)
	f.addItem("Bia", model.CategoryDrink, 18000)

	res := f.itemsSvc.UpdateItem(context.Background(), admin, it.ID, "Coca Zero", model.CategoryDrink, 17000)
	require.True(t, res.Success)
	assert.Equal(t, "Coca Zero", res.Data.Name)
	assert.Equal(t, int64(17000), res.Data.Price)

	clash := f.itemsSvc.UpdateItem(context.Background(), admin, it.ID, "Bia", model.CategoryDrink, 17000)
	assert.Equal(t, KindConflict, clash.Kind)

	missing := f.itemsSvc.UpdateItem(context.Background(), admin, 404, "Trà đá", model.CategoryDrink, 5000)
	assert.Equal(t, KindNotFound, missing.Kind)
}

func TestDeleteItemKeepsHistoricalLines(t *testing.T) {
	f := newFixture()
	orderID := openTableOrder(t, f)
	coke := f.addItem("Coca", model.CategoryDrink, 15000)

	added := f.orders.ReplaceOrderItems(context.Background(), orderID, "", "", []LineInput{{ItemID: coke.ID, Quantity: 2}})
	require.True(t, added.Success)

	deleted := f.itemsSvc.DeleteItem(context.Background(), admin, coke.ID)
	require.True(t, deleted.Success)

	// The order line keeps its snapshot after the catalog entry is gone.
	reloaded, err := orderStoreView{f.store}.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	require.Len(t, reloaded.OrderItems, 1)
	assert.Equal(t, "Coca", reloaded.OrderItems[0].Name)
	assert.Equal(t, int64(30000), reloaded.OrderItems[0].TotalAmount)

	missing := f.itemsSvc.DeleteItem(context.Background(), admin, coke.ID)
	assert.Equal(t, KindNotFound, missing.Kind)
}
