package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmms-platform/inventory-service/pkg/errors"
)

func newTestFulfillmentService(stockRepo *fakeStockRepo, poRepo *fakePurchaseOrderRepo) *FulfillmentService {
	return NewFulfillmentService(stockRepo, poRepo, newTestLogger(), nil)
}

func TestFulfillFromInventory_DrawsDownStock(t *testing.T) {
	stockRepo := newFakeStockRepo()
	stockRepo.addStock("PART-1", "WH-1", 20, 0)
	poRepo := newFakePurchaseOrderRepo()
	svc := newTestFulfillmentService(stockRepo, poRepo)

	result, err := svc.FulfillFromInventory(context.Background(), FulfillFromInventoryCommand{
		PurchaseOrderID: "PO-1",
		Lines:           []FulfillmentLine{{PartID: "PART-1", WarehouseID: "WH-1", Quantity: 15}},
		ActorID:         "clerk-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.ItemsFulfilled)
	assert.True(t, result.FulfilledFromInventory)

	stock, _ := stockRepo.FindByPartAndWarehouse(context.Background(), "PART-1", "WH-1")
	assert.Equal(t, 5, stock.CurrentQuantity)

	state := poRepo.states["PO-1"]
	require.NotNil(t, state)
	assert.True(t, state.FulfilledFromInventory)
	assert.Len(t, state.Fulfillments, 1)
}

func TestFulfillFromInventory_InsufficientLineExcluded(t *testing.T) {
	stockRepo := newFakeStockRepo()
	stockRepo.addStock("PART-1", "WH-1", 15, 0)
	stockRepo.addStock("PART-2", "WH-1", 10, 0)
	svc := newTestFulfillmentService(stockRepo, newFakePurchaseOrderRepo())

	result, err := svc.FulfillFromInventory(context.Background(), FulfillFromInventoryCommand{
		PurchaseOrderID: "PO-1",
		Lines: []FulfillmentLine{
			{PartID: "PART-1", WarehouseID: "WH-1", Quantity: 20},
			{PartID: "PART-2", WarehouseID: "WH-1", Quantity: 10},
		},
		ActorID: "clerk-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.ItemsFulfilled)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, errors.CodeInsufficientStock, result.Results[0].ErrorCode)

	// The short line leaves its stock untouched
	stock, _ := stockRepo.FindByPartAndWarehouse(context.Background(), "PART-1", "WH-1")
	assert.Equal(t, 15, stock.CurrentQuantity)

	// Any successful line flips the flag
	assert.True(t, result.FulfilledFromInventory)
}

func TestFulfillFromInventory_AllLinesFailedLeavesFlagOff(t *testing.T) {
	stockRepo := newFakeStockRepo()
	stockRepo.addStock("PART-1", "WH-1", 2, 0)
	poRepo := newFakePurchaseOrderRepo()
	svc := newTestFulfillmentService(stockRepo, poRepo)

	result, err := svc.FulfillFromInventory(context.Background(), FulfillFromInventoryCommand{
		PurchaseOrderID: "PO-1",
		Lines:           []FulfillmentLine{{PartID: "PART-1", WarehouseID: "WH-1", Quantity: 5}},
		ActorID:         "clerk-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.ItemsFulfilled)
	assert.False(t, result.FulfilledFromInventory)
	assert.False(t, poRepo.states["PO-1"].FulfilledFromInventory)
}

func TestFulfillFromInventory_ReservedStockIsProtected(t *testing.T) {
	stockRepo := newFakeStockRepo()
	stockRepo.addStock("PART-1", "WH-1", 10, 8)
	svc := newTestFulfillmentService(stockRepo, newFakePurchaseOrderRepo())

	result, err := svc.FulfillFromInventory(context.Background(), FulfillFromInventoryCommand{
		PurchaseOrderID: "PO-1",
		Lines:           []FulfillmentLine{{PartID: "PART-1", WarehouseID: "WH-1", Quantity: 5}},
		ActorID:         "clerk-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, errors.CodeInsufficientStock, result.Results[0].ErrorCode)
	assert.Contains(t, result.Results[0].Error, "available 2")
}

func TestFulfillFromInventory_RequiresPurchaseOrderAndLines(t *testing.T) {
	svc := newTestFulfillmentService(newFakeStockRepo(), newFakePurchaseOrderRepo())

	_, err := svc.FulfillFromInventory(context.Background(), FulfillFromInventoryCommand{
		Lines: []FulfillmentLine{{PartID: "PART-1", WarehouseID: "WH-1", Quantity: 1}},
	})
	assert.Error(t, err)

	_, err = svc.FulfillFromInventory(context.Background(), FulfillFromInventoryCommand{
		PurchaseOrderID: "PO-1",
	})
	assert.Error(t, err)
}
