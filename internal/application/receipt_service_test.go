package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/errors"
)

func cents(v int64) *int64 { return &v }

type receiptFixture struct {
	stockRepo     *fakeStockRepo
	partRepo      *fakePartRepo
	warehouseRepo *fakeWarehouseRepo
	poRepo        *fakePurchaseOrderRepo
	svc           *ReceiptService
}

func newReceiptFixture() *receiptFixture {
	f := &receiptFixture{
		stockRepo:     newFakeStockRepo(),
		partRepo:      newFakePartRepo(),
		warehouseRepo: newFakeWarehouseRepo(),
		poRepo:        newFakePurchaseOrderRepo(),
	}
	f.warehouseRepo.addWarehouse("WH-1", "PLANT-1")
	f.svc = NewReceiptService(f.stockRepo, f.partRepo, f.warehouseRepo, f.poRepo, newTestLogger(), nil)
	return f
}

func TestReceiveToInventory_CreatesStockAndPart(t *testing.T) {
	f := newReceiptFixture()

	result, err := f.svc.ReceiveToInventory(context.Background(), ReceiveToInventoryCommand{
		PurchaseOrderID: "PO-1",
		Items: []ReceiptItem{
			{PartName: "Bearing 6204", WarehouseID: "WH-1", Quantity: 10, UnitCost: cents(300), Reference: "DN-1"},
		},
		ActorID: "clerk-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalItemsReceived)
	assert.Equal(t, 0, result.Failed)
	assert.True(t, result.ReceivedToInventory)

	part, _ := f.partRepo.FindByName(context.Background(), "Bearing 6204")
	require.NotNil(t, part, "unknown part name should be auto-created")

	stock, _ := f.stockRepo.FindByPartAndWarehouse(context.Background(), part.ID, "WH-1")
	require.NotNil(t, stock)
	assert.Equal(t, 10, stock.CurrentQuantity)
	assert.Equal(t, int64(300), stock.AverageUnitCost)
	assert.Equal(t, "PLANT-1", stock.PlantID)
}

func TestReceiveToInventory_WeightedAverageCost(t *testing.T) {
	f := newReceiptFixture()

	_, err := f.svc.ReceiveToInventory(context.Background(), ReceiveToInventoryCommand{
		PurchaseOrderID: "PO-1",
		Items:           []ReceiptItem{{PartName: "Filter", WarehouseID: "WH-1", Quantity: 10, UnitCost: cents(300)}},
		ActorID:         "clerk-1",
	})
	require.NoError(t, err)

	_, err = f.svc.ReceiveToInventory(context.Background(), ReceiveToInventoryCommand{
		PurchaseOrderID: "PO-2",
		Items:           []ReceiptItem{{PartName: "Filter", WarehouseID: "WH-1", Quantity: 10, UnitCost: cents(500)}},
		ActorID:         "clerk-1",
	})
	require.NoError(t, err)

	part, _ := f.partRepo.FindByName(context.Background(), "Filter")
	stock, _ := f.stockRepo.FindByPartAndWarehouse(context.Background(), part.ID, "WH-1")
	assert.Equal(t, 20, stock.CurrentQuantity)
	assert.Equal(t, int64(400), stock.AverageUnitCost)
}

func TestReceiveToInventory_ValidationNamesOffendingItem(t *testing.T) {
	f := newReceiptFixture()

	_, err := f.svc.ReceiveToInventory(context.Background(), ReceiveToInventoryCommand{
		PurchaseOrderID: "PO-1",
		Items: []ReceiptItem{
			{PartName: "Bearing", WarehouseID: "WH-1", Quantity: 10, UnitCost: cents(300)},
			{PartName: "Gasket", WarehouseID: "WH-1", Quantity: -2, UnitCost: cents(100)},
		},
		ActorID: "clerk-1",
	})
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidationError, appErr.Code)
	assert.Contains(t, appErr.Message, "item 2 (Gasket)")
	assert.Contains(t, appErr.Message, "quantity must be positive")

	// Whole-call validation: nothing was booked
	stocks, _ := f.stockRepo.Find(context.Background(), domain.StockFilter{})
	assert.Empty(t, stocks)
}

func TestReceiveToInventory_MissingUnitCostRejected(t *testing.T) {
	f := newReceiptFixture()

	_, err := f.svc.ReceiveToInventory(context.Background(), ReceiveToInventoryCommand{
		PurchaseOrderID: "PO-1",
		Items:           []ReceiptItem{{PartName: "Bearing", WarehouseID: "WH-1", Quantity: 1}},
		ActorID:         "clerk-1",
	})
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.Contains(t, appErr.Message, "unitCost is required")

	// Zero cost is valid, absence is not
	result, err := f.svc.ReceiveToInventory(context.Background(), ReceiveToInventoryCommand{
		PurchaseOrderID: "PO-1",
		Items:           []ReceiptItem{{PartName: "Bearing", WarehouseID: "WH-1", Quantity: 1, UnitCost: cents(0)}},
		ActorID:         "clerk-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalItemsReceived)
}

func TestReceiveToInventory_UnknownWarehouseFailsLineOnly(t *testing.T) {
	f := newReceiptFixture()

	result, err := f.svc.ReceiveToInventory(context.Background(), ReceiveToInventoryCommand{
		PurchaseOrderID: "PO-1",
		Items: []ReceiptItem{
			{PartName: "Bearing", WarehouseID: "WH-1", Quantity: 5, UnitCost: cents(200)},
			{PartName: "Gasket", WarehouseID: "WH-MISSING", Quantity: 5, UnitCost: cents(100)},
		},
		ActorID: "clerk-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalItemsReceived)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, errors.CodeNotFound, result.Results[1].ErrorCode)
	assert.Equal(t, "1 succeeded, 1 failed", result.Summary)

	// One failed item keeps the PO from being flagged fully received
	assert.False(t, result.ReceivedToInventory)
	state := f.poRepo.states["PO-1"]
	require.NotNil(t, state)
	assert.False(t, state.ReceivedToInventory)
	assert.Len(t, state.Receipts, 1)
}

func TestReceiveToInventory_ResolvesExistingPartByNumber(t *testing.T) {
	f := newReceiptFixture()
	existing, err := domain.NewPart("BRG-6204", "Bearing 6204", "bearings", "", "admin")
	require.NoError(t, err)
	require.NoError(t, f.partRepo.Create(context.Background(), existing, nil))

	result, err := f.svc.ReceiveToInventory(context.Background(), ReceiveToInventoryCommand{
		PurchaseOrderID: "PO-1",
		Items:           []ReceiptItem{{PartName: "BRG-6204", WarehouseID: "WH-1", Quantity: 3, UnitCost: cents(250)}},
		ActorID:         "clerk-1",
	})
	require.NoError(t, err)

	assert.Equal(t, existing.ID, result.Results[0].PartID)
	assert.Len(t, f.partRepo.parts, 1, "no duplicate part should be created")
}
