package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/errors"
)

func newTestStockService(repo *fakeStockRepo) *StockService {
	return NewStockService(repo, newTestLogger(), nil)
}

func TestGetStock_FiltersLowStockOnly(t *testing.T) {
	repo := newFakeStockRepo()
	low := repo.addStock("PART-1", "WH-1", 3, 0)
	low.ReorderPoint = 5
	repo.addStock("PART-2", "WH-1", 50, 0).ReorderPoint = 5

	svc := newTestStockService(repo)

	all, err := svc.GetStock(context.Background(), GetStockQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	lowOnly, err := svc.GetStock(context.Background(), GetStockQuery{LowStockOnly: true})
	require.NoError(t, err)
	require.Len(t, lowOnly, 1)
	assert.Equal(t, "PART-1", lowOnly[0].PartID)
	assert.True(t, lowOnly[0].LowStock)
}

func TestGetStockByID_NotFound(t *testing.T) {
	svc := newTestStockService(newFakeStockRepo())

	_, err := svc.GetStockByID(context.Background(), "missing")
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeNotFound, appErr.Code)
}

func TestAdjustStock_SetsCountAndRecordsDelta(t *testing.T) {
	repo := newFakeStockRepo()
	stock := repo.addStock("PART-1", "WH-1", 10, 0)
	svc := newTestStockService(repo)

	dto, err := svc.AdjustStock(context.Background(), AdjustStockCommand{
		StockID:       stock.ID,
		PhysicalCount: 7,
		Reason:        "cycle count",
		ActorID:       "auditor",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, dto.CurrentQuantity)

	require.Len(t, repo.movements, 1)
	movement := repo.movements[0]
	assert.Equal(t, domain.MovementAdjustment, movement.MovementType)
	assert.Equal(t, -3, movement.Quantity)
	assert.Equal(t, 7, movement.BalanceAfter)
	assert.Equal(t, "cycle count", movement.Reason)
}

func TestAdjustStock_NegativeCountRejected(t *testing.T) {
	repo := newFakeStockRepo()
	stock := repo.addStock("PART-1", "WH-1", 10, 0)
	svc := newTestStockService(repo)

	_, err := svc.AdjustStock(context.Background(), AdjustStockCommand{
		StockID:       stock.ID,
		PhysicalCount: -1,
		Reason:        "bad count",
	})
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidationError, appErr.Code)
	assert.Empty(t, repo.movements)
}

func TestAdjustStock_BelowReservedIsAllowed(t *testing.T) {
	repo := newFakeStockRepo()
	stock := repo.addStock("PART-1", "WH-1", 10, 6)
	svc := newTestStockService(repo)

	dto, err := svc.AdjustStock(context.Background(), AdjustStockCommand{
		StockID:       stock.ID,
		PhysicalCount: 4,
		Reason:        "shrinkage",
		ActorID:       "auditor",
	})
	require.NoError(t, err)

	// The correction lands even though it breaks current >= reserved
	assert.Equal(t, 4, dto.CurrentQuantity)
	assert.Equal(t, 6, dto.ReservedQuantity)
}

func TestTransferStock_MovesQuantity(t *testing.T) {
	repo := newFakeStockRepo()
	source := repo.addStock("PART-1", "WH-1", 10, 0)
	source.AverageUnitCost = 250
	svc := newTestStockService(repo)

	err := svc.TransferStock(context.Background(), TransferStockCommand{
		PartID:          "PART-1",
		FromWarehouseID: "WH-1",
		ToWarehouseID:   "WH-2",
		Quantity:        4,
		ActorID:         "clerk-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 6, source.CurrentQuantity)
	dest, _ := repo.FindByPartAndWarehouse(context.Background(), "PART-1", "WH-2")
	require.NotNil(t, dest)
	assert.Equal(t, 4, dest.CurrentQuantity)
	assert.Equal(t, int64(250), dest.AverageUnitCost)
}

func TestTransferStock_Validation(t *testing.T) {
	svc := newTestStockService(newFakeStockRepo())

	err := svc.TransferStock(context.Background(), TransferStockCommand{
		PartID: "PART-1", FromWarehouseID: "WH-1", ToWarehouseID: "WH-1", Quantity: 1,
	})
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, errors.CodeValidationError, appErr.Code)

	err = svc.TransferStock(context.Background(), TransferStockCommand{
		PartID: "PART-1", FromWarehouseID: "WH-1", ToWarehouseID: "WH-2", Quantity: 0,
	})
	assert.Error(t, err)
}

func TestTransferStock_InsufficientSource(t *testing.T) {
	repo := newFakeStockRepo()
	repo.addStock("PART-1", "WH-1", 2, 0)
	svc := newTestStockService(repo)

	err := svc.TransferStock(context.Background(), TransferStockCommand{
		PartID:          "PART-1",
		FromWarehouseID: "WH-1",
		ToWarehouseID:   "WH-2",
		Quantity:        5,
		ActorID:         "clerk-1",
	})
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeInsufficientStock, appErr.Code)
}
