package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/errors"
)

func newTestReservationService(stockRepo *fakeStockRepo, reservationRepo *fakeReservationRepo) *ReservationService {
	return NewReservationService(stockRepo, reservationRepo, newTestLogger(), nil)
}

func TestReserveParts_AllLinesSucceed(t *testing.T) {
	stockRepo := newFakeStockRepo()
	stockRepo.addStock("PART-1", "WH-1", 10, 0)
	stockRepo.addStock("PART-2", "WH-1", 5, 0)
	svc := newTestReservationService(stockRepo, newFakeReservationRepo())

	result, err := svc.ReserveParts(context.Background(), ReservePartsCommand{
		WorkOrderID: "WO-1",
		Lines: []ReservationLine{
			{PartID: "PART-1", WarehouseID: "WH-1", Quantity: 3},
			{PartID: "PART-2", WarehouseID: "WH-1", Quantity: 5},
		},
		ActorID: "tech-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, "2 succeeded, 0 failed", result.Summary)
	assert.Len(t, result.Reservations, 2)

	stock, _ := stockRepo.FindByPartAndWarehouse(context.Background(), "PART-1", "WH-1")
	assert.Equal(t, 3, stock.ReservedQuantity)
	assert.Equal(t, 7, stock.AvailableQuantity())
}

func TestReserveParts_InvalidLineDoesNotAbortSiblings(t *testing.T) {
	stockRepo := newFakeStockRepo()
	stockRepo.addStock("PART-1", "WH-1", 10, 0)
	svc := newTestReservationService(stockRepo, newFakeReservationRepo())

	result, err := svc.ReserveParts(context.Background(), ReservePartsCommand{
		WorkOrderID: "WO-1",
		Lines: []ReservationLine{
			{PartID: "PART-1", WarehouseID: "WH-1", Quantity: 2},
			{PartID: "", WarehouseID: "WH-1", Quantity: 2},
			{PartID: "PART-1", WarehouseID: "WH-1", Quantity: 0},
		},
		ActorID: "tech-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.True(t, result.Results[0].Success)
	assert.Equal(t, errors.CodeValidationError, result.Results[1].ErrorCode)
	assert.Equal(t, "partId is required", result.Results[1].Error)
	assert.Equal(t, "quantity must be positive", result.Results[2].Error)
}

func TestReserveParts_InsufficientStockIsLineLevel(t *testing.T) {
	stockRepo := newFakeStockRepo()
	stockRepo.addStock("PART-1", "WH-1", 3, 0)
	stockRepo.addStock("PART-2", "WH-1", 10, 0)
	svc := newTestReservationService(stockRepo, newFakeReservationRepo())

	result, err := svc.ReserveParts(context.Background(), ReservePartsCommand{
		WorkOrderID: "WO-1",
		Lines: []ReservationLine{
			{PartID: "PART-1", WarehouseID: "WH-1", Quantity: 5},
			{PartID: "PART-2", WarehouseID: "WH-1", Quantity: 4},
		},
		ActorID: "tech-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, errors.CodeInsufficientStock, result.Results[0].ErrorCode)
	assert.Contains(t, result.Results[0].Error, "insufficient stock")
	assert.True(t, result.Results[1].Success)

	// The failed line must not touch the stock row
	stock, _ := stockRepo.FindByPartAndWarehouse(context.Background(), "PART-1", "WH-1")
	assert.Equal(t, 0, stock.ReservedQuantity)
}

func TestReserveParts_UnknownStockReportsNotFound(t *testing.T) {
	svc := newTestReservationService(newFakeStockRepo(), newFakeReservationRepo())

	result, err := svc.ReserveParts(context.Background(), ReservePartsCommand{
		WorkOrderID: "WO-1",
		Lines:       []ReservationLine{{PartID: "PART-X", WarehouseID: "WH-1", Quantity: 1}},
		ActorID:     "tech-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, errors.CodeNotFound, result.Results[0].ErrorCode)
}

func TestReserveParts_RequiresWorkOrderAndLines(t *testing.T) {
	svc := newTestReservationService(newFakeStockRepo(), newFakeReservationRepo())

	_, err := svc.ReserveParts(context.Background(), ReservePartsCommand{
		Lines: []ReservationLine{{PartID: "PART-1", WarehouseID: "WH-1", Quantity: 1}},
	})
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidationError, appErr.Code)

	_, err = svc.ReserveParts(context.Background(), ReservePartsCommand{WorkOrderID: "WO-1"})
	assert.Error(t, err)
}

func TestGetReservationStatus_SumsActiveOnly(t *testing.T) {
	reservationRepo := newFakeReservationRepo()
	active, _ := domain.NewReservation("WO-1", "PART-1", "WH-1", 5, "tech-1")
	consumed, _ := domain.NewReservation("WO-1", "PART-2", "WH-1", 3, "tech-1")
	require.NoError(t, consumed.Consume())
	reservationRepo.reservations[active.ID] = active
	reservationRepo.reservations[consumed.ID] = consumed

	svc := newTestReservationService(newFakeStockRepo(), reservationRepo)

	status, err := svc.GetReservationStatus(context.Background(), "WO-1")
	require.NoError(t, err)

	assert.Equal(t, "WO-1", status.WorkOrderID)
	assert.Len(t, status.Reservations, 2)
	assert.Equal(t, 5, status.TotalReserved)
	assert.Equal(t, 1, status.ActiveCount)
}

func TestReleaseReservation_CancelledReturnsQuantity(t *testing.T) {
	stockRepo := newFakeStockRepo()
	stockRepo.addStock("PART-1", "WH-1", 10, 4)
	reservationRepo := newFakeReservationRepo()
	reservation, _ := domain.NewReservation("WO-1", "PART-1", "WH-1", 4, "tech-1")
	reservationRepo.reservations[reservation.ID] = reservation

	svc := newTestReservationService(stockRepo, reservationRepo)

	dto, err := svc.ReleaseReservation(context.Background(), ReleaseReservationCommand{
		ReservationID: reservation.ID,
		Consumed:      false,
		ActorID:       "tech-1",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.ReservationCancelled), dto.Status)

	stock, _ := stockRepo.FindByPartAndWarehouse(context.Background(), "PART-1", "WH-1")
	assert.Equal(t, 10, stock.CurrentQuantity)
	assert.Equal(t, 0, stock.ReservedQuantity)
}

func TestReleaseReservation_ConsumedDrawsDownStock(t *testing.T) {
	stockRepo := newFakeStockRepo()
	stockRepo.addStock("PART-1", "WH-1", 10, 4)
	reservationRepo := newFakeReservationRepo()
	reservation, _ := domain.NewReservation("WO-1", "PART-1", "WH-1", 4, "tech-1")
	reservationRepo.reservations[reservation.ID] = reservation

	svc := newTestReservationService(stockRepo, reservationRepo)

	dto, err := svc.ReleaseReservation(context.Background(), ReleaseReservationCommand{
		ReservationID: reservation.ID,
		Consumed:      true,
		ActorID:       "tech-1",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.ReservationConsumed), dto.Status)

	stock, _ := stockRepo.FindByPartAndWarehouse(context.Background(), "PART-1", "WH-1")
	assert.Equal(t, 6, stock.CurrentQuantity)
	assert.Equal(t, 0, stock.ReservedQuantity)
}

func TestReleaseReservation_ClosedReservationConflicts(t *testing.T) {
	reservationRepo := newFakeReservationRepo()
	reservation, _ := domain.NewReservation("WO-1", "PART-1", "WH-1", 4, "tech-1")
	require.NoError(t, reservation.Cancel())
	reservationRepo.reservations[reservation.ID] = reservation

	svc := newTestReservationService(newFakeStockRepo(), reservationRepo)

	_, err := svc.ReleaseReservation(context.Background(), ReleaseReservationCommand{
		ReservationID: reservation.ID,
	})
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeConflict, appErr.Code)
}

func TestReleaseReservation_UnknownIDNotFound(t *testing.T) {
	svc := newTestReservationService(newFakeStockRepo(), newFakeReservationRepo())

	_, err := svc.ReleaseReservation(context.Background(), ReleaseReservationCommand{
		ReservationID: "missing",
	})
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeNotFound, appErr.Code)
}
