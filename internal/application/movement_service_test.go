package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/errors"
)

func entryMovement(partID, poID, reference string, qty int) *domain.Movement {
	return domain.NewMovement(domain.MovementEntry, partID, "WH-1", qty, "clerk-1").
		WithPurchaseOrder(poID).
		WithReference(reference)
}

func TestListMovements_FiltersByType(t *testing.T) {
	repo := &fakeMovementRepo{movements: []*domain.Movement{
		entryMovement("PART-1", "PO-1", "DN-1", 10),
		domain.NewMovement(domain.MovementConsumption, "PART-1", "WH-1", -3, "tech-1"),
	}}
	svc := NewMovementService(repo, newTestLogger())

	page, err := svc.ListMovements(context.Background(), ListMovementsQuery{MovementType: "entry"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "entry", page.Data[0].MovementType)
	assert.Equal(t, int64(1), page.TotalItems)
}

func TestListMovements_RejectsUnknownType(t *testing.T) {
	svc := NewMovementService(&fakeMovementRepo{}, newTestLogger())

	_, err := svc.ListMovements(context.Background(), ListMovementsQuery{MovementType: "teleport"})
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidationError, appErr.Code)
}

func TestListMovements_RejectsBadTimestamps(t *testing.T) {
	svc := NewMovementService(&fakeMovementRepo{}, newTestLogger())

	_, err := svc.ListMovements(context.Background(), ListMovementsQuery{From: "yesterday"})
	assert.Error(t, err)

	_, err = svc.ListMovements(context.Background(), ListMovementsQuery{To: "2026-13-99"})
	assert.Error(t, err)

	_, err = svc.ListMovements(context.Background(), ListMovementsQuery{
		From: "2026-01-01T00:00:00Z",
		To:   "2026-02-01T00:00:00Z",
	})
	assert.NoError(t, err)
}

func TestCleanupDuplicateReceipts_KeepsOnePerGroup(t *testing.T) {
	repo := &fakeMovementRepo{movements: []*domain.Movement{
		entryMovement("PART-1", "PO-1", "DN-1", 10),
		entryMovement("PART-1", "PO-1", "DN-1", 10),
		entryMovement("PART-1", "PO-1", "DN-1", 10),
		entryMovement("PART-2", "PO-1", "DN-1", 5),
	}}
	svc := NewMovementService(repo, newTestLogger())

	result, err := svc.CleanupDuplicateReceipts(context.Background(), CleanupDuplicateReceiptsCommand{
		PurchaseOrderID: "PO-1",
		ActorID:         "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Deleted)
	assert.Len(t, repo.movements, 2)
}

func TestCleanupDuplicateReceipts_SecondRunDeletesNothing(t *testing.T) {
	repo := &fakeMovementRepo{movements: []*domain.Movement{
		entryMovement("PART-1", "PO-1", "DN-1", 10),
		entryMovement("PART-1", "PO-1", "DN-1", 10),
	}}
	svc := NewMovementService(repo, newTestLogger())

	first, err := svc.CleanupDuplicateReceipts(context.Background(), CleanupDuplicateReceiptsCommand{PurchaseOrderID: "PO-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Deleted)

	second, err := svc.CleanupDuplicateReceipts(context.Background(), CleanupDuplicateReceiptsCommand{PurchaseOrderID: "PO-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.Deleted)
}

func TestCleanupDuplicateReceipts_ScopedToPurchaseOrder(t *testing.T) {
	repo := &fakeMovementRepo{movements: []*domain.Movement{
		entryMovement("PART-1", "PO-1", "DN-1", 10),
		entryMovement("PART-1", "PO-1", "DN-1", 10),
		entryMovement("PART-1", "PO-2", "DN-2", 10),
		entryMovement("PART-1", "PO-2", "DN-2", 10),
	}}
	svc := NewMovementService(repo, newTestLogger())

	result, err := svc.CleanupDuplicateReceipts(context.Background(), CleanupDuplicateReceiptsCommand{PurchaseOrderID: "PO-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Deleted)
	assert.Len(t, repo.movements, 3, "other purchase orders must be untouched")
}
