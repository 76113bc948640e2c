package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/errors"
)

func newTestCatalogService(partRepo *fakePartRepo, warehouseRepo *fakeWarehouseRepo) *CatalogService {
	return NewCatalogService(partRepo, warehouseRepo, newTestLogger())
}

func TestSearchParts_ExactPartNumberWins(t *testing.T) {
	partRepo := newFakePartRepo()
	exact, _ := domain.NewPart("BRG-6204", "Bearing 6204", "", "", "admin")
	similar, _ := domain.NewPart("BRG-6204-2RS", "Bearing 6204 sealed", "", "", "admin")
	partRepo.parts[exact.ID] = exact
	partRepo.parts[similar.ID] = similar

	svc := newTestCatalogService(partRepo, newFakeWarehouseRepo())

	results, err := svc.SearchParts(context.Background(), "BRG-6204")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, exact.ID, results[0].ID)

	prefix, err := svc.SearchParts(context.Background(), "BRG")
	require.NoError(t, err)
	assert.Len(t, prefix, 2)
}

func TestSearchParts_RequiresQuery(t *testing.T) {
	svc := newTestCatalogService(newFakePartRepo(), newFakeWarehouseRepo())

	_, err := svc.SearchParts(context.Background(), "")
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, errors.CodeValidationError, appErr.Code)
}

func TestCreatePart_DuplicateNumberConflicts(t *testing.T) {
	svc := newTestCatalogService(newFakePartRepo(), newFakeWarehouseRepo())

	first, err := svc.CreatePart(context.Background(), CreatePartCommand{
		PartNumber: "BRG-6204",
		Name:       "Bearing 6204",
		ActorID:    "admin",
	})
	require.NoError(t, err)
	assert.True(t, first.Active)

	_, err = svc.CreatePart(context.Background(), CreatePartCommand{
		PartNumber: "BRG-6204",
		Name:       "Another bearing",
		ActorID:    "admin",
	})
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeConflict, appErr.Code)
}

func TestDeactivatePart(t *testing.T) {
	partRepo := newFakePartRepo()
	part, _ := domain.NewPart("BRG-6204", "Bearing 6204", "", "", "admin")
	partRepo.parts[part.ID] = part

	svc := newTestCatalogService(partRepo, newFakeWarehouseRepo())

	dto, err := svc.DeactivatePart(context.Background(), part.ID, "admin")
	require.NoError(t, err)
	assert.False(t, dto.Active)

	_, err = svc.DeactivatePart(context.Background(), "missing", "admin")
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, errors.CodeNotFound, appErr.Code)
}

func TestCreateAndListWarehouses(t *testing.T) {
	warehouseRepo := newFakeWarehouseRepo()
	svc := newTestCatalogService(newFakePartRepo(), warehouseRepo)

	created, err := svc.CreateWarehouse(context.Background(), CreateWarehouseCommand{
		PlantID: "PLANT-1",
		Code:    "MAIN",
		Name:    "Main store",
		ActorID: "admin",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	inactive := domain.NewWarehouse("PLANT-1", "OLD", "Old store")
	inactive.Deactivate()
	require.NoError(t, warehouseRepo.Create(context.Background(), inactive))

	all, err := svc.ListWarehouses(context.Background(), "PLANT-1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	activeOnly, err := svc.ListWarehouses(context.Background(), "PLANT-1", true)
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, "MAIN", activeOnly[0].Code)
}

func TestCreateWarehouse_Validation(t *testing.T) {
	svc := newTestCatalogService(newFakePartRepo(), newFakeWarehouseRepo())

	_, err := svc.CreateWarehouse(context.Background(), CreateWarehouseCommand{PlantID: "PLANT-1"})
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, errors.CodeValidationError, appErr.Code)
}
