package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/errors"
	"github.com/cmms-platform/inventory-service/pkg/logging"
)

const defaultSearchLimit = 25

// CatalogService manages parts and warehouses
type CatalogService struct {
	partRepo      domain.PartRepository
	warehouseRepo domain.WarehouseRepository
	logger        *logging.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	partRepo domain.PartRepository,
	warehouseRepo domain.WarehouseRepository,
	logger *logging.Logger,
) *CatalogService {
	return &CatalogService{
		partRepo:      partRepo,
		warehouseRepo: warehouseRepo,
		logger:        logger.WithComponent("catalog-service"),
	}
}

// SearchParts returns parts matching the query, exact part number match first
func (s *CatalogService) SearchParts(ctx context.Context, query string) ([]PartDTO, error) {
	if query == "" {
		return nil, errors.ErrValidation("query is required")
	}

	exact, err := s.partRepo.FindByPartNumber(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("part search failed: %w", err)
	}
	if exact != nil {
		return []PartDTO{*ToPartDTO(exact)}, nil
	}

	parts, err := s.partRepo.Search(ctx, query, defaultSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("part search failed: %w", err)
	}
	return ToPartDTOs(parts), nil
}

// GetPart retrieves one part by ID
func (s *CatalogService) GetPart(ctx context.Context, partID string) (*PartDTO, error) {
	part, err := s.partRepo.FindByID(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("failed to get part: %w", err)
	}
	if part == nil {
		return nil, errors.ErrNotFoundWithID("part", partID)
	}
	return ToPartDTO(part), nil
}

// CreatePart adds a catalog part
func (s *CatalogService) CreatePart(ctx context.Context, cmd CreatePartCommand) (*PartDTO, error) {
	if cmd.PartNumber == "" || cmd.Name == "" {
		return nil, errors.ErrValidation("partNumber and name are required")
	}

	existing, err := s.partRepo.FindByPartNumber(ctx, cmd.PartNumber)
	if err != nil {
		return nil, fmt.Errorf("part lookup failed: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("part number %s already exists", cmd.PartNumber))
	}

	part, err := domain.NewPart(cmd.PartNumber, cmd.Name, cmd.Category, cmd.SupplierID, cmd.ActorID)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	event := &domain.PartCreatedEvent{
		PartID:     part.ID,
		PartNumber: part.PartNumber,
		Name:       part.Name,
		CreatedBy:  cmd.ActorID,
		CreatedAt:  part.CreatedAt,
	}
	if err := s.partRepo.Create(ctx, part, []domain.DomainEvent{event}); err != nil {
		s.logger.Error("failed to create part", "partNumber", cmd.PartNumber, "error", err)
		return nil, fmt.Errorf("failed to create part: %w", err)
	}

	s.logger.Info("part created", "partId", part.ID, "partNumber", part.PartNumber, "actorId", cmd.ActorID)
	return ToPartDTO(part), nil
}

// DeactivatePart soft-deletes a part
func (s *CatalogService) DeactivatePart(ctx context.Context, partID, actorID string) (*PartDTO, error) {
	part, err := s.partRepo.FindByID(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("failed to get part: %w", err)
	}
	if part == nil {
		return nil, errors.ErrNotFoundWithID("part", partID)
	}

	part.Deactivate()

	event := &domain.PartDeactivatedEvent{
		PartID:        part.ID,
		PartNumber:    part.PartNumber,
		DeactivatedBy: actorID,
		DeactivatedAt: time.Now(),
	}
	if err := s.partRepo.Save(ctx, part, []domain.DomainEvent{event}); err != nil {
		s.logger.Error("failed to deactivate part", "partId", partID, "error", err)
		return nil, fmt.Errorf("failed to deactivate part: %w", err)
	}

	s.logger.Info("part deactivated", "partId", partID, "actorId", actorID)
	return ToPartDTO(part), nil
}

// CreateWarehouse adds a warehouse under a plant
func (s *CatalogService) CreateWarehouse(ctx context.Context, cmd CreateWarehouseCommand) (*WarehouseDTO, error) {
	if cmd.PlantID == "" || cmd.Code == "" || cmd.Name == "" {
		return nil, errors.ErrValidation("plantId, code and name are required")
	}

	warehouse := domain.NewWarehouse(cmd.PlantID, cmd.Code, cmd.Name)
	if err := s.warehouseRepo.Create(ctx, warehouse); err != nil {
		s.logger.Error("failed to create warehouse", "code", cmd.Code, "error", err)
		return nil, fmt.Errorf("failed to create warehouse: %w", err)
	}

	s.logger.Info("warehouse created", "warehouseId", warehouse.ID, "code", cmd.Code, "actorId", cmd.ActorID)
	return ToWarehouseDTO(warehouse), nil
}

// ListWarehouses lists warehouses, optionally scoped to a plant
func (s *CatalogService) ListWarehouses(ctx context.Context, plantID string, activeOnly bool) ([]WarehouseDTO, error) {
	warehouses, err := s.warehouseRepo.FindAll(ctx, plantID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	return ToWarehouseDTOs(warehouses), nil
}
