package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/api"
	"github.com/cmms-platform/inventory-service/pkg/errors"
	"github.com/cmms-platform/inventory-service/pkg/logging"
)

// MovementService handles movement log queries and the one maintenance path
type MovementService struct {
	movementRepo domain.MovementRepository
	logger       *logging.Logger
}

// NewMovementService creates a new MovementService
func NewMovementService(movementRepo domain.MovementRepository, logger *logging.Logger) *MovementService {
	return &MovementService{
		movementRepo: movementRepo,
		logger:       logger.WithComponent("movement-service"),
	}
}

// ListMovements returns a page of ledger entries matching the filter
func (s *MovementService) ListMovements(ctx context.Context, query ListMovementsQuery) (*api.PageResponse[MovementDTO], error) {
	if query.MovementType != "" && !domain.MovementType(query.MovementType).IsValid() {
		return nil, errors.ErrValidation(fmt.Sprintf("unknown movement type %q", query.MovementType))
	}

	filter := domain.MovementFilter{
		PartID:          query.PartID,
		WarehouseID:     query.WarehouseID,
		MovementType:    domain.MovementType(query.MovementType),
		WorkOrderID:     query.WorkOrderID,
		PurchaseOrderID: query.PurchaseOrderID,
	}

	if query.From != "" {
		from, err := time.Parse(time.RFC3339, query.From)
		if err != nil {
			return nil, errors.ErrValidation("from must be an RFC 3339 timestamp")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := time.Parse(time.RFC3339, query.To)
		if err != nil {
			return nil, errors.ErrValidation("to must be an RFC 3339 timestamp")
		}
		filter.To = &to
	}

	page := api.PageRequest{Page: int64(query.Page), PageSize: int64(query.PageSize)}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize < 1 {
		page.PageSize = api.DefaultPageRequest().PageSize
	}
	if page.PageSize > 100 {
		page.PageSize = 100
	}

	movements, total, err := s.movementRepo.List(ctx, filter, page.GetOffset(), page.GetLimit())
	if err != nil {
		s.logger.Error("failed to list movements", "error", err)
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}

	resp := api.NewPageResponse(ToMovementDTOs(movements), page.Page, page.PageSize, total)
	return &resp, nil
}

// CleanupDuplicateReceipts removes duplicated entry movements, keeping the
// earliest of each duplicate group. Running it twice deletes nothing the
// second time.
func (s *MovementService) CleanupDuplicateReceipts(ctx context.Context, cmd CleanupDuplicateReceiptsCommand) (*CleanupResultDTO, error) {
	deleted, err := s.movementRepo.CleanupDuplicateReceipts(ctx, cmd.PurchaseOrderID)
	if err != nil {
		s.logger.Error("duplicate receipt cleanup failed",
			"purchaseOrderId", cmd.PurchaseOrderID, "error", err)
		return nil, fmt.Errorf("duplicate receipt cleanup failed: %w", err)
	}

	s.logger.Info("duplicate receipt cleanup finished",
		"purchaseOrderId", cmd.PurchaseOrderID,
		"deleted", deleted,
		"actorId", cmd.ActorID,
	)

	return &CleanupResultDTO{
		PurchaseOrderID: cmd.PurchaseOrderID,
		Deleted:         deleted,
	}, nil
}
