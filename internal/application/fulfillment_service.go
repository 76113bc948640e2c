package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/errors"
	"github.com/cmms-platform/inventory-service/pkg/logging"
	"github.com/cmms-platform/inventory-service/pkg/metrics"
)

// FulfillmentService satisfies purchase order lines directly from existing
// warehouse stock instead of booking new purchased quantity
type FulfillmentService struct {
	stockRepo domain.StockRepository
	poRepo    domain.PurchaseOrderRepository
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

// NewFulfillmentService creates a new FulfillmentService
func NewFulfillmentService(
	stockRepo domain.StockRepository,
	poRepo domain.PurchaseOrderRepository,
	logger *logging.Logger,
	m *metrics.Metrics,
) *FulfillmentService {
	return &FulfillmentService{
		stockRepo: stockRepo,
		poRepo:    poRepo,
		logger:    logger.WithComponent("fulfillment-service"),
		metrics:   m,
	}
}

// FulfillFromInventory draws down stock for each PO line. This is a direct
// consumption, not a hold; each line is its own atomic unit and failures are
// reported without aborting siblings. The PO's fulfilledFromInventory flag
// flips true when at least one line succeeded.
func (s *FulfillmentService) FulfillFromInventory(ctx context.Context, cmd FulfillFromInventoryCommand) (*FulfillmentResultDTO, error) {
	if cmd.PurchaseOrderID == "" {
		return nil, errors.ErrValidation("purchaseOrderId is required")
	}
	if len(cmd.Lines) == 0 {
		return nil, errors.ErrValidation("at least one fulfillment line is required")
	}

	state, err := s.poRepo.FindByID(ctx, cmd.PurchaseOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase order state: %w", err)
	}
	if state == nil {
		state = domain.NewPurchaseOrderInventoryState(cmd.PurchaseOrderID)
	}

	result := &FulfillmentResultDTO{
		PurchaseOrderID: cmd.PurchaseOrderID,
		Results:         make([]LineResult, 0, len(cmd.Lines)),
	}

	for i, line := range cmd.Lines {
		lineResult := LineResult{
			Index:       i,
			PartID:      line.PartID,
			WarehouseID: line.WarehouseID,
			Quantity:    line.Quantity,
		}

		if msg := validateReservationLine(line.PartID, line.WarehouseID, line.Quantity); msg != "" {
			lineResult.Error = msg
			lineResult.ErrorCode = errors.CodeValidationError
			result.Results = append(result.Results, lineResult)
			result.Failed++
			continue
		}

		movement := domain.NewMovement(domain.MovementConsumption, line.PartID, line.WarehouseID,
			line.Quantity, cmd.ActorID).WithPurchaseOrder(cmd.PurchaseOrderID)

		event := &domain.StockConsumedEvent{
			PartID:          line.PartID,
			WarehouseID:     line.WarehouseID,
			Quantity:        line.Quantity,
			PurchaseOrderID: cmd.PurchaseOrderID,
			ConsumedBy:      cmd.ActorID,
			ConsumedAt:      time.Now(),
		}

		err := s.stockRepo.ConsumeStock(ctx, line.PartID, line.WarehouseID, line.Quantity,
			movement, []domain.DomainEvent{event})
		if err != nil {
			lineResult.Error, lineResult.ErrorCode = classifyLineError(err)
			result.Results = append(result.Results, lineResult)
			result.Failed++
			s.logger.Warn("fulfillment line failed",
				"purchaseOrderId", cmd.PurchaseOrderID,
				"partId", line.PartID,
				"warehouseId", line.WarehouseID,
				"quantity", line.Quantity,
				"error", err,
			)
			continue
		}

		lineResult.Success = true
		result.Results = append(result.Results, lineResult)
		result.ItemsFulfilled++

		state.RecordFulfillment(domain.FulfillmentLine{
			PartID:      line.PartID,
			WarehouseID: line.WarehouseID,
			Quantity:    line.Quantity,
			FulfilledAt: time.Now(),
		})

		if s.metrics != nil {
			s.metrics.RecordItemFulfilled()
			s.metrics.RecordMovement(string(domain.MovementConsumption))
		}
	}

	state.MarkFulfilled(result.ItemsFulfilled > 0)
	result.FulfilledFromInventory = state.FulfilledFromInventory
	result.Summary = fmt.Sprintf("%d succeeded, %d failed", result.ItemsFulfilled, result.Failed)

	poEvent := &domain.PurchaseOrderFulfilledEvent{
		PurchaseOrderID: cmd.PurchaseOrderID,
		ItemsFulfilled:  result.ItemsFulfilled,
		ItemsFailed:     result.Failed,
		FulfilledBy:     cmd.ActorID,
		FulfilledAt:     time.Now(),
	}
	if err := s.poRepo.Upsert(ctx, state, []domain.DomainEvent{poEvent}); err != nil {
		s.logger.Error("failed to save purchase order state",
			"purchaseOrderId", cmd.PurchaseOrderID, "error", err)
		return nil, fmt.Errorf("failed to save purchase order state: %w", err)
	}

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "inventory_fulfilled",
		EntityType: "purchaseOrder",
		EntityID:   cmd.PurchaseOrderID,
		Action:     "fulfill",
		RelatedIDs: map[string]string{
			"actorId": cmd.ActorID,
			"summary": result.Summary,
		},
	})

	return result, nil
}
