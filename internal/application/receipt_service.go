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

// ReceiptService converts purchase order line items into stock increases
type ReceiptService struct {
	stockRepo     domain.StockRepository
	partRepo      domain.PartRepository
	warehouseRepo domain.WarehouseRepository
	poRepo        domain.PurchaseOrderRepository
	logger        *logging.Logger
	metrics       *metrics.Metrics
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(
	stockRepo domain.StockRepository,
	partRepo domain.PartRepository,
	warehouseRepo domain.WarehouseRepository,
	poRepo domain.PurchaseOrderRepository,
	logger *logging.Logger,
	m *metrics.Metrics,
) *ReceiptService {
	return &ReceiptService{
		stockRepo:     stockRepo,
		partRepo:      partRepo,
		warehouseRepo: warehouseRepo,
		poRepo:        poRepo,
		logger:        logger.WithComponent("receipt-service"),
		metrics:       m,
	}
}

// ReceiveToInventory books received PO items into warehouse stock. Item
// validation runs over the whole batch before any mutation; once processing
// starts, each item is its own atomic unit and a failed item does not roll
// back its siblings. The PO's receivedToInventory flag flips true only when
// every item in the call succeeded.
func (s *ReceiptService) ReceiveToInventory(ctx context.Context, cmd ReceiveToInventoryCommand) (*ReceiptResultDTO, error) {
	if cmd.PurchaseOrderID == "" {
		return nil, errors.ErrValidation("purchaseOrderId is required")
	}
	if len(cmd.Items) == 0 {
		return nil, errors.ErrValidation("at least one item is required")
	}

	for i, item := range cmd.Items {
		if msg := validateReceiptItem(item); msg != "" {
			return nil, errors.ErrValidation(fmt.Sprintf("item %d (%s): %s", i+1, item.PartName, msg))
		}
	}

	state, err := s.loadOrCreatePOState(ctx, cmd.PurchaseOrderID)
	if err != nil {
		return nil, err
	}

	result := &ReceiptResultDTO{
		PurchaseOrderID: cmd.PurchaseOrderID,
		Results:         make([]LineResult, 0, len(cmd.Items)),
	}

	for i, item := range cmd.Items {
		lineResult := LineResult{
			Index:       i,
			PartName:    item.PartName,
			WarehouseID: item.WarehouseID,
			Quantity:    item.Quantity,
		}

		part, resolveErr := s.resolvePart(ctx, item.PartName, cmd.ActorID)
		if resolveErr != nil {
			lineResult.Error, lineResult.ErrorCode = classifyLineError(resolveErr)
			result.Results = append(result.Results, lineResult)
			result.Failed++
			continue
		}
		lineResult.PartID = part.ID

		warehouse, whErr := s.warehouseRepo.FindByID(ctx, item.WarehouseID)
		if whErr != nil {
			lineResult.Error, lineResult.ErrorCode = classifyLineError(whErr)
			result.Results = append(result.Results, lineResult)
			result.Failed++
			continue
		}
		if warehouse == nil {
			lineResult.Error = fmt.Sprintf("warehouse %s not found", item.WarehouseID)
			lineResult.ErrorCode = errors.CodeNotFound
			result.Results = append(result.Results, lineResult)
			result.Failed++
			continue
		}

		unitCost := *item.UnitCost
		movement := domain.NewMovement(domain.MovementEntry, part.ID, item.WarehouseID, item.Quantity, cmd.ActorID).
			WithPurchaseOrder(cmd.PurchaseOrderID).
			WithUnitCost(unitCost).
			WithReference(item.Reference)

		event := &domain.StockReceivedEvent{
			PartID:          part.ID,
			PartNumber:      part.PartNumber,
			WarehouseID:     item.WarehouseID,
			Quantity:        item.Quantity,
			UnitCostCents:   unitCost,
			PurchaseOrderID: cmd.PurchaseOrderID,
			ReceivedBy:      cmd.ActorID,
			ReceivedAt:      time.Now(),
		}

		_, recvErr := s.stockRepo.ReceiveStock(ctx, part.ID, item.WarehouseID, warehouse.PlantID,
			item.Quantity, unitCost, movement, []domain.DomainEvent{event})
		if recvErr != nil {
			lineResult.Error, lineResult.ErrorCode = classifyLineError(recvErr)
			result.Results = append(result.Results, lineResult)
			result.Failed++
			s.logger.Warn("receipt item failed",
				"purchaseOrderId", cmd.PurchaseOrderID,
				"partName", item.PartName,
				"warehouseId", item.WarehouseID,
				"error", recvErr,
			)
			continue
		}

		lineResult.Success = true
		result.Results = append(result.Results, lineResult)
		result.TotalItemsReceived++

		state.RecordReceipt(domain.ReceiptLine{
			PartID:      part.ID,
			PartName:    item.PartName,
			WarehouseID: item.WarehouseID,
			Quantity:    item.Quantity,
			UnitCost:    unitCost,
			ReceivedAt:  time.Now(),
		})

		if s.metrics != nil {
			s.metrics.RecordItemReceived()
			s.metrics.RecordMovement(string(domain.MovementEntry))
		}
	}

	allSucceeded := result.Failed == 0
	state.MarkReceived(allSucceeded)
	result.ReceivedToInventory = state.ReceivedToInventory
	result.Summary = fmt.Sprintf("%d succeeded, %d failed", result.TotalItemsReceived, result.Failed)

	poEvent := &domain.PurchaseOrderReceivedEvent{
		PurchaseOrderID: cmd.PurchaseOrderID,
		ItemsReceived:   result.TotalItemsReceived,
		ItemsFailed:     result.Failed,
		FullyReceived:   allSucceeded,
		ReceivedBy:      cmd.ActorID,
		ReceivedAt:      time.Now(),
	}
	if err := s.poRepo.Upsert(ctx, state, []domain.DomainEvent{poEvent}); err != nil {
		s.logger.Error("failed to save purchase order state",
			"purchaseOrderId", cmd.PurchaseOrderID, "error", err)
		return nil, fmt.Errorf("failed to save purchase order state: %w", err)
	}

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "inventory_received",
		EntityType: "purchaseOrder",
		EntityID:   cmd.PurchaseOrderID,
		Action:     "receive",
		RelatedIDs: map[string]string{
			"actorId": cmd.ActorID,
			"summary": result.Summary,
		},
	})

	return result, nil
}

// resolvePart finds a catalog part by exact part number first, then exact
// name, and auto-creates it when neither matches
func (s *ReceiptService) resolvePart(ctx context.Context, partName, actorID string) (*domain.Part, error) {
	part, err := s.partRepo.FindByPartNumber(ctx, partName)
	if err != nil {
		return nil, fmt.Errorf("part lookup failed: %w", err)
	}
	if part != nil {
		return part, nil
	}

	part, err = s.partRepo.FindByName(ctx, partName)
	if err != nil {
		return nil, fmt.Errorf("part lookup failed: %w", err)
	}
	if part != nil {
		return part, nil
	}

	part, err = domain.NewPart(partName, partName, "", "", actorID)
	if err != nil {
		return nil, err
	}

	event := &domain.PartCreatedEvent{
		PartID:     part.ID,
		PartNumber: part.PartNumber,
		Name:       part.Name,
		CreatedBy:  actorID,
		CreatedAt:  part.CreatedAt,
	}
	if err := s.partRepo.Create(ctx, part, []domain.DomainEvent{event}); err != nil {
		return nil, fmt.Errorf("part auto-create failed: %w", err)
	}

	s.logger.Info("auto-created part from receipt", "partId", part.ID, "partName", partName)
	return part, nil
}

func (s *ReceiptService) loadOrCreatePOState(ctx context.Context, purchaseOrderID string) (*domain.PurchaseOrderInventoryState, error) {
	state, err := s.poRepo.FindByID(ctx, purchaseOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase order state: %w", err)
	}
	if state == nil {
		state = domain.NewPurchaseOrderInventoryState(purchaseOrderID)
	}
	return state, nil
}

func validateReceiptItem(item ReceiptItem) string {
	switch {
	case item.PartName == "":
		return "partName is required"
	case item.WarehouseID == "":
		return "warehouseId is required"
	case item.Quantity <= 0:
		return "quantity must be positive"
	case item.UnitCost == nil:
		return "unitCost is required"
	case *item.UnitCost < 0:
		return "unitCost cannot be negative"
	}
	return ""
}
