package application

import (
	"context"
	"fmt"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/errors"
	"github.com/cmms-platform/inventory-service/pkg/logging"
	"github.com/cmms-platform/inventory-service/pkg/metrics"
)

// StockService handles stock ledger use cases
type StockService struct {
	stockRepo domain.StockRepository
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

// NewStockService creates a new StockService
func NewStockService(stockRepo domain.StockRepository, logger *logging.Logger, m *metrics.Metrics) *StockService {
	return &StockService{
		stockRepo: stockRepo,
		logger:    logger.WithComponent("stock-service"),
		metrics:   m,
	}
}

// GetStock lists stock rows matching the filter
func (s *StockService) GetStock(ctx context.Context, query GetStockQuery) ([]StockDTO, error) {
	stocks, err := s.stockRepo.Find(ctx, domain.StockFilter{
		PartID:       query.PartID,
		WarehouseID:  query.WarehouseID,
		PlantID:      query.PlantID,
		LowStockOnly: query.LowStockOnly,
	})
	if err != nil {
		s.logger.Error("failed to list stock", "error", err)
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	return ToStockDTOs(stocks), nil
}

// GetStockByID retrieves one stock row
func (s *StockService) GetStockByID(ctx context.Context, stockID string) (*StockDTO, error) {
	stock, err := s.stockRepo.FindByID(ctx, stockID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	if stock == nil {
		return nil, errors.ErrNotFoundWithID("stock", stockID)
	}
	return ToStockDTO(stock), nil
}

// AdjustStock sets a stock row's current quantity to a physical count and
// appends exactly one adjustment movement
func (s *StockService) AdjustStock(ctx context.Context, cmd AdjustStockCommand) (*StockDTO, error) {
	if cmd.PhysicalCount < 0 {
		return nil, errors.ErrValidation("physicalCount cannot be negative")
	}
	if cmd.StockID == "" {
		return nil, errors.ErrValidation("stockId is required")
	}

	stock, movement, err := s.stockRepo.AdjustStock(ctx, cmd.StockID, cmd.PhysicalCount, cmd.Reason, cmd.ActorID)
	if err != nil {
		if err == domain.ErrStockNotFound {
			return nil, errors.ErrNotFoundWithID("stock", cmd.StockID)
		}
		s.logger.Error("failed to adjust stock", "stockId", cmd.StockID, "error", err)
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordMovement(string(domain.MovementAdjustment))
	}

	if stock.CurrentQuantity < stock.ReservedQuantity {
		s.logger.Warn("adjustment left current below reserved",
			"stockId", stock.ID,
			"partId", stock.PartID,
			"warehouseId", stock.WarehouseID,
			"currentQuantity", stock.CurrentQuantity,
			"reservedQuantity", stock.ReservedQuantity,
		)
	}

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "stock_adjusted",
		EntityType: "stock",
		EntityID:   stock.ID,
		Action:     "adjust",
		RelatedIDs: map[string]string{
			"partId":      stock.PartID,
			"warehouseId": stock.WarehouseID,
			"actorId":     cmd.ActorID,
		},
	})
	s.logger.Info("stock adjusted",
		"stockId", stock.ID,
		"physicalCount", cmd.PhysicalCount,
		"delta", movement.Quantity,
		"reason", cmd.Reason,
	)

	return ToStockDTO(stock), nil
}

// TransferStock moves quantity from one warehouse to another in one
// transaction, producing two transfer movements
func (s *StockService) TransferStock(ctx context.Context, cmd TransferStockCommand) error {
	if cmd.PartID == "" || cmd.FromWarehouseID == "" || cmd.ToWarehouseID == "" {
		return errors.ErrValidation("partId, fromWarehouseId and toWarehouseId are required")
	}
	if cmd.Quantity <= 0 {
		return errors.ErrValidation("quantity must be positive")
	}
	if cmd.FromWarehouseID == cmd.ToWarehouseID {
		return errors.ErrValidation("source and destination warehouse must differ")
	}

	err := s.stockRepo.TransferStock(ctx, cmd.PartID, cmd.FromWarehouseID, cmd.ToWarehouseID,
		cmd.Quantity, cmd.ActorID, nil)
	if err != nil {
		if appErr := errors.MapDomainError(err); appErr.Code != errors.CodeInternalError {
			return appErr
		}
		s.logger.Error("failed to transfer stock",
			"partId", cmd.PartID,
			"from", cmd.FromWarehouseID,
			"to", cmd.ToWarehouseID,
			"error", err,
		)
		return fmt.Errorf("failed to transfer stock: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordMovement(string(domain.MovementTransfer))
	}

	s.logger.Info("stock transferred",
		"partId", cmd.PartID,
		"from", cmd.FromWarehouseID,
		"to", cmd.ToWarehouseID,
		"quantity", cmd.Quantity,
		"actorId", cmd.ActorID,
	)
	return nil
}
