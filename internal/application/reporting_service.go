package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/logging"
	"github.com/cmms-platform/inventory-service/pkg/metrics"
)

// DefaultStaleThreshold is used when no reservation stale threshold is configured
const DefaultStaleThreshold = 72 * time.Hour

// ReportingService derives read-only views from the ledger and the log.
// Nothing here mutates state.
type ReportingService struct {
	stockRepo       domain.StockRepository
	reservationRepo domain.ReservationRepository
	partRepo        domain.PartRepository
	staleThreshold  time.Duration
	logger          *logging.Logger
	metrics         *metrics.Metrics
}

// NewReportingService creates a new ReportingService
func NewReportingService(
	stockRepo domain.StockRepository,
	reservationRepo domain.ReservationRepository,
	partRepo domain.PartRepository,
	staleThreshold time.Duration,
	logger *logging.Logger,
	m *metrics.Metrics,
) *ReportingService {
	if staleThreshold <= 0 {
		staleThreshold = DefaultStaleThreshold
	}
	return &ReportingService{
		stockRepo:       stockRepo,
		reservationRepo: reservationRepo,
		partRepo:        partRepo,
		staleThreshold:  staleThreshold,
		logger:          logger.WithComponent("reporting-service"),
		metrics:         m,
	}
}

// GetLowStock lists rows where available stock has reached the reorder point
func (s *ReportingService) GetLowStock(ctx context.Context, plantID string) ([]LowStockRowDTO, error) {
	stocks, err := s.stockRepo.FindLowStock(ctx, plantID)
	if err != nil {
		s.logger.Error("failed to load low stock rows", "error", err)
		return nil, fmt.Errorf("failed to load low stock rows: %w", err)
	}

	rows := make([]LowStockRowDTO, 0, len(stocks))
	for _, stock := range stocks {
		row := LowStockRowDTO{
			PartID:            stock.PartID,
			WarehouseID:       stock.WarehouseID,
			CurrentQuantity:   stock.CurrentQuantity,
			ReservedQuantity:  stock.ReservedQuantity,
			AvailableQuantity: stock.AvailableQuantity(),
			ReorderPoint:      stock.ReorderPoint,
		}
		if part, perr := s.partRepo.FindByID(ctx, stock.PartID); perr == nil && part != nil {
			row.PartNumber = part.PartNumber
			row.PartName = part.Name
		}
		rows = append(rows, row)
		if s.metrics != nil {
			s.metrics.RecordLowStockAlert()
		}
	}

	return rows, nil
}

// GetStaleReservations lists active holds older than the configured threshold
func (s *ReportingService) GetStaleReservations(ctx context.Context) ([]StaleReservationDTO, error) {
	reservations, err := s.reservationRepo.FindStale(ctx, s.staleThreshold)
	if err != nil {
		s.logger.Error("failed to load stale reservations", "error", err)
		return nil, fmt.Errorf("failed to load stale reservations: %w", err)
	}

	rows := make([]StaleReservationDTO, 0, len(reservations))
	for _, r := range reservations {
		rows = append(rows, StaleReservationDTO{
			ReservationDTO: *ToReservationDTO(r),
			AgeHours:       time.Since(r.CreatedAt).Hours(),
		})
	}

	return rows, nil
}

// GetValuation aggregates currentQuantity * averageUnitCost per stock row
func (s *ReportingService) GetValuation(ctx context.Context, query GetStockQuery) (*ValuationReportDTO, error) {
	stocks, err := s.stockRepo.Find(ctx, domain.StockFilter{
		PartID:      query.PartID,
		WarehouseID: query.WarehouseID,
		PlantID:     query.PlantID,
	})
	if err != nil {
		s.logger.Error("failed to load stock for valuation", "error", err)
		return nil, fmt.Errorf("failed to load stock for valuation: %w", err)
	}

	report := &ValuationReportDTO{Rows: make([]ValuationRowDTO, 0, len(stocks))}
	for _, stock := range stocks {
		valuation := stock.ValuationCents()
		report.Rows = append(report.Rows, ValuationRowDTO{
			PartID:          stock.PartID,
			WarehouseID:     stock.WarehouseID,
			PlantID:         stock.PlantID,
			CurrentQuantity: stock.CurrentQuantity,
			AverageUnitCost: stock.AverageUnitCost,
			ValuationCents:  valuation,
		})
		report.TotalCents += valuation
	}

	return report, nil
}

// StaleThreshold exposes the configured threshold for diagnostics
func (s *ReportingService) StaleThreshold() time.Duration {
	return s.staleThreshold
}
