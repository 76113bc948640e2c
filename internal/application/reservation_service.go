package application

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/errors"
	"github.com/cmms-platform/inventory-service/pkg/logging"
	"github.com/cmms-platform/inventory-service/pkg/metrics"
)

// ReservationService handles stock holds for work orders
type ReservationService struct {
	stockRepo       domain.StockRepository
	reservationRepo domain.ReservationRepository
	logger          *logging.Logger
	metrics         *metrics.Metrics
}

// NewReservationService creates a new ReservationService
func NewReservationService(
	stockRepo domain.StockRepository,
	reservationRepo domain.ReservationRepository,
	logger *logging.Logger,
	m *metrics.Metrics,
) *ReservationService {
	return &ReservationService{
		stockRepo:       stockRepo,
		reservationRepo: reservationRepo,
		logger:          logger.WithComponent("reservation-service"),
		metrics:         m,
	}
}

// ReserveParts holds stock for a work order, line by line. Each line is its
// own atomic unit: a line that fails validation or availability is reported
// in the result and does not abort its siblings.
func (s *ReservationService) ReserveParts(ctx context.Context, cmd ReservePartsCommand) (*ReservationResultDTO, error) {
	if cmd.WorkOrderID == "" {
		return nil, errors.ErrValidation("workOrderId is required")
	}
	if len(cmd.Lines) == 0 {
		return nil, errors.ErrValidation("at least one reservation line is required")
	}

	result := &ReservationResultDTO{
		WorkOrderID:  cmd.WorkOrderID,
		Results:      make([]LineResult, 0, len(cmd.Lines)),
		Reservations: make([]ReservationDTO, 0, len(cmd.Lines)),
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
			if s.metrics != nil {
				s.metrics.RecordReservationFailure("validation")
			}
			continue
		}

		reservation, err := domain.NewReservation(cmd.WorkOrderID, line.PartID, line.WarehouseID, line.Quantity, cmd.ActorID)
		if err != nil {
			lineResult.Error = err.Error()
			lineResult.ErrorCode = errors.CodeValidationError
			result.Results = append(result.Results, lineResult)
			result.Failed++
			continue
		}

		movement := domain.NewMovement(domain.MovementReservation, line.PartID, line.WarehouseID, line.Quantity, cmd.ActorID).
			WithWorkOrder(cmd.WorkOrderID)

		event := &domain.StockReservedEvent{
			ReservationID: reservation.ID,
			WorkOrderID:   cmd.WorkOrderID,
			PartID:        line.PartID,
			WarehouseID:   line.WarehouseID,
			Quantity:      line.Quantity,
			ReservedBy:    cmd.ActorID,
			ReservedAt:    time.Now(),
		}

		err = s.stockRepo.ReserveStock(ctx, line.PartID, line.WarehouseID, line.Quantity,
			reservation, movement, []domain.DomainEvent{event})
		if err != nil {
			lineResult.Error, lineResult.ErrorCode = classifyLineError(err)
			result.Results = append(result.Results, lineResult)
			result.Failed++
			if s.metrics != nil {
				s.metrics.RecordReservationFailure(failureReason(err))
			}
			s.logger.Warn("reservation line failed",
				"workOrderId", cmd.WorkOrderID,
				"partId", line.PartID,
				"warehouseId", line.WarehouseID,
				"quantity", line.Quantity,
				"error", err,
			)
			continue
		}

		lineResult.Success = true
		result.Results = append(result.Results, lineResult)
		result.Succeeded++
		result.Reservations = append(result.Reservations, *ToReservationDTO(reservation))
		if s.metrics != nil {
			s.metrics.RecordReservation()
			s.metrics.RecordMovement(string(domain.MovementReservation))
		}
	}

	result.Summary = fmt.Sprintf("%d succeeded, %d failed", result.Succeeded, result.Failed)

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "parts_reserved",
		EntityType: "workOrder",
		EntityID:   cmd.WorkOrderID,
		Action:     "reserve",
		RelatedIDs: map[string]string{
			"actorId": cmd.ActorID,
			"summary": result.Summary,
		},
	})

	return result, nil
}

// GetReservationStatus reports the holds recorded for a work order
func (s *ReservationService) GetReservationStatus(ctx context.Context, workOrderID string) (*ReservationStatusDTO, error) {
	if workOrderID == "" {
		return nil, errors.ErrValidation("workOrderId is required")
	}

	reservations, err := s.reservationRepo.FindByWorkOrder(ctx, workOrderID)
	if err != nil {
		s.logger.Error("failed to load reservations", "workOrderId", workOrderID, "error", err)
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}

	status := &ReservationStatusDTO{
		WorkOrderID:  workOrderID,
		Reservations: make([]ReservationDTO, 0, len(reservations)),
	}
	for _, r := range reservations {
		status.Reservations = append(status.Reservations, *ToReservationDTO(r))
		if r.IsActive() {
			status.TotalReserved += r.Quantity
			status.ActiveCount++
		}
	}

	return status, nil
}

// ReleaseReservation closes a hold. Consumed holds draw the quantity down;
// cancelled holds give it back to available stock.
func (s *ReservationService) ReleaseReservation(ctx context.Context, cmd ReleaseReservationCommand) (*ReservationDTO, error) {
	if cmd.ReservationID == "" {
		return nil, errors.ErrValidation("reservationId is required")
	}

	reservation, err := s.reservationRepo.FindByID(ctx, cmd.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	if reservation == nil {
		return nil, errors.ErrNotFoundWithID("reservation", cmd.ReservationID)
	}

	outcome := "cancelled"
	movementType := domain.MovementRelease
	if cmd.Consumed {
		outcome = "consumed"
		movementType = domain.MovementConsumption
		err = reservation.Consume()
	} else {
		err = reservation.Cancel()
	}
	if err != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("reservation %s is not active", cmd.ReservationID))
	}

	movement := domain.NewMovement(movementType, reservation.PartID, reservation.WarehouseID,
		reservation.Quantity, cmd.ActorID).WithWorkOrder(reservation.WorkOrderID)

	event := &domain.ReservationReleasedEvent{
		ReservationID: reservation.ID,
		WorkOrderID:   reservation.WorkOrderID,
		PartID:        reservation.PartID,
		WarehouseID:   reservation.WarehouseID,
		Quantity:      reservation.Quantity,
		Outcome:       outcome,
		ReleasedBy:    cmd.ActorID,
		ReleasedAt:    time.Now(),
	}

	if err := s.stockRepo.ReleaseStock(ctx, reservation, movement, []domain.DomainEvent{event}); err != nil {
		s.logger.Error("failed to release reservation",
			"reservationId", reservation.ID, "outcome", outcome, "error", err)
		return nil, fmt.Errorf("failed to release reservation: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordMovement(string(movementType))
	}

	s.logger.Info("reservation released",
		"reservationId", reservation.ID,
		"workOrderId", reservation.WorkOrderID,
		"outcome", outcome,
		"actorId", cmd.ActorID,
	)

	return ToReservationDTO(reservation), nil
}

func validateReservationLine(partID, warehouseID string, quantity int) string {
	switch {
	case partID == "":
		return "partId is required"
	case warehouseID == "":
		return "warehouseId is required"
	case quantity <= 0:
		return "quantity must be positive"
	}
	return ""
}

// classifyLineError maps a per-line failure to a message and error code
func classifyLineError(err error) (string, string) {
	var insErr *domain.InsufficientStockError
	switch {
	case stderrors.As(err, &insErr):
		return insErr.Error(), errors.CodeInsufficientStock
	case stderrors.Is(err, domain.ErrStockNotFound),
		stderrors.Is(err, domain.ErrPartNotFound),
		stderrors.Is(err, domain.ErrWarehouseNotFound):
		return err.Error(), errors.CodeNotFound
	case stderrors.Is(err, domain.ErrInvalidQuantity):
		return err.Error(), errors.CodeValidationError
	}
	return "operation failed", errors.CodeInternalError
}

func failureReason(err error) string {
	switch {
	case stderrors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case stderrors.Is(err, domain.ErrStockNotFound):
		return "stock_not_found"
	}
	return "error"
}
