package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrNegativeCount        = errors.New("physical count cannot be negative")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrStockNotFound        = errors.New("stock record not found")
	ErrPartNotFound         = errors.New("part not found")
	ErrWarehouseNotFound    = errors.New("warehouse not found")
	ErrPartInactive         = errors.New("part is deactivated")
	ErrWarehouseInactive    = errors.New("warehouse is deactivated")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrReservationNotActive = errors.New("reservation is not active")
	ErrSameWarehouse        = errors.New("source and destination warehouse must differ")
	ErrDuplicatePart        = errors.New("part number already exists")
	ErrMissingPartFields    = errors.New("part number and name are required")
)

// InsufficientStockError carries the availability detail for a rejected line
type InsufficientStockError struct {
	PartID      string
	WarehouseID string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for part %s at warehouse %s: requested %d, available %d",
		e.PartID, e.WarehouseID, e.Requested, e.Available)
}

// Is lets errors.Is match the sentinel
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// NewInsufficientStockError builds the line-level availability error
func NewInsufficientStockError(partID, warehouseID string, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{
		PartID:      partID,
		WarehouseID: warehouseID,
		Requested:   requested,
		Available:   available,
	}
}
