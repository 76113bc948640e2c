package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stock is the ledger row for one (part, warehouse) pair. The quantities are
// mutated only through the operations below, each of which corresponds to
// exactly one movement. availableQuantity is derived, never stored.
//
// Invariant on the reserve and fulfill paths: 0 <= reserved <= current.
// A physical count adjustment may legally break it; Adjust reports that
// through a StockInconsistencyEvent instead of blocking the correction.
type Stock struct {
	ID               string `bson:"_id" json:"id"`
	PartID           string `bson:"partId" json:"partId"`
	WarehouseID      string `bson:"warehouseId" json:"warehouseId"`
	PlantID          string `bson:"plantId" json:"plantId"`
	CurrentQuantity  int    `bson:"currentQuantity" json:"currentQuantity"`
	ReservedQuantity int    `bson:"reservedQuantity" json:"reservedQuantity"`
	MinStockLevel    int    `bson:"minStockLevel" json:"minStockLevel"`
	MaxStockLevel    int    `bson:"maxStockLevel" json:"maxStockLevel"`
	ReorderPoint     int    `bson:"reorderPoint" json:"reorderPoint"`

	// Quantity-weighted moving average purchase cost, in cents
	AverageUnitCost int64 `bson:"averageUnitCost" json:"averageUnitCost"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	DomainEvents []DomainEvent `bson:"-" json:"-"`
}

// NewStock creates an empty ledger row for a (part, warehouse) pair
func NewStock(partID, warehouseID, plantID string) *Stock {
	now := time.Now()
	return &Stock{
		ID:           uuid.New().String(),
		PartID:       partID,
		WarehouseID:  warehouseID,
		PlantID:      plantID,
		CreatedAt:    now,
		UpdatedAt:    now,
		DomainEvents: make([]DomainEvent, 0),
	}
}

// AvailableQuantity is current minus reserved
func (s *Stock) AvailableQuantity() int {
	return s.CurrentQuantity - s.ReservedQuantity
}

// IsLowStock reports whether available stock has reached the reorder point
func (s *Stock) IsLowStock() bool {
	return s.ReorderPoint > 0 && s.AvailableQuantity() <= s.ReorderPoint
}

// ValuationCents is current quantity times average unit cost
func (s *Stock) ValuationCents() int64 {
	return int64(s.CurrentQuantity) * s.AverageUnitCost
}

// Receive adds quantity at the given unit cost and recomputes the
// quantity-weighted average cost
func (s *Stock) Receive(quantity int, unitCostCents int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if unitCostCents < 0 {
		return ErrInvalidQuantity
	}

	oldQty := int64(s.CurrentQuantity)
	newQty := int64(quantity)
	if oldQty+newQty > 0 {
		s.AverageUnitCost = (oldQty*s.AverageUnitCost + newQty*unitCostCents) / (oldQty + newQty)
	}
	s.CurrentQuantity += quantity
	s.UpdatedAt = time.Now()
	return nil
}

// Reserve holds quantity against available stock
func (s *Stock) Reserve(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if s.AvailableQuantity() < quantity {
		return NewInsufficientStockError(s.PartID, s.WarehouseID, quantity, s.AvailableQuantity())
	}
	s.ReservedQuantity += quantity
	s.UpdatedAt = time.Now()
	return nil
}

// Release gives back a hold without consuming it
func (s *Stock) Release(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > s.ReservedQuantity {
		quantity = s.ReservedQuantity
	}
	s.ReservedQuantity -= quantity
	s.UpdatedAt = time.Now()
	return nil
}

// ConsumeReserved draws down a previously held quantity
func (s *Stock) ConsumeReserved(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > s.ReservedQuantity || quantity > s.CurrentQuantity {
		return NewInsufficientStockError(s.PartID, s.WarehouseID, quantity, s.ReservedQuantity)
	}
	s.ReservedQuantity -= quantity
	s.CurrentQuantity -= quantity
	s.UpdatedAt = time.Now()
	return nil
}

// Consume draws down available stock directly, without a prior hold
func (s *Stock) Consume(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if s.AvailableQuantity() < quantity {
		return NewInsufficientStockError(s.PartID, s.WarehouseID, quantity, s.AvailableQuantity())
	}
	s.CurrentQuantity -= quantity
	s.UpdatedAt = time.Now()
	return nil
}

// Adjust sets current quantity to a physical count and returns the delta.
// Reserved quantity is untouched; when the count drops below the reserved
// amount an inconsistency event is raised for operators to reconcile.
func (s *Stock) Adjust(physicalCount int) (int, error) {
	if physicalCount < 0 {
		return 0, ErrNegativeCount
	}

	delta := physicalCount - s.CurrentQuantity
	s.CurrentQuantity = physicalCount
	s.UpdatedAt = time.Now()

	if s.CurrentQuantity < s.ReservedQuantity {
		s.AddDomainEvent(&StockInconsistencyEvent{
			PartID:           s.PartID,
			WarehouseID:      s.WarehouseID,
			CurrentQuantity:  s.CurrentQuantity,
			ReservedQuantity: s.ReservedQuantity,
			DetectedAt:       time.Now(),
		})
	}

	return delta, nil
}

// AddDomainEvent queues an event for publication after persistence
func (s *Stock) AddDomainEvent(event DomainEvent) {
	s.DomainEvents = append(s.DomainEvents, event)
}

// ClearDomainEvents empties the pending event queue
func (s *Stock) ClearDomainEvents() {
	s.DomainEvents = make([]DomainEvent, 0)
}
