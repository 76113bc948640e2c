package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a hold
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationConsumed  ReservationStatus = "consumed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation is a hold of on-hand stock for a work order. It exists from
// creation until consumed or cancelled; there is no automatic expiry.
type Reservation struct {
	ID          string            `bson:"_id" json:"id"`
	WorkOrderID string            `bson:"workOrderId" json:"workOrderId"`
	PartID      string            `bson:"partId" json:"partId"`
	WarehouseID string            `bson:"warehouseId" json:"warehouseId"`
	Quantity    int               `bson:"quantity" json:"quantity"`
	Status      ReservationStatus `bson:"status" json:"status"`
	ReservedBy  string            `bson:"reservedBy" json:"reservedBy"`
	CreatedAt   time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time         `bson:"updatedAt" json:"updatedAt"`
	ConsumedAt  *time.Time        `bson:"consumedAt,omitempty" json:"consumedAt,omitempty"`
	CancelledAt *time.Time        `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
}

// NewReservation creates an active hold
func NewReservation(workOrderID, partID, warehouseID string, quantity int, reservedBy string) (*Reservation, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	now := time.Now()
	return &Reservation{
		ID:          uuid.New().String(),
		WorkOrderID: workOrderID,
		PartID:      partID,
		WarehouseID: warehouseID,
		Quantity:    quantity,
		Status:      ReservationActive,
		ReservedBy:  reservedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsActive reports whether the hold is still open
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationActive
}

// IsStale reports whether an active hold is older than the threshold
func (r *Reservation) IsStale(threshold time.Duration) bool {
	return r.IsActive() && time.Since(r.CreatedAt) > threshold
}

// Consume closes the hold as used by its work order
func (r *Reservation) Consume() error {
	if !r.IsActive() {
		return ErrReservationNotActive
	}
	now := time.Now()
	r.Status = ReservationConsumed
	r.ConsumedAt = &now
	r.UpdatedAt = now
	return nil
}

// Cancel closes the hold and gives the quantity back
func (r *Reservation) Cancel() error {
	if !r.IsActive() {
		return ErrReservationNotActive
	}
	now := time.Now()
	r.Status = ReservationCancelled
	r.CancelledAt = &now
	r.UpdatedAt = now
	return nil
}
