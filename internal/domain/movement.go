package domain

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a ledger entry
type MovementType string

const (
	MovementEntry       MovementType = "entry"
	MovementConsumption MovementType = "consumption"
	MovementAdjustment  MovementType = "adjustment"
	MovementReservation MovementType = "reservation"
	MovementRelease     MovementType = "release"
	MovementTransfer    MovementType = "transfer"
)

// IsValid reports whether the type is one of the known movement types
func (t MovementType) IsValid() bool {
	switch t {
	case MovementEntry, MovementConsumption, MovementAdjustment,
		MovementReservation, MovementRelease, MovementTransfer:
		return true
	}
	return false
}

// Movement is an immutable ledger entry recording one quantity-affecting
// event. Movements are never updated; the only deletion path is the
// duplicate-receipt cleanup maintenance routine.
type Movement struct {
	ID           string       `bson:"_id" json:"id"`
	MovementType MovementType `bson:"movementType" json:"movementType"`
	PartID       string       `bson:"partId" json:"partId"`
	WarehouseID  string       `bson:"warehouseId" json:"warehouseId"`

	// Signed quantity delta applied to currentQuantity. Reservation and
	// release movements carry the held quantity but do not change
	// currentQuantity; their delta records the hold size.
	Quantity int `bson:"quantity" json:"quantity"`

	// Unit cost in cents at the time of the movement, entry movements only
	UnitCost int64 `bson:"unitCost,omitempty" json:"unitCost,omitempty"`

	WorkOrderID     string `bson:"workOrderId,omitempty" json:"workOrderId,omitempty"`
	PurchaseOrderID string `bson:"purchaseOrderId,omitempty" json:"purchaseOrderId,omitempty"`

	// Free-form reference, e.g. the receipt document for an entry
	Reference string `bson:"reference,omitempty" json:"reference,omitempty"`
	Reason    string `bson:"reason,omitempty" json:"reason,omitempty"`

	// Current quantity on the stock row after this movement applied
	BalanceAfter int `bson:"balanceAfter" json:"balanceAfter"`

	ActorID   string    `bson:"actorId" json:"actorId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// NewMovement creates a ledger entry
func NewMovement(movementType MovementType, partID, warehouseID string, quantity int, actorID string) *Movement {
	return &Movement{
		ID:           uuid.New().String(),
		MovementType: movementType,
		PartID:       partID,
		WarehouseID:  warehouseID,
		Quantity:     quantity,
		ActorID:      actorID,
		CreatedAt:    time.Now(),
	}
}

// WithWorkOrder links the movement to a work order
func (m *Movement) WithWorkOrder(workOrderID string) *Movement {
	m.WorkOrderID = workOrderID
	return m
}

// WithPurchaseOrder links the movement to a purchase order
func (m *Movement) WithPurchaseOrder(purchaseOrderID string) *Movement {
	m.PurchaseOrderID = purchaseOrderID
	return m
}

// WithReference attaches a document reference
func (m *Movement) WithReference(reference string) *Movement {
	m.Reference = reference
	return m
}

// WithReason attaches a free-form reason
func (m *Movement) WithReason(reason string) *Movement {
	m.Reason = reason
	return m
}

// WithUnitCost records the unit cost in cents
func (m *Movement) WithUnitCost(unitCostCents int64) *Movement {
	m.UnitCost = unitCostCents
	return m
}

// WithBalanceAfter records the stock balance after the movement applied
func (m *Movement) WithBalanceAfter(balance int) *Movement {
	m.BalanceAfter = balance
	return m
}

// MovementFilter narrows a movement listing
type MovementFilter struct {
	PartID          string
	WarehouseID     string
	MovementType    MovementType
	WorkOrderID     string
	PurchaseOrderID string
	From            *time.Time
	To              *time.Time
}
