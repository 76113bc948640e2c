package domain

import "time"

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// StockReceivedEvent is published when stock is received into a warehouse
type StockReceivedEvent struct {
	PartID          string    `json:"partId"`
	PartNumber      string    `json:"partNumber"`
	WarehouseID     string    `json:"warehouseId"`
	Quantity        int       `json:"quantity"`
	UnitCostCents   int64     `json:"unitCostCents"`
	PurchaseOrderID string    `json:"purchaseOrderId,omitempty"`
	ReceivedBy      string    `json:"receivedBy"`
	ReceivedAt      time.Time `json:"receivedAt"`
}

func (e *StockReceivedEvent) EventType() string     { return "cmms.inventory.stock-received" }
func (e *StockReceivedEvent) OccurredAt() time.Time { return e.ReceivedAt }

// StockAdjustedEvent is published when a physical count adjustment is applied
type StockAdjustedEvent struct {
	PartID      string    `json:"partId"`
	WarehouseID string    `json:"warehouseId"`
	OldQuantity int       `json:"oldQuantity"`
	NewQuantity int       `json:"newQuantity"`
	Delta       int       `json:"delta"`
	Reason      string    `json:"reason"`
	AdjustedBy  string    `json:"adjustedBy"`
	AdjustedAt  time.Time `json:"adjustedAt"`
}

func (e *StockAdjustedEvent) EventType() string     { return "cmms.inventory.stock-adjusted" }
func (e *StockAdjustedEvent) OccurredAt() time.Time { return e.AdjustedAt }

// StockReservedEvent is published when stock is held for a work order
type StockReservedEvent struct {
	ReservationID string    `json:"reservationId"`
	WorkOrderID   string    `json:"workOrderId"`
	PartID        string    `json:"partId"`
	WarehouseID   string    `json:"warehouseId"`
	Quantity      int       `json:"quantity"`
	ReservedBy    string    `json:"reservedBy"`
	ReservedAt    time.Time `json:"reservedAt"`
}

func (e *StockReservedEvent) EventType() string     { return "cmms.inventory.stock-reserved" }
func (e *StockReservedEvent) OccurredAt() time.Time { return e.ReservedAt }

// ReservationReleasedEvent is published when a hold is cancelled or consumed
type ReservationReleasedEvent struct {
	ReservationID string    `json:"reservationId"`
	WorkOrderID   string    `json:"workOrderId"`
	PartID        string    `json:"partId"`
	WarehouseID   string    `json:"warehouseId"`
	Quantity      int       `json:"quantity"`
	Outcome       string    `json:"outcome"` // consumed or cancelled
	ReleasedBy    string    `json:"releasedBy"`
	ReleasedAt    time.Time `json:"releasedAt"`
}

func (e *ReservationReleasedEvent) EventType() string     { return "cmms.inventory.reservation-released" }
func (e *ReservationReleasedEvent) OccurredAt() time.Time { return e.ReleasedAt }

// StockConsumedEvent is published when stock is drawn down without a hold
type StockConsumedEvent struct {
	PartID          string    `json:"partId"`
	WarehouseID     string    `json:"warehouseId"`
	Quantity        int       `json:"quantity"`
	PurchaseOrderID string    `json:"purchaseOrderId,omitempty"`
	WorkOrderID     string    `json:"workOrderId,omitempty"`
	ConsumedBy      string    `json:"consumedBy"`
	ConsumedAt      time.Time `json:"consumedAt"`
}

func (e *StockConsumedEvent) EventType() string     { return "cmms.inventory.stock-consumed" }
func (e *StockConsumedEvent) OccurredAt() time.Time { return e.ConsumedAt }

// StockTransferredEvent is published when stock moves between warehouses
type StockTransferredEvent struct {
	PartID          string    `json:"partId"`
	FromWarehouseID string    `json:"fromWarehouseId"`
	ToWarehouseID   string    `json:"toWarehouseId"`
	Quantity        int       `json:"quantity"`
	TransferredBy   string    `json:"transferredBy"`
	TransferredAt   time.Time `json:"transferredAt"`
}

func (e *StockTransferredEvent) EventType() string     { return "cmms.inventory.stock-transferred" }
func (e *StockTransferredEvent) OccurredAt() time.Time { return e.TransferredAt }

// StockInconsistencyEvent is published when an adjustment leaves the current
// quantity below the reserved quantity. Operators reconcile via the release API.
type StockInconsistencyEvent struct {
	PartID          string    `json:"partId"`
	WarehouseID     string    `json:"warehouseId"`
	CurrentQuantity int       `json:"currentQuantity"`
	ReservedQuantity int      `json:"reservedQuantity"`
	DetectedAt      time.Time `json:"detectedAt"`
}

func (e *StockInconsistencyEvent) EventType() string     { return "cmms.inventory.inconsistency" }
func (e *StockInconsistencyEvent) OccurredAt() time.Time { return e.DetectedAt }

// LowStockAlertEvent is published when available stock reaches the reorder point
type LowStockAlertEvent struct {
	PartID            string    `json:"partId"`
	PartNumber        string    `json:"partNumber"`
	WarehouseID       string    `json:"warehouseId"`
	AvailableQuantity int       `json:"availableQuantity"`
	ReorderPoint      int       `json:"reorderPoint"`
	AlertedAt         time.Time `json:"alertedAt"`
}

func (e *LowStockAlertEvent) EventType() string     { return "cmms.inventory.low-stock-alert" }
func (e *LowStockAlertEvent) OccurredAt() time.Time { return e.AlertedAt }

// PartCreatedEvent is published when a catalog part is created
type PartCreatedEvent struct {
	PartID     string    `json:"partId"`
	PartNumber string    `json:"partNumber"`
	Name       string    `json:"name"`
	CreatedBy  string    `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (e *PartCreatedEvent) EventType() string     { return "cmms.catalog.part-created" }
func (e *PartCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// PartDeactivatedEvent is published when a catalog part is soft-deactivated
type PartDeactivatedEvent struct {
	PartID        string    `json:"partId"`
	PartNumber    string    `json:"partNumber"`
	DeactivatedBy string    `json:"deactivatedBy"`
	DeactivatedAt time.Time `json:"deactivatedAt"`
}

func (e *PartDeactivatedEvent) EventType() string     { return "cmms.catalog.part-deactivated" }
func (e *PartDeactivatedEvent) OccurredAt() time.Time { return e.DeactivatedAt }

// PurchaseOrderReceivedEvent is published when a PO receipt batch completes
type PurchaseOrderReceivedEvent struct {
	PurchaseOrderID string    `json:"purchaseOrderId"`
	ItemsReceived   int       `json:"itemsReceived"`
	ItemsFailed     int       `json:"itemsFailed"`
	FullyReceived   bool      `json:"fullyReceived"`
	ReceivedBy      string    `json:"receivedBy"`
	ReceivedAt      time.Time `json:"receivedAt"`
}

func (e *PurchaseOrderReceivedEvent) EventType() string {
	return "cmms.inventory.purchase-order-received"
}
func (e *PurchaseOrderReceivedEvent) OccurredAt() time.Time { return e.ReceivedAt }

// PurchaseOrderFulfilledEvent is published when a PO is satisfied from stock
type PurchaseOrderFulfilledEvent struct {
	PurchaseOrderID string    `json:"purchaseOrderId"`
	ItemsFulfilled  int       `json:"itemsFulfilled"`
	ItemsFailed     int       `json:"itemsFailed"`
	FulfilledBy     string    `json:"fulfilledBy"`
	FulfilledAt     time.Time `json:"fulfilledAt"`
}

func (e *PurchaseOrderFulfilledEvent) EventType() string {
	return "cmms.inventory.purchase-order-fulfilled"
}
func (e *PurchaseOrderFulfilledEvent) OccurredAt() time.Time { return e.FulfilledAt }
