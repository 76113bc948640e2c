package cloudevents

import (
	"time"
)

// EventType constants for inventory domain events
const (
	// Stock ledger events
	StockReceived      = "cmms.inventory.stock-received"
	StockAdjusted      = "cmms.inventory.stock-adjusted"
	StockTransferred   = "cmms.inventory.stock-transferred"
	StockConsumed      = "cmms.inventory.stock-consumed"
	StockInconsistency = "cmms.inventory.inconsistency"
	LowStockAlert      = "cmms.inventory.low-stock-alert"

	// Reservation events
	StockReserved       = "cmms.inventory.stock-reserved"
	ReservationReleased = "cmms.inventory.reservation-released"

	// Purchase order events
	PurchaseOrderReceived  = "cmms.inventory.purchase-order-received"
	PurchaseOrderFulfilled = "cmms.inventory.purchase-order-fulfilled"

	// Catalog events
	PartCreated     = "cmms.catalog.part-created"
	PartDeactivated = "cmms.catalog.part-deactivated"
)

// Source constants for event sources
const (
	SourceInventory = "/cmms/inventory-service"
)

// CloudEvent represents a CloudEvents v1.0 compliant event
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// Correlation extension for cross-service tracing
	CorrelationID string `json:"cmmscorrelationid,omitempty"`
}

// StockReceivedData is the payload for StockReceived events
type StockReceivedData struct {
	PartID          string `json:"partId"`
	WarehouseID     string `json:"warehouseId"`
	Quantity        int    `json:"quantity"`
	UnitCostCents   int64  `json:"unitCostCents"`
	PurchaseOrderID string `json:"purchaseOrderId,omitempty"`
	ReceivedBy      string `json:"receivedBy"`
}

// StockAdjustedData is the payload for StockAdjusted events
type StockAdjustedData struct {
	PartID      string `json:"partId"`
	WarehouseID string `json:"warehouseId"`
	OldQuantity int    `json:"oldQuantity"`
	NewQuantity int    `json:"newQuantity"`
	Reason      string `json:"reason"`
	AdjustedBy  string `json:"adjustedBy"`
}

// StockReservedData is the payload for StockReserved events
type StockReservedData struct {
	ReservationID string `json:"reservationId"`
	WorkOrderID   string `json:"workOrderId"`
	PartID        string `json:"partId"`
	WarehouseID   string `json:"warehouseId"`
	Quantity      int    `json:"quantity"`
	ReservedBy    string `json:"reservedBy"`
}

// LowStockAlertData is the payload for LowStockAlert events
type LowStockAlertData struct {
	PartID            string `json:"partId"`
	WarehouseID       string `json:"warehouseId"`
	AvailableQuantity int    `json:"availableQuantity"`
	ReorderPoint      int    `json:"reorderPoint"`
}
