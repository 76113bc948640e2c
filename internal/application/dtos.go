package application

import "time"

// StockDTO is the API representation of a stock ledger row
type StockDTO struct {
	ID                string    `json:"id"`
	PartID            string    `json:"partId"`
	WarehouseID       string    `json:"warehouseId"`
	PlantID           string    `json:"plantId"`
	CurrentQuantity   int       `json:"currentQuantity"`
	ReservedQuantity  int       `json:"reservedQuantity"`
	AvailableQuantity int       `json:"availableQuantity"`
	MinStockLevel     int       `json:"minStockLevel"`
	MaxStockLevel     int       `json:"maxStockLevel"`
	ReorderPoint      int       `json:"reorderPoint"`
	AverageUnitCost   int64     `json:"averageUnitCost"`
	LowStock          bool      `json:"lowStock"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// MovementDTO is the API representation of a ledger entry
type MovementDTO struct {
	ID              string    `json:"id"`
	MovementType    string    `json:"movementType"`
	PartID          string    `json:"partId"`
	WarehouseID     string    `json:"warehouseId"`
	Quantity        int       `json:"quantity"`
	UnitCost        int64     `json:"unitCost,omitempty"`
	WorkOrderID     string    `json:"workOrderId,omitempty"`
	PurchaseOrderID string    `json:"purchaseOrderId,omitempty"`
	Reference       string    `json:"reference,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	BalanceAfter    int       `json:"balanceAfter"`
	ActorID         string    `json:"actorId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ReservationDTO is the API representation of a hold
type ReservationDTO struct {
	ID          string     `json:"id"`
	WorkOrderID string     `json:"workOrderId"`
	PartID      string     `json:"partId"`
	WarehouseID string     `json:"warehouseId"`
	Quantity    int        `json:"quantity"`
	Status      string     `json:"status"`
	ReservedBy  string     `json:"reservedBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	ConsumedAt  *time.Time `json:"consumedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

// LineResult is the tagged outcome of one line in a batch operation
type LineResult struct {
	Index       int    `json:"index"`
	Success     bool   `json:"success"`
	PartID      string `json:"partId,omitempty"`
	PartName    string `json:"partName,omitempty"`
	WarehouseID string `json:"warehouseId,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	Error       string `json:"error,omitempty"`
	ErrorCode   string `json:"errorCode,omitempty"`
}

// ReservationResultDTO reports a batch reservation outcome
type ReservationResultDTO struct {
	WorkOrderID  string       `json:"workOrderId"`
	Results      []LineResult `json:"results"`
	Succeeded    int          `json:"succeeded"`
	Failed       int          `json:"failed"`
	Summary      string       `json:"summary"`
	Reservations []ReservationDTO `json:"reservations"`
}

// ReservationStatusDTO reports the holds open for a work order
type ReservationStatusDTO struct {
	WorkOrderID   string           `json:"workOrderId"`
	Reservations  []ReservationDTO `json:"reservations"`
	TotalReserved int              `json:"totalReserved"`
	ActiveCount   int              `json:"activeCount"`
}

// ReceiptResultDTO reports a PO receipt batch outcome
type ReceiptResultDTO struct {
	PurchaseOrderID     string       `json:"purchaseOrderId"`
	TotalItemsReceived  int          `json:"totalItemsReceived"`
	Failed              int          `json:"failed"`
	Results             []LineResult `json:"results"`
	Summary             string       `json:"summary"`
	ReceivedToInventory bool         `json:"receivedToInventory"`
}

// FulfillmentResultDTO reports a PO fulfillment batch outcome
type FulfillmentResultDTO struct {
	PurchaseOrderID        string       `json:"purchaseOrderId"`
	ItemsFulfilled         int          `json:"itemsFulfilled"`
	Failed                 int          `json:"failed"`
	Results                []LineResult `json:"results"`
	Summary                string       `json:"summary"`
	FulfilledFromInventory bool         `json:"fulfilledFromInventory"`
}

// CleanupResultDTO reports a duplicate-receipt cleanup run
type CleanupResultDTO struct {
	PurchaseOrderID string `json:"purchaseOrderId,omitempty"`
	Deleted         int64  `json:"deleted"`
}

// PartDTO is the API representation of a catalog part
type PartDTO struct {
	ID         string    `json:"id"`
	PartNumber string    `json:"partNumber"`
	Name       string    `json:"name"`
	Category   string    `json:"category,omitempty"`
	SupplierID string    `json:"supplierId,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WarehouseDTO is the API representation of a warehouse
type WarehouseDTO struct {
	ID      string `json:"id"`
	PlantID string `json:"plantId"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Active  bool   `json:"active"`
}

// LowStockRowDTO is one row of the low-stock report
type LowStockRowDTO struct {
	PartID            string `json:"partId"`
	PartNumber        string `json:"partNumber,omitempty"`
	PartName          string `json:"partName,omitempty"`
	WarehouseID       string `json:"warehouseId"`
	CurrentQuantity   int    `json:"currentQuantity"`
	ReservedQuantity  int    `json:"reservedQuantity"`
	AvailableQuantity int    `json:"availableQuantity"`
	ReorderPoint      int    `json:"reorderPoint"`
}

// StaleReservationDTO is one row of the stale-reservation report
type StaleReservationDTO struct {
	ReservationDTO
	AgeHours float64 `json:"ageHours"`
}

// ValuationRowDTO is one row of the valuation report
type ValuationRowDTO struct {
	PartID          string `json:"partId"`
	WarehouseID     string `json:"warehouseId"`
	PlantID         string `json:"plantId"`
	CurrentQuantity int    `json:"currentQuantity"`
	AverageUnitCost int64  `json:"averageUnitCost"`
	ValuationCents  int64  `json:"valuationCents"`
}

// ValuationReportDTO aggregates stock valuation
type ValuationReportDTO struct {
	Rows       []ValuationRowDTO `json:"rows"`
	TotalCents int64             `json:"totalCents"`
}
