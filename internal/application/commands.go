package application

// GetStockQuery filters the stock listing
type GetStockQuery struct {
	PartID       string
	WarehouseID  string
	PlantID      string
	LowStockOnly bool
}

// AdjustStockCommand applies a physical count correction
type AdjustStockCommand struct {
	StockID       string `json:"stockId"`
	PhysicalCount int    `json:"physicalCount"`
	Reason        string `json:"reason"`
	ActorID       string `json:"-"`
}

// TransferStockCommand moves stock between warehouses
type TransferStockCommand struct {
	PartID          string `json:"partId"`
	FromWarehouseID string `json:"fromWarehouseId"`
	ToWarehouseID   string `json:"toWarehouseId"`
	Quantity        int    `json:"quantity"`
	ActorID         string `json:"-"`
}

// ListMovementsQuery filters the movement listing
type ListMovementsQuery struct {
	PartID          string
	WarehouseID     string
	MovementType    string
	WorkOrderID     string
	PurchaseOrderID string
	From            string
	To              string
	Page            int
	PageSize        int
}

// CleanupDuplicateReceiptsCommand dedupes entry movements for one PO, or all
// when PurchaseOrderID is empty
type CleanupDuplicateReceiptsCommand struct {
	PurchaseOrderID string `json:"purchaseOrderId"`
	ActorID         string `json:"-"`
}

// ReservationLine is one requested hold within a batch
type ReservationLine struct {
	PartID      string `json:"partId"`
	WarehouseID string `json:"warehouseId"`
	Quantity    int    `json:"quantity"`
}

// ReservePartsCommand holds stock for a work order, line by line
type ReservePartsCommand struct {
	WorkOrderID string            `json:"workOrderId"`
	Lines       []ReservationLine `json:"reservations"`
	ActorID     string            `json:"-"`
}

// ReleaseReservationCommand closes a hold
type ReleaseReservationCommand struct {
	ReservationID string `json:"reservationId"`
	Consumed      bool   `json:"consumed"`
	ActorID       string `json:"-"`
}

// ReceiptItem is one purchase order line arriving at a warehouse.
// UnitCost is in cents; zero is a valid cost, absence is not.
type ReceiptItem struct {
	PartName    string `json:"partName"`
	WarehouseID string `json:"warehouseId"`
	Quantity    int    `json:"quantity"`
	UnitCost    *int64 `json:"unitCost"`
	Reference   string `json:"reference,omitempty"`
}

// ReceiveToInventoryCommand converts PO items into stock increases
type ReceiveToInventoryCommand struct {
	PurchaseOrderID string        `json:"purchaseOrderId"`
	Items           []ReceiptItem `json:"items"`
	ActorID         string        `json:"-"`
}

// FulfillmentLine is one PO line satisfied from existing stock
type FulfillmentLine struct {
	PartID      string `json:"partId"`
	WarehouseID string `json:"warehouseId"`
	Quantity    int    `json:"quantity"`
}

// FulfillFromInventoryCommand satisfies a PO directly from warehouse stock
type FulfillFromInventoryCommand struct {
	PurchaseOrderID string            `json:"purchaseOrderId"`
	Lines           []FulfillmentLine `json:"fulfillments"`
	ActorID         string            `json:"-"`
}

// CreatePartCommand adds a catalog part
type CreatePartCommand struct {
	PartNumber string `json:"partNumber"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	SupplierID string `json:"supplierId"`
	ActorID    string `json:"-"`
}

// CreateWarehouseCommand adds a warehouse under a plant
type CreateWarehouseCommand struct {
	PlantID string `json:"plantId"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	ActorID string `json:"-"`
}
