package domain

import "time"

// ReceiptLine records one received purchase order item
type ReceiptLine struct {
	PartID      string    `bson:"partId" json:"partId"`
	PartName    string    `bson:"partName" json:"partName"`
	WarehouseID string    `bson:"warehouseId" json:"warehouseId"`
	Quantity    int       `bson:"quantity" json:"quantity"`
	UnitCost    int64     `bson:"unitCost" json:"unitCost"`
	ReceivedAt  time.Time `bson:"receivedAt" json:"receivedAt"`
}

// FulfillmentLine records one purchase order line satisfied from stock
type FulfillmentLine struct {
	PartID      string    `bson:"partId" json:"partId"`
	WarehouseID string    `bson:"warehouseId" json:"warehouseId"`
	Quantity    int       `bson:"quantity" json:"quantity"`
	FulfilledAt time.Time `bson:"fulfilledAt" json:"fulfilledAt"`
}

// PurchaseOrderInventoryState tracks, per purchase order, what has reached
// inventory. The purchase order itself lives outside this service; this
// record exists only to carry the inventory-side flags and line history.
//
// receivedToInventory flips true only when every line of a receipt call
// succeeded. fulfilledFromInventory flips true when at least one line
// succeeded.
type PurchaseOrderInventoryState struct {
	ID                     string            `bson:"_id" json:"purchaseOrderId"`
	ReceivedToInventory    bool              `bson:"receivedToInventory" json:"receivedToInventory"`
	FulfilledFromInventory bool              `bson:"fulfilledFromInventory" json:"fulfilledFromInventory"`
	Receipts               []ReceiptLine     `bson:"receipts" json:"receipts"`
	Fulfillments           []FulfillmentLine `bson:"fulfillments" json:"fulfillments"`
	CreatedAt              time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// NewPurchaseOrderInventoryState creates an empty state record for a PO
func NewPurchaseOrderInventoryState(purchaseOrderID string) *PurchaseOrderInventoryState {
	now := time.Now()
	return &PurchaseOrderInventoryState{
		ID:           purchaseOrderID,
		Receipts:     make([]ReceiptLine, 0),
		Fulfillments: make([]FulfillmentLine, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// RecordReceipt appends a received line
func (s *PurchaseOrderInventoryState) RecordReceipt(line ReceiptLine) {
	s.Receipts = append(s.Receipts, line)
	s.UpdatedAt = time.Now()
}

// RecordFulfillment appends a fulfilled line
func (s *PurchaseOrderInventoryState) RecordFulfillment(line FulfillmentLine) {
	s.Fulfillments = append(s.Fulfillments, line)
	s.UpdatedAt = time.Now()
}

// MarkReceived flips the received flag when the whole batch succeeded
func (s *PurchaseOrderInventoryState) MarkReceived(allLinesSucceeded bool) {
	if allLinesSucceeded {
		s.ReceivedToInventory = true
	}
	s.UpdatedAt = time.Now()
}

// MarkFulfilled flips the fulfilled flag when any line succeeded
func (s *PurchaseOrderInventoryState) MarkFulfilled(anyLineSucceeded bool) {
	if anyLineSucceeded {
		s.FulfilledFromInventory = true
	}
	s.UpdatedAt = time.Now()
}
