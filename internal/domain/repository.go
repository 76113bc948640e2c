package domain

import (
	"context"
	"time"
)

// StockFilter narrows a stock listing
type StockFilter struct {
	PartID       string
	WarehouseID  string
	PlantID      string
	LowStockOnly bool
}

// StockRepository defines the interface for stock ledger persistence.
//
// The atomic operations each run their availability check, stock update,
// movement append, and pending domain events as one transaction. An
// availability check that fails inside the transaction surfaces as
// ErrInsufficientStock; concurrent callers cannot both pass it.
type StockRepository interface {
	FindByID(ctx context.Context, stockID string) (*Stock, error)
	FindByPartAndWarehouse(ctx context.Context, partID, warehouseID string) (*Stock, error)
	Find(ctx context.Context, filter StockFilter) ([]*Stock, error)
	FindLowStock(ctx context.Context, plantID string) ([]*Stock, error)

	// ReserveStock holds quantity for a work order: conditional increment of
	// reservedQuantity, the reservation document, and a reservation movement.
	ReserveStock(ctx context.Context, partID, warehouseID string, quantity int,
		reservation *Reservation, movement *Movement, events []DomainEvent) error

	// ReleaseStock closes a hold: decrement reservedQuantity, update the
	// reservation status, append a release movement.
	ReleaseStock(ctx context.Context, reservation *Reservation, movement *Movement,
		events []DomainEvent) error

	// ConsumeStock draws down available stock directly, without a hold.
	ConsumeStock(ctx context.Context, partID, warehouseID string, quantity int,
		movement *Movement, events []DomainEvent) error

	// ReceiveStock adds quantity at a unit cost, recomputing the weighted
	// average cost, creating the stock row if the pair has none yet.
	ReceiveStock(ctx context.Context, partID, warehouseID, plantID string,
		quantity int, unitCostCents int64, movement *Movement,
		events []DomainEvent) (*Stock, error)

	// AdjustStock sets currentQuantity to a physical count.
	AdjustStock(ctx context.Context, stockID string, physicalCount int,
		reason, actorID string) (*Stock, *Movement, error)

	// TransferStock moves quantity between two warehouses: availability-checked
	// decrement at the source, increment at the destination, two movements.
	TransferStock(ctx context.Context, partID, fromWarehouseID, toWarehouseID string,
		quantity int, actorID string, events []DomainEvent) error
}

// MovementRepository reads the append-only ledger. Inserts happen inside the
// stock repository's transactions; the one deletion path is duplicate cleanup.
type MovementRepository interface {
	FindByID(ctx context.Context, movementID string) (*Movement, error)
	List(ctx context.Context, filter MovementFilter, offset, limit int64) ([]*Movement, int64, error)

	// CleanupDuplicateReceipts dedupes entry movements by (purchaseOrderId,
	// reference, partId, warehouseId, quantity), keeping the earliest by
	// createdAt. Returns the number of deleted duplicates; a second run on
	// the same data deletes zero.
	CleanupDuplicateReceipts(ctx context.Context, purchaseOrderID string) (int64, error)
}

// ReservationRepository reads reservation documents. Writes happen inside the
// stock repository's transactions.
type ReservationRepository interface {
	FindByID(ctx context.Context, reservationID string) (*Reservation, error)
	FindByWorkOrder(ctx context.Context, workOrderID string) ([]*Reservation, error)
	FindStale(ctx context.Context, olderThan time.Duration) ([]*Reservation, error)
}

// PartRepository defines the interface for catalog part persistence
type PartRepository interface {
	FindByID(ctx context.Context, partID string) (*Part, error)
	FindByPartNumber(ctx context.Context, partNumber string) (*Part, error)
	FindByName(ctx context.Context, name string) (*Part, error)
	Search(ctx context.Context, query string, limit int) ([]*Part, error)
	Create(ctx context.Context, part *Part, events []DomainEvent) error
	Save(ctx context.Context, part *Part, events []DomainEvent) error
}

// WarehouseRepository defines the interface for warehouse persistence
type WarehouseRepository interface {
	FindByID(ctx context.Context, warehouseID string) (*Warehouse, error)
	FindAll(ctx context.Context, plantID string, activeOnly bool) ([]*Warehouse, error)
	Create(ctx context.Context, warehouse *Warehouse) error
	Save(ctx context.Context, warehouse *Warehouse) error
}

// PurchaseOrderRepository persists the inventory-side state of purchase orders
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, purchaseOrderID string) (*PurchaseOrderInventoryState, error)
	Upsert(ctx context.Context, state *PurchaseOrderInventoryState, events []DomainEvent) error
}
