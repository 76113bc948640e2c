package application

import (
	"context"
	"strings"
	"time"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/logging"
)

func newTestLogger() *logging.Logger {
	return logging.New(logging.DefaultConfig("test"))
}

func stockKey(partID, warehouseID string) string {
	return partID + "|" + warehouseID
}

// fakeStockRepo keeps stock rows in memory and applies the same invariants
// the real repository enforces transactionally.
type fakeStockRepo struct {
	stocks       map[string]*domain.Stock
	movements    []*domain.Movement
	reservations []*domain.Reservation

	findErr     error
	reserveErr  error
	releaseErr  error
	consumeErr  error
	receiveErr  error
	adjustErr   error
	transferErr error
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{stocks: make(map[string]*domain.Stock)}
}

func (f *fakeStockRepo) addStock(partID, warehouseID string, current, reserved int) *domain.Stock {
	stock := domain.NewStock(partID, warehouseID, "PLANT-1")
	stock.CurrentQuantity = current
	stock.ReservedQuantity = reserved
	f.stocks[stockKey(partID, warehouseID)] = stock
	return stock
}

func (f *fakeStockRepo) FindByID(ctx context.Context, stockID string) (*domain.Stock, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, stock := range f.stocks {
		if stock.ID == stockID {
			return stock, nil
		}
	}
	return nil, nil
}

func (f *fakeStockRepo) FindByPartAndWarehouse(ctx context.Context, partID, warehouseID string) (*domain.Stock, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.stocks[stockKey(partID, warehouseID)], nil
}

func (f *fakeStockRepo) Find(ctx context.Context, filter domain.StockFilter) ([]*domain.Stock, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	results := make([]*domain.Stock, 0)
	for _, stock := range f.stocks {
		if filter.PartID != "" && stock.PartID != filter.PartID {
			continue
		}
		if filter.WarehouseID != "" && stock.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.PlantID != "" && stock.PlantID != filter.PlantID {
			continue
		}
		if filter.LowStockOnly && !stock.IsLowStock() {
			continue
		}
		results = append(results, stock)
	}
	return results, nil
}

func (f *fakeStockRepo) FindLowStock(ctx context.Context, plantID string) ([]*domain.Stock, error) {
	return f.Find(ctx, domain.StockFilter{PlantID: plantID, LowStockOnly: true})
}

func (f *fakeStockRepo) ReserveStock(ctx context.Context, partID, warehouseID string, quantity int,
	reservation *domain.Reservation, movement *domain.Movement, events []domain.DomainEvent) error {
	if f.reserveErr != nil {
		return f.reserveErr
	}
	stock := f.stocks[stockKey(partID, warehouseID)]
	if stock == nil {
		return domain.ErrStockNotFound
	}
	if err := stock.Reserve(quantity); err != nil {
		return err
	}
	f.reservations = append(f.reservations, reservation)
	f.movements = append(f.movements, movement)
	return nil
}

func (f *fakeStockRepo) ReleaseStock(ctx context.Context, reservation *domain.Reservation,
	movement *domain.Movement, events []domain.DomainEvent) error {
	if f.releaseErr != nil {
		return f.releaseErr
	}
	stock := f.stocks[stockKey(reservation.PartID, reservation.WarehouseID)]
	if stock == nil {
		return domain.ErrStockNotFound
	}
	var err error
	if reservation.Status == domain.ReservationConsumed {
		err = stock.ConsumeReserved(reservation.Quantity)
	} else {
		err = stock.Release(reservation.Quantity)
	}
	if err != nil {
		return err
	}
	f.movements = append(f.movements, movement)
	return nil
}

func (f *fakeStockRepo) ConsumeStock(ctx context.Context, partID, warehouseID string, quantity int,
	movement *domain.Movement, events []domain.DomainEvent) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	stock := f.stocks[stockKey(partID, warehouseID)]
	if stock == nil {
		return domain.ErrStockNotFound
	}
	if err := stock.Consume(quantity); err != nil {
		return err
	}
	f.movements = append(f.movements, movement)
	return nil
}

func (f *fakeStockRepo) ReceiveStock(ctx context.Context, partID, warehouseID, plantID string,
	quantity int, unitCostCents int64, movement *domain.Movement,
	events []domain.DomainEvent) (*domain.Stock, error) {
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	stock := f.stocks[stockKey(partID, warehouseID)]
	if stock == nil {
		stock = domain.NewStock(partID, warehouseID, plantID)
		f.stocks[stockKey(partID, warehouseID)] = stock
	}
	if err := stock.Receive(quantity, unitCostCents); err != nil {
		return nil, err
	}
	f.movements = append(f.movements, movement)
	return stock, nil
}

func (f *fakeStockRepo) AdjustStock(ctx context.Context, stockID string, physicalCount int,
	reason, actorID string) (*domain.Stock, *domain.Movement, error) {
	if f.adjustErr != nil {
		return nil, nil, f.adjustErr
	}
	stock, err := f.FindByID(ctx, stockID)
	if err != nil {
		return nil, nil, err
	}
	if stock == nil {
		return nil, nil, domain.ErrStockNotFound
	}
	delta, err := stock.Adjust(physicalCount)
	if err != nil {
		return nil, nil, err
	}
	movement := domain.NewMovement(domain.MovementAdjustment, stock.PartID, stock.WarehouseID, delta, actorID).
		WithReason(reason).
		WithBalanceAfter(stock.CurrentQuantity)
	f.movements = append(f.movements, movement)
	return stock, movement, nil
}

func (f *fakeStockRepo) TransferStock(ctx context.Context, partID, fromWarehouseID, toWarehouseID string,
	quantity int, actorID string, events []domain.DomainEvent) error {
	if f.transferErr != nil {
		return f.transferErr
	}
	source := f.stocks[stockKey(partID, fromWarehouseID)]
	if source == nil {
		return domain.ErrStockNotFound
	}
	if err := source.Consume(quantity); err != nil {
		return err
	}
	dest := f.stocks[stockKey(partID, toWarehouseID)]
	if dest == nil {
		dest = domain.NewStock(partID, toWarehouseID, source.PlantID)
		f.stocks[stockKey(partID, toWarehouseID)] = dest
	}
	return dest.Receive(quantity, source.AverageUnitCost)
}

type fakeMovementRepo struct {
	movements  []*domain.Movement
	deleted    int64
	listErr    error
	cleanupErr error
}

func (f *fakeMovementRepo) FindByID(ctx context.Context, movementID string) (*domain.Movement, error) {
	for _, m := range f.movements {
		if m.ID == movementID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMovementRepo) List(ctx context.Context, filter domain.MovementFilter, offset, limit int64) ([]*domain.Movement, int64, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	results := make([]*domain.Movement, 0)
	for _, m := range f.movements {
		if filter.PartID != "" && m.PartID != filter.PartID {
			continue
		}
		if filter.MovementType != "" && m.MovementType != filter.MovementType {
			continue
		}
		if filter.PurchaseOrderID != "" && m.PurchaseOrderID != filter.PurchaseOrderID {
			continue
		}
		results = append(results, m)
	}
	return results, int64(len(results)), nil
}

func (f *fakeMovementRepo) CleanupDuplicateReceipts(ctx context.Context, purchaseOrderID string) (int64, error) {
	if f.cleanupErr != nil {
		return 0, f.cleanupErr
	}
	// Dedupe entry movements by (PO, reference, part, warehouse, quantity),
	// keeping the earliest occurrence.
	type dupeKey struct {
		po, ref, part, warehouse string
		qty                      int
	}
	seen := make(map[dupeKey]bool)
	kept := make([]*domain.Movement, 0, len(f.movements))
	var deleted int64
	for _, m := range f.movements {
		if m.MovementType != domain.MovementEntry {
			kept = append(kept, m)
			continue
		}
		if purchaseOrderID != "" && m.PurchaseOrderID != purchaseOrderID {
			kept = append(kept, m)
			continue
		}
		key := dupeKey{m.PurchaseOrderID, m.Reference, m.PartID, m.WarehouseID, m.Quantity}
		if seen[key] {
			deleted++
			continue
		}
		seen[key] = true
		kept = append(kept, m)
	}
	f.movements = kept
	f.deleted += deleted
	return deleted, nil
}

type fakeReservationRepo struct {
	reservations map[string]*domain.Reservation
	findErr      error
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[string]*domain.Reservation)}
}

func (f *fakeReservationRepo) FindByID(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.reservations[reservationID], nil
}

func (f *fakeReservationRepo) FindByWorkOrder(ctx context.Context, workOrderID string) ([]*domain.Reservation, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	results := make([]*domain.Reservation, 0)
	for _, r := range f.reservations {
		if r.WorkOrderID == workOrderID {
			results = append(results, r)
		}
	}
	return results, nil
}

func (f *fakeReservationRepo) FindStale(ctx context.Context, olderThan time.Duration) ([]*domain.Reservation, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	results := make([]*domain.Reservation, 0)
	for _, r := range f.reservations {
		if r.IsStale(olderThan) {
			results = append(results, r)
		}
	}
	return results, nil
}

type fakePartRepo struct {
	parts     map[string]*domain.Part
	createErr error
	saveErr   error
	findErr   error
}

func newFakePartRepo() *fakePartRepo {
	return &fakePartRepo{parts: make(map[string]*domain.Part)}
}

func (f *fakePartRepo) FindByID(ctx context.Context, partID string) (*domain.Part, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.parts[partID], nil
}

func (f *fakePartRepo) FindByPartNumber(ctx context.Context, partNumber string) (*domain.Part, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, p := range f.parts {
		if p.PartNumber == partNumber {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePartRepo) FindByName(ctx context.Context, name string) (*domain.Part, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, p := range f.parts {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePartRepo) Search(ctx context.Context, query string, limit int) ([]*domain.Part, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	results := make([]*domain.Part, 0)
	for _, p := range f.parts {
		if len(results) >= limit {
			break
		}
		if strings.HasPrefix(p.PartNumber, query) || strings.HasPrefix(p.Name, query) {
			results = append(results, p)
		}
	}
	return results, nil
}

func (f *fakePartRepo) Create(ctx context.Context, part *domain.Part, events []domain.DomainEvent) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, p := range f.parts {
		if p.PartNumber == part.PartNumber {
			return domain.ErrDuplicatePart
		}
	}
	f.parts[part.ID] = part
	return nil
}

func (f *fakePartRepo) Save(ctx context.Context, part *domain.Part, events []domain.DomainEvent) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.parts[part.ID] = part
	return nil
}

type fakeWarehouseRepo struct {
	warehouses map[string]*domain.Warehouse
	findErr    error
	createErr  error
}

func newFakeWarehouseRepo() *fakeWarehouseRepo {
	return &fakeWarehouseRepo{warehouses: make(map[string]*domain.Warehouse)}
}

func (f *fakeWarehouseRepo) addWarehouse(id, plantID string) *domain.Warehouse {
	warehouse := domain.NewWarehouse(plantID, "WH-"+id, "Warehouse "+id)
	warehouse.ID = id
	f.warehouses[id] = warehouse
	return warehouse
}

func (f *fakeWarehouseRepo) FindByID(ctx context.Context, warehouseID string) (*domain.Warehouse, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.warehouses[warehouseID], nil
}

func (f *fakeWarehouseRepo) FindAll(ctx context.Context, plantID string, activeOnly bool) ([]*domain.Warehouse, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	results := make([]*domain.Warehouse, 0)
	for _, w := range f.warehouses {
		if plantID != "" && w.PlantID != plantID {
			continue
		}
		if activeOnly && !w.Active {
			continue
		}
		results = append(results, w)
	}
	return results, nil
}

func (f *fakeWarehouseRepo) Create(ctx context.Context, warehouse *domain.Warehouse) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.warehouses[warehouse.ID] = warehouse
	return nil
}

func (f *fakeWarehouseRepo) Save(ctx context.Context, warehouse *domain.Warehouse) error {
	f.warehouses[warehouse.ID] = warehouse
	return nil
}

type fakePurchaseOrderRepo struct {
	states    map[string]*domain.PurchaseOrderInventoryState
	findErr   error
	upsertErr error
}

func newFakePurchaseOrderRepo() *fakePurchaseOrderRepo {
	return &fakePurchaseOrderRepo{states: make(map[string]*domain.PurchaseOrderInventoryState)}
}

func (f *fakePurchaseOrderRepo) FindByID(ctx context.Context, purchaseOrderID string) (*domain.PurchaseOrderInventoryState, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.states[purchaseOrderID], nil
}

func (f *fakePurchaseOrderRepo) Upsert(ctx context.Context, state *domain.PurchaseOrderInventoryState, events []domain.DomainEvent) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.states[state.ID] = state
	return nil
}
