package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/cloudevents"
)

const (
	stockCollection        = "stock"
	movementsCollection    = "movements"
	reservationsCollection = "reservations"
)

// StockRepository implements domain.StockRepository on MongoDB. Every
// check-then-mutate sequence runs as one transaction whose stock update
// carries a conditional filter, so two concurrent reservations cannot both
// observe sufficient availability.
type StockRepository struct {
	db           *mongo.Database
	collection   *mongo.Collection
	movements    *mongo.Collection
	reservations *mongo.Collection
	warehouses   *mongo.Collection
	events       *eventWriter
}

// NewStockRepository creates the stock repository and ensures its indexes
func NewStockRepository(db *mongo.Database, eventFactory *cloudevents.EventFactory) *StockRepository {
	repo := &StockRepository{
		db:           db,
		collection:   db.Collection(stockCollection),
		movements:    db.Collection(movementsCollection),
		reservations: db.Collection(reservationsCollection),
		warehouses:   db.Collection(warehousesCollection),
		events:       newEventWriter(db, eventFactory),
	}
	repo.ensureIndexes(context.Background())
	_ = repo.events.outboxRepo.EnsureIndexes(context.Background())
	return repo
}

func (r *StockRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "partId", Value: 1}, {Key: "warehouseId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "plantId", Value: 1}}},
		{Keys: bson.D{{Key: "reorderPoint", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *StockRepository) withTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

// availableFilter matches a stock row only when current - reserved >= quantity
func availableFilter(partID, warehouseID string, quantity int) bson.M {
	return bson.M{
		"partId":      partID,
		"warehouseId": warehouseID,
		"$expr": bson.M{
			"$gte": bson.A{
				bson.M{"$subtract": bson.A{"$currentQuantity", "$reservedQuantity"}},
				quantity,
			},
		},
	}
}

// FindByID retrieves a stock row by its ID; nil when absent
func (r *StockRepository) FindByID(ctx context.Context, stockID string) (*domain.Stock, error) {
	var stock domain.Stock
	err := r.collection.FindOne(ctx, bson.M{"_id": stockID}).Decode(&stock)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stock: %w", err)
	}
	return &stock, nil
}

// FindByPartAndWarehouse retrieves the row for one (part, warehouse) pair
func (r *StockRepository) FindByPartAndWarehouse(ctx context.Context, partID, warehouseID string) (*domain.Stock, error) {
	var stock domain.Stock
	err := r.collection.FindOne(ctx, bson.M{"partId": partID, "warehouseId": warehouseID}).Decode(&stock)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stock: %w", err)
	}
	return &stock, nil
}

// Find lists stock rows matching the filter
func (r *StockRepository) Find(ctx context.Context, filter domain.StockFilter) ([]*domain.Stock, error) {
	query := bson.M{}
	if filter.PartID != "" {
		query["partId"] = filter.PartID
	}
	if filter.WarehouseID != "" {
		query["warehouseId"] = filter.WarehouseID
	}
	if filter.PlantID != "" {
		query["plantId"] = filter.PlantID
	}
	if filter.LowStockOnly {
		query["reorderPoint"] = bson.M{"$gt": 0}
		query["$expr"] = bson.M{
			"$lte": bson.A{
				bson.M{"$subtract": bson.A{"$currentQuantity", "$reservedQuantity"}},
				"$reorderPoint",
			},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "partId", Value: 1}, {Key: "warehouseId", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	defer cursor.Close(ctx)

	var stocks []*domain.Stock
	if err := cursor.All(ctx, &stocks); err != nil {
		return nil, fmt.Errorf("failed to decode stock rows: %w", err)
	}
	return stocks, nil
}

// FindLowStock lists rows at or under their reorder point
func (r *StockRepository) FindLowStock(ctx context.Context, plantID string) ([]*domain.Stock, error) {
	filter := domain.StockFilter{PlantID: plantID, LowStockOnly: true}
	return r.Find(ctx, filter)
}

// ReserveStock holds quantity for a work order. The conditional increment,
// the reservation document, the reservation movement, and the outbox events
// commit together or not at all.
func (r *StockRepository) ReserveStock(ctx context.Context, partID, warehouseID string, quantity int,
	reservation *domain.Reservation, movement *domain.Movement, events []domain.DomainEvent) error {

	return r.withTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		now := time.Now()
		result, err := r.collection.UpdateOne(sessCtx,
			availableFilter(partID, warehouseID, quantity),
			bson.M{
				"$inc": bson.M{"reservedQuantity": quantity},
				"$set": bson.M{"updatedAt": now},
			},
		)
		if err != nil {
			return fmt.Errorf("failed to reserve stock: %w", err)
		}
		if result.MatchedCount == 0 {
			return r.availabilityError(sessCtx, partID, warehouseID, quantity)
		}

		stock, err := r.findInSession(sessCtx, partID, warehouseID)
		if err != nil {
			return err
		}
		movement.WithBalanceAfter(stock.CurrentQuantity)

		if _, err := r.reservations.InsertOne(sessCtx, reservation); err != nil {
			return fmt.Errorf("failed to insert reservation: %w", err)
		}
		if _, err := r.movements.InsertOne(sessCtx, movement); err != nil {
			return fmt.Errorf("failed to insert movement: %w", err)
		}
		return r.events.save(sessCtx, "stock", stock.ID, events)
	})
}

// ReleaseStock closes a hold. A consumed hold draws down both counters; a
// cancelled hold gives the quantity back to available stock.
func (r *StockRepository) ReleaseStock(ctx context.Context, reservation *domain.Reservation,
	movement *domain.Movement, events []domain.DomainEvent) error {

	return r.withTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Close the reservation; losing this race means someone else already did
		res, err := r.reservations.UpdateOne(sessCtx,
			bson.M{"_id": reservation.ID, "status": domain.ReservationActive},
			bson.M{"$set": bson.M{
				"status":      reservation.Status,
				"updatedAt":   reservation.UpdatedAt,
				"consumedAt":  reservation.ConsumedAt,
				"cancelledAt": reservation.CancelledAt,
			}},
		)
		if err != nil {
			return fmt.Errorf("failed to update reservation: %w", err)
		}
		if res.MatchedCount == 0 {
			return domain.ErrReservationNotActive
		}

		now := time.Now()
		if reservation.Status == domain.ReservationConsumed {
			result, err := r.collection.UpdateOne(sessCtx,
				bson.M{
					"partId":           reservation.PartID,
					"warehouseId":      reservation.WarehouseID,
					"reservedQuantity": bson.M{"$gte": reservation.Quantity},
					"currentQuantity":  bson.M{"$gte": reservation.Quantity},
				},
				bson.M{
					"$inc": bson.M{
						"reservedQuantity": -reservation.Quantity,
						"currentQuantity":  -reservation.Quantity,
					},
					"$set": bson.M{"updatedAt": now},
				},
			)
			if err != nil {
				return fmt.Errorf("failed to consume reserved stock: %w", err)
			}
			if result.MatchedCount == 0 {
				return domain.NewInsufficientStockError(reservation.PartID, reservation.WarehouseID,
					reservation.Quantity, 0)
			}
		} else {
			// Clamp at zero so an inconsistent row cannot go negative
			_, err := r.collection.UpdateOne(sessCtx,
				bson.M{"partId": reservation.PartID, "warehouseId": reservation.WarehouseID},
				mongo.Pipeline{
					{{Key: "$set", Value: bson.M{
						"reservedQuantity": bson.M{"$max": bson.A{0,
							bson.M{"$subtract": bson.A{"$reservedQuantity", reservation.Quantity}}}},
						"updatedAt": now,
					}}},
				},
			)
			if err != nil {
				return fmt.Errorf("failed to release reserved stock: %w", err)
			}
		}

		stock, err := r.findInSession(sessCtx, reservation.PartID, reservation.WarehouseID)
		if err != nil {
			return err
		}
		movement.WithBalanceAfter(stock.CurrentQuantity)

		if _, err := r.movements.InsertOne(sessCtx, movement); err != nil {
			return fmt.Errorf("failed to insert movement: %w", err)
		}
		return r.events.save(sessCtx, "stock", stock.ID, events)
	})
}

// ConsumeStock draws down available stock without a prior hold
func (r *StockRepository) ConsumeStock(ctx context.Context, partID, warehouseID string, quantity int,
	movement *domain.Movement, events []domain.DomainEvent) error {

	return r.withTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		result, err := r.collection.UpdateOne(sessCtx,
			availableFilter(partID, warehouseID, quantity),
			bson.M{
				"$inc": bson.M{"currentQuantity": -quantity},
				"$set": bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			return fmt.Errorf("failed to consume stock: %w", err)
		}
		if result.MatchedCount == 0 {
			return r.availabilityError(sessCtx, partID, warehouseID, quantity)
		}

		stock, err := r.findInSession(sessCtx, partID, warehouseID)
		if err != nil {
			return err
		}
		movement.WithBalanceAfter(stock.CurrentQuantity)

		if _, err := r.movements.InsertOne(sessCtx, movement); err != nil {
			return fmt.Errorf("failed to insert movement: %w", err)
		}
		return r.events.save(sessCtx, "stock", stock.ID, events)
	})
}

// ReceiveStock adds quantity at a unit cost, creating the row when the pair
// has none yet and recomputing the weighted average cost
func (r *StockRepository) ReceiveStock(ctx context.Context, partID, warehouseID, plantID string,
	quantity int, unitCostCents int64, movement *domain.Movement,
	events []domain.DomainEvent) (*domain.Stock, error) {

	var received *domain.Stock
	err := r.withTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		stock, err := r.findInSessionOrNil(sessCtx, partID, warehouseID)
		if err != nil {
			return err
		}

		if stock == nil {
			stock = domain.NewStock(partID, warehouseID, plantID)
			if err := stock.Receive(quantity, unitCostCents); err != nil {
				return err
			}
			if _, err := r.collection.InsertOne(sessCtx, stock); err != nil {
				return fmt.Errorf("failed to insert stock: %w", err)
			}
		} else {
			if err := stock.Receive(quantity, unitCostCents); err != nil {
				return err
			}
			_, err := r.collection.UpdateOne(sessCtx,
				bson.M{"_id": stock.ID},
				bson.M{"$set": bson.M{
					"currentQuantity": stock.CurrentQuantity,
					"averageUnitCost": stock.AverageUnitCost,
					"updatedAt":       stock.UpdatedAt,
				}},
			)
			if err != nil {
				return fmt.Errorf("failed to update stock: %w", err)
			}
		}

		movement.WithBalanceAfter(stock.CurrentQuantity)
		if _, err := r.movements.InsertOne(sessCtx, movement); err != nil {
			return fmt.Errorf("failed to insert movement: %w", err)
		}
		if err := r.events.save(sessCtx, "stock", stock.ID, events); err != nil {
			return err
		}

		received = stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return received, nil
}

// AdjustStock sets currentQuantity to a physical count and appends exactly
// one adjustment movement
func (r *StockRepository) AdjustStock(ctx context.Context, stockID string, physicalCount int,
	reason, actorID string) (*domain.Stock, *domain.Movement, error) {

	var (
		adjusted *domain.Stock
		movement *domain.Movement
	)
	err := r.withTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var stock domain.Stock
		err := r.collection.FindOne(sessCtx, bson.M{"_id": stockID}).Decode(&stock)
		if err == mongo.ErrNoDocuments {
			return domain.ErrStockNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find stock: %w", err)
		}
		stock.ClearDomainEvents()

		oldQuantity := stock.CurrentQuantity
		delta, err := stock.Adjust(physicalCount)
		if err != nil {
			return err
		}

		_, err = r.collection.UpdateOne(sessCtx,
			bson.M{"_id": stock.ID},
			bson.M{"$set": bson.M{
				"currentQuantity": stock.CurrentQuantity,
				"updatedAt":       stock.UpdatedAt,
			}},
		)
		if err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}

		movement = domain.NewMovement(domain.MovementAdjustment, stock.PartID, stock.WarehouseID, delta, actorID).
			WithReason(reason).
			WithBalanceAfter(stock.CurrentQuantity)
		if _, err := r.movements.InsertOne(sessCtx, movement); err != nil {
			return fmt.Errorf("failed to insert movement: %w", err)
		}

		events := append([]domain.DomainEvent{
			&domain.StockAdjustedEvent{
				PartID:      stock.PartID,
				WarehouseID: stock.WarehouseID,
				OldQuantity: oldQuantity,
				NewQuantity: stock.CurrentQuantity,
				Delta:       delta,
				Reason:      reason,
				AdjustedBy:  actorID,
				AdjustedAt:  time.Now(),
			},
		}, stock.DomainEvents...)
		if err := r.events.save(sessCtx, "stock", stock.ID, events); err != nil {
			return err
		}

		adjusted = &stock
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return adjusted, movement, nil
}

// TransferStock moves quantity between warehouses: an availability-checked
// decrement at the source, an increment (or new row) at the destination, and
// two transfer movements, all in one transaction
func (r *StockRepository) TransferStock(ctx context.Context, partID, fromWarehouseID, toWarehouseID string,
	quantity int, actorID string, events []domain.DomainEvent) error {

	return r.withTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		source, err := r.findInSessionOrNil(sessCtx, partID, fromWarehouseID)
		if err != nil {
			return err
		}
		if source == nil {
			return domain.ErrStockNotFound
		}

		result, err := r.collection.UpdateOne(sessCtx,
			availableFilter(partID, fromWarehouseID, quantity),
			bson.M{
				"$inc": bson.M{"currentQuantity": -quantity},
				"$set": bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			return fmt.Errorf("failed to decrement source stock: %w", err)
		}
		if result.MatchedCount == 0 {
			return domain.NewInsufficientStockError(partID, fromWarehouseID, quantity, source.AvailableQuantity())
		}

		dest, err := r.findInSessionOrNil(sessCtx, partID, toWarehouseID)
		if err != nil {
			return err
		}
		if dest == nil {
			plantID, err := r.plantForWarehouse(sessCtx, toWarehouseID)
			if err != nil {
				return err
			}
			dest = domain.NewStock(partID, toWarehouseID, plantID)
			if err := dest.Receive(quantity, source.AverageUnitCost); err != nil {
				return err
			}
			if _, err := r.collection.InsertOne(sessCtx, dest); err != nil {
				return fmt.Errorf("failed to insert destination stock: %w", err)
			}
		} else {
			if err := dest.Receive(quantity, source.AverageUnitCost); err != nil {
				return err
			}
			_, err := r.collection.UpdateOne(sessCtx,
				bson.M{"_id": dest.ID},
				bson.M{"$set": bson.M{
					"currentQuantity": dest.CurrentQuantity,
					"averageUnitCost": dest.AverageUnitCost,
					"updatedAt":       dest.UpdatedAt,
				}},
			)
			if err != nil {
				return fmt.Errorf("failed to update destination stock: %w", err)
			}
		}

		outbound := domain.NewMovement(domain.MovementTransfer, partID, fromWarehouseID, -quantity, actorID).
			WithReference(toWarehouseID).
			WithBalanceAfter(source.CurrentQuantity - quantity)
		inbound := domain.NewMovement(domain.MovementTransfer, partID, toWarehouseID, quantity, actorID).
			WithReference(fromWarehouseID).
			WithBalanceAfter(dest.CurrentQuantity)
		if _, err := r.movements.InsertMany(sessCtx, []interface{}{outbound, inbound}); err != nil {
			return fmt.Errorf("failed to insert transfer movements: %w", err)
		}

		all := append([]domain.DomainEvent{
			&domain.StockTransferredEvent{
				PartID:          partID,
				FromWarehouseID: fromWarehouseID,
				ToWarehouseID:   toWarehouseID,
				Quantity:        quantity,
				TransferredBy:   actorID,
				TransferredAt:   time.Now(),
			},
		}, events...)
		return r.events.save(sessCtx, "stock", source.ID, all)
	})
}

// availabilityError distinguishes a missing row from insufficient stock after
// a conditional update matched nothing
func (r *StockRepository) availabilityError(sessCtx mongo.SessionContext, partID, warehouseID string, quantity int) error {
	stock, err := r.findInSessionOrNil(sessCtx, partID, warehouseID)
	if err != nil {
		return err
	}
	if stock == nil {
		return domain.ErrStockNotFound
	}
	return domain.NewInsufficientStockError(partID, warehouseID, quantity, stock.AvailableQuantity())
}

func (r *StockRepository) findInSession(sessCtx mongo.SessionContext, partID, warehouseID string) (*domain.Stock, error) {
	stock, err := r.findInSessionOrNil(sessCtx, partID, warehouseID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.ErrStockNotFound
	}
	return stock, nil
}

func (r *StockRepository) findInSessionOrNil(sessCtx mongo.SessionContext, partID, warehouseID string) (*domain.Stock, error) {
	var stock domain.Stock
	err := r.collection.FindOne(sessCtx, bson.M{"partId": partID, "warehouseId": warehouseID}).Decode(&stock)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stock: %w", err)
	}
	return &stock, nil
}

func (r *StockRepository) plantForWarehouse(sessCtx mongo.SessionContext, warehouseID string) (string, error) {
	var warehouse domain.Warehouse
	err := r.warehouses.FindOne(sessCtx, bson.M{"_id": warehouseID}).Decode(&warehouse)
	if err == mongo.ErrNoDocuments {
		return "", domain.ErrWarehouseNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to find warehouse: %w", err)
	}
	return warehouse.PlantID, nil
}
