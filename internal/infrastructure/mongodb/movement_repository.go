package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cmms-platform/inventory-service/internal/domain"
)

// MovementRepository reads the append-only movement log. Movement inserts
// happen inside the stock repository's transactions; the one write path here
// is the duplicate-receipt cleanup.
type MovementRepository struct {
	collection *mongo.Collection
}

// NewMovementRepository creates the movement repository and ensures indexes
func NewMovementRepository(db *mongo.Database) *MovementRepository {
	repo := &MovementRepository{collection: db.Collection(movementsCollection)}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *MovementRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "partId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "warehouseId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "workOrderId", Value: 1}}},
		{Keys: bson.D{{Key: "purchaseOrderId", Value: 1}}},
		{Keys: bson.D{{Key: "movementType", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// FindByID retrieves one ledger entry; nil when absent
func (r *MovementRepository) FindByID(ctx context.Context, movementID string) (*domain.Movement, error) {
	var movement domain.Movement
	err := r.collection.FindOne(ctx, bson.M{"_id": movementID}).Decode(&movement)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find movement: %w", err)
	}
	return &movement, nil
}

// List returns a page of ledger entries, newest first, plus the total count
func (r *MovementRepository) List(ctx context.Context, filter domain.MovementFilter, offset, limit int64) ([]*domain.Movement, int64, error) {
	query := bson.M{}
	if filter.PartID != "" {
		query["partId"] = filter.PartID
	}
	if filter.WarehouseID != "" {
		query["warehouseId"] = filter.WarehouseID
	}
	if filter.MovementType != "" {
		query["movementType"] = filter.MovementType
	}
	if filter.WorkOrderID != "" {
		query["workOrderId"] = filter.WorkOrderID
	}
	if filter.PurchaseOrderID != "" {
		query["purchaseOrderId"] = filter.PurchaseOrderID
	}
	if filter.From != nil || filter.To != nil {
		created := bson.M{}
		if filter.From != nil {
			created["$gte"] = *filter.From
		}
		if filter.To != nil {
			created["$lte"] = *filter.To
		}
		query["createdAt"] = created
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count movements: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movements: %w", err)
	}
	defer cursor.Close(ctx)

	var movements []*domain.Movement
	if err := cursor.All(ctx, &movements); err != nil {
		return nil, 0, fmt.Errorf("failed to decode movements: %w", err)
	}
	return movements, total, nil
}

// CleanupDuplicateReceipts dedupes entry movements by (purchaseOrderId,
// reference, partId, warehouseId, quantity), keeping the earliest of each
// group by createdAt and batch-deleting the rest. Running it again on the
// same data deletes nothing.
func (r *MovementRepository) CleanupDuplicateReceipts(ctx context.Context, purchaseOrderID string) (int64, error) {
	match := bson.M{"movementType": domain.MovementEntry}
	if purchaseOrderID != "" {
		match["purchaseOrderId"] = purchaseOrderID
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"purchaseOrderId": "$purchaseOrderId",
				"reference":       "$reference",
				"partId":          "$partId",
				"warehouseId":     "$warehouseId",
				"quantity":        "$quantity",
			},
			"ids":   bson.M{"$push": "$_id"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$match", Value: bson.M{"count": bson.M{"$gt": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to find duplicate receipts: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		IDs []string `bson:"ids"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return 0, fmt.Errorf("failed to decode duplicate groups: %w", err)
	}

	// Drop everything but the earliest in each group (ids are sorted by createdAt)
	duplicateIDs := make([]string, 0)
	for _, group := range groups {
		if len(group.IDs) > 1 {
			duplicateIDs = append(duplicateIDs, group.IDs[1:]...)
		}
	}
	if len(duplicateIDs) == 0 {
		return 0, nil
	}

	result, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": duplicateIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete duplicate receipts: %w", err)
	}
	return result.DeletedCount, nil
}
