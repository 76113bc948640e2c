package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cmms-platform/inventory-service/internal/domain"
)

const warehousesCollection = "warehouses"

// WarehouseRepository implements domain.WarehouseRepository on MongoDB
type WarehouseRepository struct {
	collection *mongo.Collection
}

// NewWarehouseRepository creates the warehouse repository and ensures indexes
func NewWarehouseRepository(db *mongo.Database) *WarehouseRepository {
	repo := &WarehouseRepository{collection: db.Collection(warehousesCollection)}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *WarehouseRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "plantId", Value: 1}, {Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "active", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// FindByID retrieves one warehouse; nil when absent
func (r *WarehouseRepository) FindByID(ctx context.Context, warehouseID string) (*domain.Warehouse, error) {
	var warehouse domain.Warehouse
	err := r.collection.FindOne(ctx, bson.M{"_id": warehouseID}).Decode(&warehouse)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find warehouse: %w", err)
	}
	return &warehouse, nil
}

// FindAll lists warehouses, optionally scoped to a plant or to active rows
func (r *WarehouseRepository) FindAll(ctx context.Context, plantID string, activeOnly bool) ([]*domain.Warehouse, error) {
	filter := bson.M{}
	if plantID != "" {
		filter["plantId"] = plantID
	}
	if activeOnly {
		filter["active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	defer cursor.Close(ctx)

	var warehouses []*domain.Warehouse
	if err := cursor.All(ctx, &warehouses); err != nil {
		return nil, fmt.Errorf("failed to decode warehouses: %w", err)
	}
	return warehouses, nil
}

// Create inserts a warehouse
func (r *WarehouseRepository) Create(ctx context.Context, warehouse *domain.Warehouse) error {
	if _, err := r.collection.InsertOne(ctx, warehouse); err != nil {
		return fmt.Errorf("failed to insert warehouse: %w", err)
	}
	return nil
}

// Save replaces a warehouse
func (r *WarehouseRepository) Save(ctx context.Context, warehouse *domain.Warehouse) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": warehouse.ID}, warehouse)
	if err != nil {
		return fmt.Errorf("failed to save warehouse: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrWarehouseNotFound
	}
	return nil
}
