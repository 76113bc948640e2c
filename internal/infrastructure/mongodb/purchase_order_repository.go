package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/cloudevents"
)

const purchaseOrdersCollection = "purchase_order_inventory"

// PurchaseOrderRepository persists the inventory-side state of purchase orders
type PurchaseOrderRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	events     *eventWriter
}

// NewPurchaseOrderRepository creates the purchase order state repository
func NewPurchaseOrderRepository(db *mongo.Database, eventFactory *cloudevents.EventFactory) *PurchaseOrderRepository {
	repo := &PurchaseOrderRepository{
		db:         db,
		collection: db.Collection(purchaseOrdersCollection),
		events:     newEventWriter(db, eventFactory),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *PurchaseOrderRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "receivedToInventory", Value: 1}}},
		{Keys: bson.D{{Key: "fulfilledFromInventory", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// FindByID retrieves the state record for a PO; nil when absent
func (r *PurchaseOrderRepository) FindByID(ctx context.Context, purchaseOrderID string) (*domain.PurchaseOrderInventoryState, error) {
	var state domain.PurchaseOrderInventoryState
	err := r.collection.FindOne(ctx, bson.M{"_id": purchaseOrderID}).Decode(&state)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find purchase order state: %w", err)
	}
	return &state, nil
}

// Upsert writes the state record and its events in one transaction
func (r *PurchaseOrderRepository) Upsert(ctx context.Context, state *domain.PurchaseOrderInventoryState, events []domain.DomainEvent) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		opts := options.Replace().SetUpsert(true)
		if _, err := r.collection.ReplaceOne(sessCtx, bson.M{"_id": state.ID}, state, opts); err != nil {
			return nil, fmt.Errorf("failed to upsert purchase order state: %w", err)
		}
		return nil, r.events.save(sessCtx, "purchaseOrder", state.ID, events)
	})
	return err
}
