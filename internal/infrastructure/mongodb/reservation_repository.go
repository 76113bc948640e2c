package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cmms-platform/inventory-service/internal/domain"
)

// ReservationRepository reads reservation documents. Writes happen inside
// the stock repository's transactions.
type ReservationRepository struct {
	collection *mongo.Collection
}

// NewReservationRepository creates the reservation repository and ensures indexes
func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	repo := &ReservationRepository{collection: db.Collection(reservationsCollection)}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ReservationRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "workOrderId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "partId", Value: 1}, {Key: "warehouseId", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// FindByID retrieves one reservation; nil when absent
func (r *ReservationRepository) FindByID(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	var reservation domain.Reservation
	err := r.collection.FindOne(ctx, bson.M{"_id": reservationID}).Decode(&reservation)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	return &reservation, nil
}

// FindByWorkOrder lists all reservations for a work order, newest first
func (r *ReservationRepository) FindByWorkOrder(ctx context.Context, workOrderID string) ([]*domain.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"workOrderId": workOrderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*domain.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}

// FindStale lists active reservations created before now minus olderThan
func (r *ReservationRepository) FindStale(ctx context.Context, olderThan time.Duration) ([]*domain.Reservation, error) {
	threshold := time.Now().Add(-olderThan)
	filter := bson.M{
		"status":    domain.ReservationActive,
		"createdAt": bson.M{"$lt": threshold},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*domain.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}
