package mongodb

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/cloudevents"
)

const partsCollection = "parts"

// PartRepository implements domain.PartRepository on MongoDB
type PartRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	events     *eventWriter
}

// NewPartRepository creates the part repository and ensures indexes
func NewPartRepository(db *mongo.Database, eventFactory *cloudevents.EventFactory) *PartRepository {
	repo := &PartRepository{
		db:         db,
		collection: db.Collection(partsCollection),
		events:     newEventWriter(db, eventFactory),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *PartRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "partNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "active", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// FindByID retrieves one part; nil when absent
func (r *PartRepository) FindByID(ctx context.Context, partID string) (*domain.Part, error) {
	return r.findOne(ctx, bson.M{"_id": partID})
}

// FindByPartNumber retrieves a part by exact part number
func (r *PartRepository) FindByPartNumber(ctx context.Context, partNumber string) (*domain.Part, error) {
	return r.findOne(ctx, bson.M{"partNumber": partNumber})
}

// FindByName retrieves a part by exact display name
func (r *PartRepository) FindByName(ctx context.Context, name string) (*domain.Part, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *PartRepository) findOne(ctx context.Context, filter bson.M) (*domain.Part, error) {
	var part domain.Part
	err := r.collection.FindOne(ctx, filter).Decode(&part)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find part: %w", err)
	}
	return &part, nil
}

// Search lists parts whose number or name starts with the query
func (r *PartRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Part, error) {
	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"$or": []bson.M{
			{"partNumber": pattern},
			{"name": pattern},
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "partNumber", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search parts: %w", err)
	}
	defer cursor.Close(ctx)

	var parts []*domain.Part
	if err := cursor.All(ctx, &parts); err != nil {
		return nil, fmt.Errorf("failed to decode parts: %w", err)
	}
	return parts, nil
}

// Create inserts a part and its events in one transaction
func (r *PartRepository) Create(ctx context.Context, part *domain.Part, events []domain.DomainEvent) error {
	return r.writeWithEvents(ctx, part, events, func(sessCtx mongo.SessionContext) error {
		if _, err := r.collection.InsertOne(sessCtx, part); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return domain.ErrDuplicatePart
			}
			return fmt.Errorf("failed to insert part: %w", err)
		}
		return nil
	})
}

// Save replaces a part and stores its events in one transaction
func (r *PartRepository) Save(ctx context.Context, part *domain.Part, events []domain.DomainEvent) error {
	return r.writeWithEvents(ctx, part, events, func(sessCtx mongo.SessionContext) error {
		result, err := r.collection.ReplaceOne(sessCtx, bson.M{"_id": part.ID}, part)
		if err != nil {
			return fmt.Errorf("failed to save part: %w", err)
		}
		if result.MatchedCount == 0 {
			return domain.ErrPartNotFound
		}
		return nil
	})
}

func (r *PartRepository) writeWithEvents(ctx context.Context, part *domain.Part,
	events []domain.DomainEvent, write func(mongo.SessionContext) error) error {

	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := write(sessCtx); err != nil {
			return nil, err
		}
		return nil, r.events.save(sessCtx, "part", part.ID, events)
	})
	return err
}
