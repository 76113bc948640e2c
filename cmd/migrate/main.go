package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Schema bootstrap tool. Creates the indexes every collection needs
// before the API serves traffic. Safe to re-run; index creation is
// idempotent.

var (
	mongoURI = flag.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	dbName   = flag.String("db", "cmms_inventory", "Database name")
	dryRun   = flag.Bool("dry-run", false, "Print planned indexes without creating them")
)

type indexPlan struct {
	collection string
	model      mongo.IndexModel
}

func main() {
	flag.Parse()

	log.Printf("Starting index migration...")
	log.Printf("MongoDB URI: %s", *mongoURI)
	log.Printf("Database: %s", *dbName)
	log.Printf("Dry Run: %v", *dryRun)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(*mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB successfully")

	db := client.Database(*dbName)

	plans := buildIndexPlans()
	created := 0
	for _, plan := range plans {
		name := describeIndex(plan)
		if *dryRun {
			fmt.Printf("would create %s\n", name)
			continue
		}
		if _, err := db.Collection(plan.collection).Indexes().CreateOne(context.Background(), plan.model); err != nil {
			log.Fatalf("Failed to create %s: %v", name, err)
		}
		fmt.Printf("created %s\n", name)
		created++
	}

	if *dryRun {
		fmt.Printf("\nDry run: %d indexes planned, none created\n", len(plans))
		return
	}
	log.Printf("Migration completed: %d indexes ensured", created)
}

func buildIndexPlans() []indexPlan {
	return []indexPlan{
		{
			collection: "stock",
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "partId", Value: 1}, {Key: "warehouseId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		{
			collection: "stock",
			model:      mongo.IndexModel{Keys: bson.D{{Key: "plantId", Value: 1}}},
		},
		{
			collection: "movements",
			model:      mongo.IndexModel{Keys: bson.D{{Key: "partId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		{
			collection: "movements",
			model:      mongo.IndexModel{Keys: bson.D{{Key: "warehouseId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		{
			collection: "movements",
			model:      mongo.IndexModel{Keys: bson.D{{Key: "workOrderId", Value: 1}}},
		},
		{
			collection: "movements",
			model:      mongo.IndexModel{Keys: bson.D{{Key: "purchaseOrderId", Value: 1}}},
		},
		{
			collection: "reservations",
			model:      mongo.IndexModel{Keys: bson.D{{Key: "workOrderId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		{
			collection: "reservations",
			model:      mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		{
			collection: "parts",
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "partNumber", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		{
			collection: "parts",
			model:      mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		{
			collection: "warehouses",
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "plantId", Value: 1}, {Key: "code", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		{
			collection: "outbox_events",
			model:      mongo.IndexModel{Keys: bson.D{{Key: "publishedAt", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		{
			collection: "outbox_events",
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "publishedAt", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(604800).SetPartialFilterExpression(bson.M{"publishedAt": bson.M{"$exists": true}}),
			},
		},
	}
}

func describeIndex(plan indexPlan) string {
	keys, _ := bson.Marshal(plan.model.Keys)
	var decoded bson.D
	_ = bson.Unmarshal(keys, &decoded)

	desc := fmt.Sprintf("index on %s (", plan.collection)
	for i, key := range decoded {
		if i > 0 {
			desc += ", "
		}
		desc += fmt.Sprintf("%s:%v", key.Key, key.Value)
	}
	return desc + ")"
}
