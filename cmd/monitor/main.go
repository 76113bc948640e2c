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

// Inventory health monitoring tool.
// Scans for reservations that have been held longer than the stale
// threshold and for stock rows at or below their reorder point.

var (
	mongoURI   = flag.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	dbName     = flag.String("db", "cmms_inventory", "Database name")
	staleAfter = flag.Duration("stale-after", 72*time.Hour, "Age after which an active reservation is stale")
	limit      = flag.Int("limit", 50, "Maximum number of results to display per report")
)

type staleReservation struct {
	ID          string    `bson:"_id"`
	WorkOrderID string    `bson:"workOrderId"`
	PartID      string    `bson:"partId"`
	WarehouseID string    `bson:"warehouseId"`
	Quantity    int       `bson:"quantity"`
	CreatedAt   time.Time `bson:"createdAt"`
}

type lowStockRow struct {
	PartID           string `bson:"partId"`
	WarehouseID      string `bson:"warehouseId"`
	CurrentQuantity  int    `bson:"currentQuantity"`
	ReservedQuantity int    `bson:"reservedQuantity"`
	ReorderPoint     int    `bson:"reorderPoint"`
}

func main() {
	flag.Parse()

	log.Printf("Starting inventory health scan...")
	log.Printf("MongoDB URI: %s", *mongoURI)
	log.Printf("Database: %s", *dbName)
	log.Printf("Stale threshold: %s", *staleAfter)

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

	if err := reportStaleReservations(context.Background(), db); err != nil {
		log.Fatalf("Stale reservation scan failed: %v", err)
	}
	if err := reportLowStock(context.Background(), db); err != nil {
		log.Fatalf("Low stock scan failed: %v", err)
	}
}

func reportStaleReservations(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("reservations")
	cutoff := time.Now().UTC().Add(-*staleAfter)

	filter := bson.M{
		"status":    "active",
		"createdAt": bson.M{"$lt": cutoff},
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to count stale reservations: %w", err)
	}

	fmt.Printf("\n=== Stale Reservations (older than %s) ===\n", *staleAfter)
	fmt.Printf("Total: %d\n\n", total)

	if total == 0 {
		fmt.Println("No stale reservations found")
		return nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(*limit))
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("failed to query stale reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []staleReservation
	if err := cursor.All(ctx, &rows); err != nil {
		return fmt.Errorf("failed to decode results: %w", err)
	}

	fmt.Println("Reservation                            Work Order                            Part                                  Qty   Age (h)")
	fmt.Println("-------------------------------------  ------------------------------------  ------------------------------------  ----  -------")
	for _, r := range rows {
		ageHours := time.Since(r.CreatedAt).Hours()
		fmt.Printf("%-37s  %-36s  %-36s  %4d  %7.1f\n",
			r.ID, r.WorkOrderID, r.PartID, r.Quantity, ageHours)
	}

	return nil
}

func reportLowStock(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("stock")

	filter := bson.M{
		"reorderPoint": bson.M{"$gt": 0},
		"$expr": bson.M{
			"$lte": bson.A{
				bson.M{"$subtract": bson.A{"$currentQuantity", "$reservedQuantity"}},
				"$reorderPoint",
			},
		},
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to count low stock rows: %w", err)
	}

	fmt.Printf("\n=== Low Stock (available at or below reorder point) ===\n")
	fmt.Printf("Total: %d\n\n", total)

	if total == 0 {
		fmt.Println("No low stock rows found")
		return nil
	}

	cursor, err := collection.Find(ctx, filter, options.Find().SetLimit(int64(*limit)))
	if err != nil {
		return fmt.Errorf("failed to query low stock: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []lowStockRow
	if err := cursor.All(ctx, &rows); err != nil {
		return fmt.Errorf("failed to decode results: %w", err)
	}

	fmt.Println("Part                                  Warehouse                             Current  Reserved  Available  Reorder")
	fmt.Println("------------------------------------  ------------------------------------  -------  --------  ---------  -------")
	for _, r := range rows {
		available := r.CurrentQuantity - r.ReservedQuantity
		fmt.Printf("%-36s  %-36s  %7d  %8d  %9d  %7d\n",
			r.PartID, r.WarehouseID, r.CurrentQuantity, r.ReservedQuantity, available, r.ReorderPoint)
	}

	return nil
}
