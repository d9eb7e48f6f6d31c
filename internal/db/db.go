package db

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"ble-gateway-backend/config"
	"ble-gateway-backend/internal/store"
)

// Init connects to Mongo, verifies the connection and ensures the indexes
// the gateway queries rely on.
func Init(ctx context.Context, cfg *config.MongoConfig) (*mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	database := client.Database(cfg.Database)

	log.Println("Ensuring document store indexes...")
	if err := ensureIndexes(connectCtx, database); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	log.Println("Document store initialization complete.")
	return database, nil
}

func ensureIndexes(ctx context.Context, database *mongo.Database) error {
	measurementIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "device.id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "device.datalogger.id", Value: 1}}},
	}
	if _, err := database.Collection(store.CollectionMeasurements).
		Indexes().CreateMany(ctx, measurementIndexes); err != nil {
		return err
	}

	logIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "datalogger", Value: 1}, {Key: "timestamp", Value: -1}}},
	}
	if _, err := database.Collection(store.CollectionDataloggerLogs).
		Indexes().CreateMany(ctx, logIndexes); err != nil {
		return err
	}
	return nil
}
