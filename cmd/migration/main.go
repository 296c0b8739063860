package main

import (
	"context"
	"log"
	"time"

	"labreport-service/internal/app/config"
	"labreport-service/internal/app/drivers/database"
	"labreport-service/internal/pkg/constvars"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Ensures the indexes the ingestion journal queries depend on. Safe to run
// repeatedly; mongo treats an existing identical index as a no-op.
func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	mongoClient := database.NewMongoDB(driverConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := mongoClient.
		Database(internalConfig.MongoDB.DbName).
		Collection(constvars.MongoCollectionIngestionJournal)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "request_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "report_id", Value: 1},
			},
		},
	}

	names, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Fatalf("Error creating ingestion journal indexes: %v", err)
	}

	log.Printf("Applied %d indexes: %v\n", len(names), names)

	err = mongoClient.Disconnect(ctx)
	if err != nil {
		log.Fatalf("Error disconnecting from mongo database: %v", err)
	}
}
