package reports

import (
	"context"

	"labreport-service/internal/app/contracts"
	"labreport-service/internal/app/models"
	"labreport-service/internal/pkg/constvars"
	"labreport-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type IngestionJournalMongoRepository struct {
	Collection *mongo.Collection
}

func NewIngestionJournalMongoRepository(db *mongo.Client, dbName string) contracts.IngestionJournalRepository {
	return &IngestionJournalMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionIngestionJournal),
	}
}

func (repo *IngestionJournalMongoRepository) InsertIngestionRecord(ctx context.Context, record *models.IngestionRecord) error {
	_, err := repo.Collection.InsertOne(ctx, record)
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}

func (repo *IngestionJournalMongoRepository) FindIngestionRecordsByRequestID(ctx context.Context, requestID string) ([]models.IngestionRecord, error) {
	var records []models.IngestionRecord
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := repo.Collection.Find(ctx, bson.M{"request_id": requestID}, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	err = cursor.All(ctx, &records)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return records, nil
}
