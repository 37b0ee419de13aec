package audit

import (
	"context"
	"time"

	"carealert-service/internal/app/contracts"
	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AuditLogMongoRepository struct {
	Collection *mongo.Collection
}

func NewAuditLogMongoRepository(db *mongo.Client, dbName string) contracts.AuditLogRepository {
	return &AuditLogMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionAuditLogs),
	}
}

// Insert assigns the timestamp on the server via $currentDate, so entries
// order correctly even when writer clocks drift.
func (r *AuditLogMongoRepository) Insert(ctx context.Context, entry *models.AuditLogEntry) error {
	filter := bson.M{"_id": primitive.NewObjectID()}
	update := bson.M{
		"$set": bson.M{
			"action":  entry.Action,
			"actorId": entry.ActorID,
			"details": entry.Details,
		},
		"$currentDate": bson.M{"timestamp": true},
	}
	_, err := r.Collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}

func (r *AuditLogMongoRepository) FindByActorID(ctx context.Context, actorID string, limit int64) ([]models.AuditLogEntry, error) {
	if limit <= 0 {
		limit = constvars.AuditDefaultQueryLimit
	}
	filter := bson.M{"actorId": actorID}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.Collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	entries := make([]models.AuditLogEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return entries, nil
}

func (r *AuditLogMongoRepository) FindBefore(ctx context.Context, cutoff time.Time) ([]models.AuditLogEntry, error) {
	filter := bson.M{"timestamp": bson.M{"$lt": cutoff}}
	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := r.Collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	entries := make([]models.AuditLogEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return entries, nil
}

func (r *AuditLogMongoRepository) DeleteBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.Collection.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return exceptions.ErrMongoDBDeleteDocument(err)
	}
	return nil
}
