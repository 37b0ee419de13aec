package alerts

import (
	"context"

	"carealert-service/internal/app/contracts"
	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AlertMongoRepository struct {
	Collection *mongo.Collection
}

func NewAlertMongoRepository(db *mongo.Client, dbName string) contracts.AlertRepository {
	return &AlertMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionAlerts),
	}
}

func (r *AlertMongoRepository) FindByPatientID(ctx context.Context, patientID string) ([]models.Alert, error) {
	filter := bson.M{"patientId": patientID}
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.Collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	alerts := make([]models.Alert, 0)
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return alerts, nil
}

func (r *AlertMongoRepository) CreateAlert(ctx context.Context, alert *models.Alert) (string, error) {
	result, err := r.Collection.InsertOne(ctx, alert)
	if err != nil {
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *AlertMongoRepository) DeleteAlert(ctx context.Context, alertID string) error {
	objectID, err := primitive.ObjectIDFromHex(alertID)
	if err != nil {
		return exceptions.ErrMongoDBNotObjectID(err)
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return exceptions.ErrMongoDBDeleteDocument(err)
	}
	return nil
}
