package alerts

import (
	"context"
	"sync"

	"carealert-service/internal/app/contracts"
	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const snapshotBufferSize = 4

// AlertMongoSubscriber opens change streams against the alerts collection.
// Every change event triggers a full re-query so consumers always receive a
// complete replacement set, never a diff.
type AlertMongoSubscriber struct {
	Repository contracts.AlertRepository
	Collection *mongo.Collection
	Log        *zap.Logger
}

func NewAlertMongoSubscriber(db *mongo.Client, dbName string, repository contracts.AlertRepository, logger *zap.Logger) contracts.AlertSubscriber {
	return &AlertMongoSubscriber{
		Repository: repository,
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionAlerts),
		Log:        logger,
	}
}

func (s *AlertMongoSubscriber) Subscribe(ctx context.Context, patientID string) (contracts.AlertSubscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	// Delete events carry no fullDocument, so they are matched by operation
	// type and resolved by the re-query.
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"$or": []bson.M{
				{"fullDocument.patientId": patientID},
				{"operationType": "delete"},
			},
		}}},
	}
	streamOptions := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := s.Collection.Watch(subCtx, pipeline, streamOptions)
	if err != nil {
		cancel()
		return nil, exceptions.ErrMongoDBWatchCollection(err)
	}

	subscription := &alertSubscription{
		snapshots: make(chan []models.Alert, snapshotBufferSize),
		cancel:    cancel,
	}
	go subscription.run(subCtx, stream, s.Repository, patientID, s.Log)
	return subscription, nil
}

type alertSubscription struct {
	snapshots chan []models.Alert
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func (s *alertSubscription) Snapshots() <-chan []models.Alert {
	return s.snapshots
}

func (s *alertSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
	})
	return nil
}

func (s *alertSubscription) run(ctx context.Context, stream *mongo.ChangeStream, repository contracts.AlertRepository, patientID string, log *zap.Logger) {
	defer close(s.snapshots)
	defer stream.Close(context.Background())

	// Initial snapshot before any change event.
	s.deliver(ctx, repository, patientID, log)

	for stream.Next(ctx) {
		s.deliver(ctx, repository, patientID, log)
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		log.Error("AlertSubscription change stream ended",
			zap.String(constvars.LoggingPatientIDKey, patientID),
			zap.Error(err),
		)
	}
}

func (s *alertSubscription) deliver(ctx context.Context, repository contracts.AlertRepository, patientID string, log *zap.Logger) {
	alerts, err := repository.FindByPatientID(ctx, patientID)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("AlertSubscription snapshot query failed",
				zap.String(constvars.LoggingPatientIDKey, patientID),
				zap.Error(err),
			)
		}
		return
	}
	select {
	case s.snapshots <- alerts:
	case <-ctx.Done():
	}
}
