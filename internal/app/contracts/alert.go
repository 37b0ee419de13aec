package contracts

import (
	"context"

	"carealert-service/internal/app/models"
)

// AlertSubscription is one live feed scoped to a single patient id. Snapshots
// delivers full replacement sets in store order; Close is idempotent.
type AlertSubscription interface {
	Snapshots() <-chan []models.Alert
	Close() error
}

// AlertSubscriber opens live subscriptions against the alert collection.
type AlertSubscriber interface {
	Subscribe(ctx context.Context, patientID string) (AlertSubscription, error)
}

// AlertSubscriptionManager owns at most one live subscription at any instant,
// keyed by patient id. WatchAlerts with an empty id yields an inert, already
// closed channel and opens nothing.
type AlertSubscriptionManager interface {
	WatchAlerts(ctx context.Context, patientID string) (<-chan []models.Alert, error)
	Close() error
}

type AlertRepository interface {
	FindByPatientID(ctx context.Context, patientID string) ([]models.Alert, error)
	CreateAlert(ctx context.Context, alert *models.Alert) (string, error)
	DeleteAlert(ctx context.Context, alertID string) error
}
