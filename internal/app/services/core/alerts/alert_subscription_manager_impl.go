package alerts

import (
	"context"
	"sync"

	"carealert-service/internal/app/contracts"
	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

// alertSubscriptionManager holds at most one live subscription at any
// instant, keyed by patient id. Opening a subscription can be slow, so the
// governing patient id is re-checked after the open completes; a subscription
// opened for a patient that is no longer current is closed on the spot and
// its channel never escapes.
type alertSubscriptionManager struct {
	Subscriber contracts.AlertSubscriber
	Log        *zap.Logger

	mu           sync.Mutex
	patientID    string
	subscription contracts.AlertSubscription
}

func NewAlertSubscriptionManager(subscriber contracts.AlertSubscriber, logger *zap.Logger) contracts.AlertSubscriptionManager {
	return &alertSubscriptionManager{
		Subscriber: subscriber,
		Log:        logger,
	}
}

func (m *alertSubscriptionManager) WatchAlerts(ctx context.Context, patientID string) (<-chan []models.Alert, error) {
	if patientID == "" {
		return inertChannel(), nil
	}

	m.mu.Lock()
	if m.subscription != nil && m.patientID == patientID {
		snapshots := m.subscription.Snapshots()
		m.mu.Unlock()
		return snapshots, nil
	}
	previous := m.subscription
	m.subscription = nil
	m.patientID = patientID
	m.mu.Unlock()

	if previous != nil {
		previous.Close()
	}

	subscription, err := m.Subscriber.Subscribe(ctx, patientID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.patientID != patientID {
		m.mu.Unlock()
		subscription.Close()
		m.Log.Debug("AlertSubscriptionManager discarding superseded subscription",
			zap.String(constvars.LoggingPatientIDKey, patientID),
		)
		return inertChannel(), nil
	}
	if m.subscription != nil {
		// A concurrent call for the same patient already installed its
		// subscription; keep that one so exactly one stream stays live.
		existing := m.subscription
		m.mu.Unlock()
		subscription.Close()
		return existing.Snapshots(), nil
	}
	m.subscription = subscription
	m.mu.Unlock()

	return subscription.Snapshots(), nil
}

func (m *alertSubscriptionManager) Close() error {
	m.mu.Lock()
	subscription := m.subscription
	m.subscription = nil
	m.patientID = ""
	m.mu.Unlock()

	if subscription != nil {
		return subscription.Close()
	}
	return nil
}

func inertChannel() <-chan []models.Alert {
	ch := make(chan []models.Alert)
	close(ch)
	return ch
}
