package alerts

import (
	"context"
	"sync"
	"testing"
	"time"

	"carealert-service/internal/app/contracts"
	"carealert-service/internal/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSubscription struct {
	snapshots chan []models.Alert

	mu         sync.Mutex
	closeCalls int
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{snapshots: make(chan []models.Alert, 4)}
}

func (f *fakeSubscription) Snapshots() <-chan []models.Alert {
	return f.snapshots
}

func (f *fakeSubscription) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closeCalls == 0 {
		close(f.snapshots)
	}
	f.closeCalls++
	return nil
}

func (f *fakeSubscription) CloseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCalls
}

type fakeSubscriber struct {
	mu            sync.Mutex
	subscriptions map[string]*fakeSubscription
	created       []*fakeSubscription
	calls         []string
	gates         map[string]chan struct{}
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{
		subscriptions: make(map[string]*fakeSubscription),
		gates:         make(map[string]chan struct{}),
	}
}

func (f *fakeSubscriber) gate(patientID string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := make(chan struct{})
	f.gates[patientID] = g
	return g
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, patientID string) (contracts.AlertSubscription, error) {
	f.mu.Lock()
	f.calls = append(f.calls, patientID)
	gate := f.gates[patientID]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	sub := newFakeSubscription()
	f.mu.Lock()
	f.subscriptions[patientID] = sub
	f.created = append(f.created, sub)
	f.mu.Unlock()
	return sub, nil
}

func (f *fakeSubscriber) Created() []*fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeSubscription(nil), f.created...)
}

func (f *fakeSubscriber) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSubscriber) Subscription(patientID string) *fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscriptions[patientID]
}

func TestAlertSubscriptionManager(t *testing.T) {
	logger := zap.NewNop()

	t.Run("empty patient id yields an inert closed channel", func(t *testing.T) {
		subscriber := newFakeSubscriber()
		manager := NewAlertSubscriptionManager(subscriber, logger)

		snapshots, err := manager.WatchAlerts(context.Background(), "")
		require.NoError(t, err)

		_, open := <-snapshots
		assert.False(t, open, "channel must already be closed")
		assert.Zero(t, subscriber.CallCount(), "no subscription may be opened")
	})

	t.Run("same patient id reuses the live subscription", func(t *testing.T) {
		subscriber := newFakeSubscriber()
		manager := NewAlertSubscriptionManager(subscriber, logger)

		first, err := manager.WatchAlerts(context.Background(), "p1")
		require.NoError(t, err)
		second, err := manager.WatchAlerts(context.Background(), "p1")
		require.NoError(t, err)

		assert.Equal(t, 1, subscriber.CallCount())

		// Both channels drain the same feed.
		subscriber.Subscription("p1").snapshots <- []models.Alert{{ID: "a1", PatientID: "p1"}}
		select {
		case snapshot := <-first:
			assert.Len(t, snapshot, 1)
		case snapshot := <-second:
			assert.Len(t, snapshot, 1)
		case <-time.After(time.Second):
			t.Fatal("no snapshot delivered")
		}
	})

	t.Run("switching patients closes the previous subscription", func(t *testing.T) {
		subscriber := newFakeSubscriber()
		manager := NewAlertSubscriptionManager(subscriber, logger)

		_, err := manager.WatchAlerts(context.Background(), "p1")
		require.NoError(t, err)
		_, err = manager.WatchAlerts(context.Background(), "p2")
		require.NoError(t, err)

		assert.Equal(t, 1, subscriber.Subscription("p1").CloseCount())
		assert.Equal(t, 0, subscriber.Subscription("p2").CloseCount())
		assert.Equal(t, 2, subscriber.CallCount())
	})

	t.Run("subscription opened for a superseded patient never escapes", func(t *testing.T) {
		subscriber := newFakeSubscriber()
		manager := NewAlertSubscriptionManager(subscriber, logger)
		gate := subscriber.gate("p1")

		type watchResult struct {
			snapshots <-chan []models.Alert
			err       error
		}
		results := make(chan watchResult, 1)
		go func() {
			snapshots, err := manager.WatchAlerts(context.Background(), "p1")
			results <- watchResult{snapshots: snapshots, err: err}
		}()

		// p2 takes over while p1's open is still in flight.
		require.Eventually(t, func() bool { return subscriber.CallCount() == 1 }, time.Second, 5*time.Millisecond)
		_, err := manager.WatchAlerts(context.Background(), "p2")
		require.NoError(t, err)

		close(gate)

		result := <-results
		require.NoError(t, result.err)
		_, open := <-result.snapshots
		assert.False(t, open, "superseded watch must yield an inert channel")

		require.Eventually(t, func() bool {
			sub := subscriber.Subscription("p1")
			return sub != nil && sub.CloseCount() == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, 0, subscriber.Subscription("p2").CloseCount())
	})

	t.Run("concurrent watches for one patient keep a single live subscription", func(t *testing.T) {
		subscriber := newFakeSubscriber()
		manager := NewAlertSubscriptionManager(subscriber, logger)
		gate := subscriber.gate("p1")

		type watchResult struct {
			snapshots <-chan []models.Alert
			err       error
		}
		results := make(chan watchResult, 2)
		for i := 0; i < 2; i++ {
			go func() {
				snapshots, err := manager.WatchAlerts(context.Background(), "p1")
				results <- watchResult{snapshots: snapshots, err: err}
			}()
		}

		// Both opens must be in flight before either can install.
		require.Eventually(t, func() bool { return subscriber.CallCount() == 2 }, time.Second, 5*time.Millisecond)
		close(gate)

		for i := 0; i < 2; i++ {
			result := <-results
			require.NoError(t, result.err)
		}

		created := subscriber.Created()
		require.Len(t, created, 2)

		// The losing open is closed on the spot; the winner stays live.
		require.Eventually(t, func() bool {
			return created[0].CloseCount()+created[1].CloseCount() == 1
		}, time.Second, 5*time.Millisecond)

		require.NoError(t, manager.Close())
		assert.Equal(t, 1, created[0].CloseCount())
		assert.Equal(t, 1, created[1].CloseCount())
	})

	t.Run("pushes keep channel order including empty replacement sets", func(t *testing.T) {
		subscriber := newFakeSubscriber()
		manager := NewAlertSubscriptionManager(subscriber, logger)

		snapshots, err := manager.WatchAlerts(context.Background(), "p1")
		require.NoError(t, err)

		feed := subscriber.Subscription("p1").snapshots
		feed <- []models.Alert{{ID: "a1", PatientID: "p1"}}
		feed <- []models.Alert{}

		first := <-snapshots
		require.Len(t, first, 1)
		second := <-snapshots
		assert.Empty(t, second, "an empty replacement set must be delivered, not skipped")
	})

	t.Run("close is idempotent", func(t *testing.T) {
		subscriber := newFakeSubscriber()
		manager := NewAlertSubscriptionManager(subscriber, logger)

		_, err := manager.WatchAlerts(context.Background(), "p1")
		require.NoError(t, err)

		require.NoError(t, manager.Close())
		require.NoError(t, manager.Close())
		assert.Equal(t, 1, subscriber.Subscription("p1").CloseCount())
	})
}
