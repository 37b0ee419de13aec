package audit

import (
	"context"
	"time"

	"carealert-service/internal/app/config"
	"carealert-service/internal/app/contracts"
	"carealert-service/internal/app/models"
	"carealert-service/internal/app/services/shared/auditqueue"

	"go.uber.org/zap"
)

// QueueConsumer is the slice of the queue service the worker drains.
type QueueConsumer interface {
	FetchN(ctx context.Context, n int) ([]auditqueue.QueuedItem, error)
	EnqueueToDeadQueue(ctx context.Context, entry *models.AuditLogEntry) error
	AckMessage(deliveryTag uint64) error
	NackMessage(deliveryTag uint64) error
}

// Worker drains the audit queue into the audit log collection with
// at-least-once semantics. Entries that fail to persist are requeued; entries
// that cannot be decoded end up on the DLQ inside the queue service.
type Worker struct {
	log   *zap.Logger
	cfg   *config.InternalConfig
	queue QueueConsumer
	repo  contracts.AuditLogRepository
	stop  chan struct{}
}

func NewWorker(log *zap.Logger, cfg *config.InternalConfig, queue QueueConsumer, repo contracts.AuditLogRepository) *Worker {
	return &Worker{
		log:   log,
		cfg:   cfg,
		queue: queue,
		repo:  repo,
		stop:  make(chan struct{}),
	}
}

// Start begins the ticker loop. It returns a stop function to halt execution.
func (w *Worker) Start(ctx context.Context) (stop func()) {
	interval := time.Duration(w.cfg.Audit.WorkerIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	stopped := make(chan struct{})

	w.log.Info("audit worker started")

	go func() {
		defer close(stopped)
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-w.stop:
				ticker.Stop()
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()

	return func() {
		close(w.stop)
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	batch := w.cfg.Audit.WorkerBatchSize
	if batch <= 0 {
		batch = 1
	}

	items, err := w.queue.FetchN(ctx, batch)
	if err != nil {
		w.log.Error("audit worker fetch failed", zap.Error(err))
		return
	}

	for _, item := range items {
		w.processItem(ctx, item)
	}
}

func (w *Worker) processItem(ctx context.Context, item auditqueue.QueuedItem) {
	if err := w.repo.Insert(ctx, &item.Entry); err != nil {
		w.log.Error("audit worker insert failed, moving entry to DLQ",
			zap.String("action", item.Entry.Action),
			zap.Error(err),
		)
		if err := w.queue.EnqueueToDeadQueue(ctx, &item.Entry); err != nil {
			w.log.Error("audit worker DLQ publish failed, requeueing", zap.Error(err))
			if err := w.queue.NackMessage(item.DeliveryTag); err != nil {
				w.log.Error("audit worker nack failed", zap.Error(err))
			}
			return
		}
	}
	if err := w.queue.AckMessage(item.DeliveryTag); err != nil {
		w.log.Error("audit worker ack failed", zap.Error(err))
	}
}
