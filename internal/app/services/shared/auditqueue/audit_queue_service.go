package auditqueue

import (
	"context"
	"fmt"
	"sync"

	"carealert-service/internal/app/contracts"
	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/exceptions"
	"carealert-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	StandardQueueName   = "audit_trail_queue"
	DeadLetterQueueName = "audit_trail_dlq"
)

// Service manages the RabbitMQ queues that buffer audit entries between
// emission and persistence. Entries survive a restart: both queues are
// durable and every publish waits for a broker confirm.
type Service struct {
	ch       *amqp.Channel
	log      *zap.Logger
	prefetch int
	confirms chan amqp.Confirmation
	mu       sync.Mutex
}

func NewService(conn *amqp.Connection, log *zap.Logger, prefetch int) (*Service, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		StandardQueueName, // name
		true,              // durable
		false,             // autoDelete
		false,             // exclusive
		false,             // noWait
		nil,               // args
	)
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		DeadLetterQueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}

	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	svc := &Service{
		ch:       ch,
		log:      log,
		prefetch: prefetch,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}

	return svc, nil
}

// QueuedItem is a fetched delivery and its decoded entry.
type QueuedItem struct {
	DeliveryTag uint64
	Entry       models.AuditLogEntry
}

// Enqueue publishes an entry to the standard queue with persistence and waits
// for the broker confirm.
func (s *Service) Enqueue(ctx context.Context, entry *models.AuditLogEntry) error {
	requestID := utils.GetRequestID(ctx)
	s.log.Debug("AuditQueue.Enqueue called", zap.String(constvars.LoggingRequestIDKey, requestID))

	body, err := json.Marshal(entry)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}
	return s.publish(ctx, StandardQueueName, body)
}

// EnqueueToDeadQueue moves an entry that repeatedly failed to persist onto
// the DLQ so it is kept for manual inspection instead of being lost.
func (s *Service) EnqueueToDeadQueue(ctx context.Context, entry *models.AuditLogEntry) error {
	requestID := utils.GetRequestID(ctx)
	s.log.Debug("AuditQueue.EnqueueToDeadQueue called", zap.String(constvars.LoggingRequestIDKey, requestID))

	body, err := json.Marshal(entry)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}
	return s.publish(ctx, DeadLetterQueueName, body)
}

// FetchN retrieves up to n entries using basic.get without auto-ack.
func (s *Service) FetchN(ctx context.Context, n int) ([]QueuedItem, error) {
	if n <= 0 {
		n = 1
	}
	items := make([]QueuedItem, 0, n)

	for i := 0; i < n; i++ {
		d, ok, err := s.ch.Get(StandardQueueName, false)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		var entry models.AuditLogEntry
		if err := json.Unmarshal(d.Body, &entry); err != nil {
			// Invalid JSON goes straight to the DLQ to avoid a poison loop.
			s.log.Error("AuditQueue.FetchN undecodable entry, moving to DLQ", zap.Error(err))
			if pubErr := s.publish(ctx, DeadLetterQueueName, d.Body); pubErr != nil {
				s.log.Error("AuditQueue.FetchN DLQ publish failed, requeueing", zap.Error(pubErr))
				if nackErr := d.Nack(false, true); nackErr != nil {
					s.log.Error("AuditQueue.FetchN nack failed", zap.Error(nackErr))
				}
				continue
			}
			if ackErr := d.Ack(false); ackErr != nil {
				s.log.Error("AuditQueue.FetchN ack failed", zap.Error(ackErr))
			}
			continue
		}
		items = append(items, QueuedItem{DeliveryTag: d.DeliveryTag, Entry: entry})
	}

	return items, nil
}

// AckMessage acknowledges a delivery so it is removed from the queue.
func (s *Service) AckMessage(deliveryTag uint64) error {
	return s.ch.Ack(deliveryTag, false)
}

// NackMessage requeues a delivery for a later attempt.
func (s *Service) NackMessage(deliveryTag uint64) error {
	return s.ch.Nack(deliveryTag, false, true)
}

func (s *Service) publish(ctx context.Context, queue string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}

	if err := s.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, queue)
	}

	select {
	case confirmed := <-s.confirms:
		if !confirmed.Ack {
			return exceptions.ErrRabbitMQPublishMessage(fmt.Errorf("message not confirmed"), queue)
		}
	case <-ctx.Done():
		return exceptions.ErrRabbitMQPublishMessage(ctx.Err(), queue)
	}
	return nil
}

var _ contracts.AuditQueue = (*Service)(nil)
