package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/internal/repository"
	"github.com/Bronny721/nadu-website/pkg/kafka"
	"github.com/Bronny721/nadu-website/pkg/logger"
	"github.com/Bronny721/nadu-website/pkg/retry"
	"go.uber.org/zap"
)

const source = "outbox-worker"

// Publisher sends a record to the broker; *kafka.Producer satisfies it
type Publisher interface {
	Produce(ctx context.Context, msg *kafka.Message) error
}

// OutboxWorkerConfig contains configuration for the outbox worker
type OutboxWorkerConfig struct {
	// PollInterval is the interval between polling for pending messages
	PollInterval time.Duration
	// BatchSize is the number of messages to fetch in each poll
	BatchSize int
	// RetryInterval is the interval between retrying failed messages
	RetryInterval time.Duration
	// CleanupInterval is the interval between cleanup of old published messages
	CleanupInterval time.Duration
	// CleanupRetentionDays is the number of days to retain published messages
	CleanupRetentionDays int
	// Publish bounds the in-process retries of a single publish attempt
	Publish *retry.Config
}

// DefaultOutboxWorkerConfig returns default configuration
func DefaultOutboxWorkerConfig() *OutboxWorkerConfig {
	return &OutboxWorkerConfig{
		PollInterval:         500 * time.Millisecond,
		BatchSize:            100,
		RetryInterval:        5 * time.Second,
		CleanupInterval:      1 * time.Hour,
		CleanupRetentionDays: 7,
		Publish: &retry.Config{
			MaxRetries:      2,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.1,
		},
	}
}

// OutboxWorker relays order events from the outbox to Kafka
type OutboxWorker struct {
	outboxRepo repository.OutboxRepository
	publisher  Publisher
	config     *OutboxWorkerConfig
	log        *logger.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewOutboxWorker creates a new outbox worker
func NewOutboxWorker(
	outboxRepo repository.OutboxRepository,
	publisher Publisher,
	config *OutboxWorkerConfig,
	log *logger.Logger,
) *OutboxWorker {
	if config == nil {
		config = DefaultOutboxWorkerConfig()
	}
	if config.Publish == nil {
		config.Publish = DefaultOutboxWorkerConfig().Publish
	}
	if log == nil {
		log = logger.Get()
	}

	return &OutboxWorker{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		config:     config,
		log:        log.With(zap.String("component", source)),
		stopCh:     make(chan struct{}),
	}
}

// Start launches the poll, retry and cleanup loops
func (w *OutboxWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting outbox worker")

	w.wg.Add(3)
	go w.loop(ctx, w.config.PollInterval, func(ctx context.Context) { w.processPendingMessages(ctx) })
	go w.loop(ctx, w.config.RetryInterval, func(ctx context.Context) { w.processFailedMessages(ctx) })
	go w.loop(ctx, w.config.CleanupInterval, w.cleanupOldMessages)

	return nil
}

// Stop stops the worker and waits for in-flight batches
func (w *OutboxWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping outbox worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Outbox worker stopped")
}

// IsRunning reports whether Start has been called without a matching Stop
func (w *OutboxWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *OutboxWorker) loop(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	defer w.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// processPendingMessages publishes new messages; it returns how many were published
func (w *OutboxWorker) processPendingMessages(ctx context.Context) int {
	messages, err := w.outboxRepo.GetPendingMessages(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error("Failed to get pending messages", zap.Error(err))
		return 0
	}
	return w.relay(ctx, messages)
}

// processFailedMessages retries messages that still have attempts left
func (w *OutboxWorker) processFailedMessages(ctx context.Context) int {
	messages, err := w.outboxRepo.GetFailedMessages(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error("Failed to get failed messages", zap.Error(err))
		return 0
	}
	return w.relay(ctx, messages)
}

func (w *OutboxWorker) relay(ctx context.Context, messages []*domain.OutboxMessage) int {
	published := 0
	for _, msg := range messages {
		fields := []zap.Field{
			zap.String("message_id", msg.ID),
			zap.String("event_type", msg.EventType),
			zap.String("aggregate_id", msg.AggregateID),
		}

		if err := w.publishMessage(ctx, msg); err != nil {
			w.handleFailure(ctx, msg, err, fields)
			continue
		}

		if err := w.outboxRepo.MarkAsPublished(ctx, msg.ID); err != nil {
			w.log.Error("Failed to mark message as published", append(fields, zap.Error(err))...)
			continue
		}
		if msg.RetryCount > 0 {
			w.log.Info("Published message after retry", append(fields, zap.Int("attempts", msg.RetryCount+1))...)
		}
		published++
	}
	return published
}

func (w *OutboxWorker) handleFailure(ctx context.Context, msg *domain.OutboxMessage, cause error, fields []zap.Field) {
	fields = append(fields, zap.Int("attempt", msg.RetryCount+1), zap.Int("max_retries", msg.MaxRetries), zap.Error(cause))

	if !msg.Exhausted() {
		w.log.Warn("Failed to publish message", fields...)
		if err := w.outboxRepo.MarkAsFailed(ctx, msg.ID, cause.Error()); err != nil {
			w.log.Error("Failed to mark message as failed", append(fields, zap.NamedError("mark_error", err))...)
		}
		return
	}

	w.log.Error("Message exhausted retries, moving to dead letter topic", fields...)
	if err := w.publishDeadLetter(ctx, msg, cause); err != nil {
		w.log.Error("Failed to publish dead letter", append(fields, zap.NamedError("dlq_error", err))...)
	}
	if err := w.outboxRepo.MarkAsDead(ctx, msg.ID, cause.Error()); err != nil {
		w.log.Error("Failed to mark message as dead", append(fields, zap.NamedError("mark_error", err))...)
	}
}

func (w *OutboxWorker) cleanupOldMessages(ctx context.Context) {
	deleted, err := w.outboxRepo.DeletePublished(ctx, w.config.CleanupRetentionDays)
	if err != nil {
		w.log.Error("Failed to cleanup old messages", zap.Error(err))
		return
	}
	if deleted > 0 {
		w.log.Info("Cleaned up old published messages", zap.Int64("deleted", deleted))
	}
}

func (w *OutboxWorker) publishMessage(ctx context.Context, msg *domain.OutboxMessage) error {
	record := &kafka.Message{
		Topic:     msg.Topic,
		Key:       []byte(msg.PartitionKey),
		Value:     msg.Payload,
		Headers:   headers(msg),
		Timestamp: time.Now(),
	}

	result := retry.Do(ctx, w.config.Publish, func(ctx context.Context) error {
		return w.publisher.Produce(ctx, record)
	})
	if result.Err != nil {
		if result.LastError != nil {
			return result.LastError
		}
		return result.Err
	}
	return nil
}

func (w *OutboxWorker) publishDeadLetter(ctx context.Context, msg *domain.OutboxMessage, cause error) error {
	dl := &retry.DeadLetter{
		ID:            msg.ID,
		OriginalTopic: msg.Topic,
		OriginalKey:   msg.PartitionKey,
		Payload:       msg.Payload,
		Headers:       headers(msg),
		Error:         cause.Error(),
		Attempts:      msg.RetryCount + 1,
		MovedAt:       time.Now(),
		Source:        source,
	}
	value, err := json.Marshal(dl)
	if err != nil {
		return err
	}

	return w.publisher.Produce(ctx, &kafka.Message{
		Topic:     retry.DeadLetterTopic(msg.Topic),
		Key:       []byte(msg.PartitionKey),
		Value:     value,
		Headers:   dl.KafkaHeaders(),
		Timestamp: dl.MovedAt,
	})
}

func headers(msg *domain.OutboxMessage) map[string]string {
	return map[string]string{
		"event_type":     msg.EventType,
		"aggregate_type": msg.AggregateType,
		"aggregate_id":   msg.AggregateID,
		"content_type":   "application/json",
		"source":         source,
	}
}
