package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/internal/repository"
	"github.com/Bronny721/nadu-website/pkg/kafka"
	"github.com/Bronny721/nadu-website/pkg/logger"
	"github.com/Bronny721/nadu-website/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Produce(ctx context.Context, msg *kafka.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func topic(name string) interface{} {
	return mock.MatchedBy(func(msg *kafka.Message) bool { return msg.Topic == name })
}

func testConfig() *OutboxWorkerConfig {
	return &OutboxWorkerConfig{
		PollInterval:         10 * time.Millisecond,
		BatchSize:            10,
		RetryInterval:        10 * time.Millisecond,
		CleanupInterval:      time.Hour,
		CleanupRetentionDays: 7,
		Publish:              &retry.Config{MaxRetries: 0, InitialInterval: time.Millisecond},
	}
}

func newOrderMessage(t *testing.T, maxRetries int) *domain.OutboxMessage {
	t.Helper()
	order := &domain.Order{ID: 42, UserID: 1, Total: 549, Status: domain.OrderStatusPending, Items: []domain.OrderItem{{Name: "Linen Shirt", Quantity: 1}}}
	msg, err := domain.OrderOutboxEvent(order, "", "")
	require.NoError(t, err)
	msg.MaxRetries = maxRetries
	return msg
}

func TestDefaultOutboxWorkerConfig(t *testing.T) {
	config := DefaultOutboxWorkerConfig()

	assert.Equal(t, 500*time.Millisecond, config.PollInterval)
	assert.Equal(t, 100, config.BatchSize)
	assert.Equal(t, 5*time.Second, config.RetryInterval)
	assert.Equal(t, time.Hour, config.CleanupInterval)
	assert.Equal(t, 7, config.CleanupRetentionDays)
	require.NotNil(t, config.Publish)
	assert.Equal(t, 2, config.Publish.MaxRetries)
}

func TestNewOutboxWorker_WithDefaultConfig(t *testing.T) {
	w := NewOutboxWorker(nil, nil, nil, logger.NewNop())

	require.NotNil(t, w.config)
	assert.Equal(t, 500*time.Millisecond, w.config.PollInterval)
	assert.False(t, w.IsRunning())
}

func TestOutboxWorker_PublishesPendingMessages(t *testing.T) {
	outbox := repository.NewMemoryOutboxRepository()
	msg := newOrderMessage(t, 5)
	outbox.Add(msg)

	publisher := &MockPublisher{}
	publisher.On("Produce", mock.Anything, topic(domain.DefaultOrderTopic)).Return(nil).Once()

	w := NewOutboxWorker(outbox, publisher, testConfig(), logger.NewNop())
	assert.Equal(t, 1, w.processPendingMessages(context.Background()))

	publisher.AssertExpectations(t)
	record := publisher.Calls[0].Arguments.Get(1).(*kafka.Message)
	assert.Equal(t, "42", string(record.Key))
	assert.Equal(t, "order.created", record.Headers["event_type"])

	var event domain.OrderEvent
	require.NoError(t, json.Unmarshal(record.Value, &event))
	assert.Equal(t, int64(42), event.OrderID)
	assert.Equal(t, 549.0, event.Total)

	stored := outbox.Messages()
	require.Len(t, stored, 1)
	assert.Equal(t, domain.OutboxStatusPublished, stored[0].Status)
	assert.NotNil(t, stored[0].PublishedAt)

	assert.Equal(t, 0, w.processPendingMessages(context.Background()), "published messages are not sent twice")
}

func TestOutboxWorker_RetriesThenDeadLetters(t *testing.T) {
	outbox := repository.NewMemoryOutboxRepository()
	outbox.Add(newOrderMessage(t, 2))

	brokerDown := errors.New("broker not available")
	publisher := &MockPublisher{}
	publisher.On("Produce", mock.Anything, topic(domain.DefaultOrderTopic)).Return(brokerDown)
	publisher.On("Produce", mock.Anything, topic(retry.DeadLetterTopic(domain.DefaultOrderTopic))).Return(nil).Once()

	w := NewOutboxWorker(outbox, publisher, testConfig(), logger.NewNop())
	ctx := context.Background()

	assert.Equal(t, 0, w.processPendingMessages(ctx))
	stored := outbox.Messages()
	assert.Equal(t, domain.OutboxStatusFailed, stored[0].Status)
	assert.Equal(t, 1, stored[0].RetryCount)
	assert.Equal(t, brokerDown.Error(), stored[0].LastError)

	assert.Equal(t, 0, w.processFailedMessages(ctx))
	stored = outbox.Messages()
	assert.Equal(t, domain.OutboxStatusDead, stored[0].Status)

	publisher.AssertExpectations(t)
	dlq := publisher.Calls[len(publisher.Calls)-1].Arguments.Get(1).(*kafka.Message)
	assert.Equal(t, "order-events", dlq.Headers["original_topic"])

	var letter retry.DeadLetter
	require.NoError(t, json.Unmarshal(dlq.Value, &letter))
	assert.Equal(t, 2, letter.Attempts)
	assert.Equal(t, brokerDown.Error(), letter.Error)

	assert.Equal(t, 0, w.processFailedMessages(ctx), "dead messages are not retried")
}

func TestOutboxWorker_RecoversOnRetry(t *testing.T) {
	outbox := repository.NewMemoryOutboxRepository()
	outbox.Add(newOrderMessage(t, 5))

	publisher := &MockPublisher{}
	publisher.On("Produce", mock.Anything, mock.Anything).Return(errors.New("timeout")).Once()
	publisher.On("Produce", mock.Anything, mock.Anything).Return(nil).Once()

	w := NewOutboxWorker(outbox, publisher, testConfig(), logger.NewNop())
	ctx := context.Background()

	assert.Equal(t, 0, w.processPendingMessages(ctx))
	assert.Equal(t, 1, w.processFailedMessages(ctx))
	assert.Equal(t, domain.OutboxStatusPublished, outbox.Messages()[0].Status)
	publisher.AssertExpectations(t)
}

func TestOutboxWorker_StartStop(t *testing.T) {
	outbox := repository.NewMemoryOutboxRepository()
	outbox.Add(newOrderMessage(t, 5))

	publisher := &MockPublisher{}
	publisher.On("Produce", mock.Anything, mock.Anything).Return(nil)

	w := NewOutboxWorker(outbox, publisher, testConfig(), logger.NewNop())
	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()), "second start is rejected")
	assert.True(t, w.IsRunning())

	assert.Eventually(t, func() bool {
		return outbox.Messages()[0].Status == domain.OutboxStatusPublished
	}, time.Second, 10*time.Millisecond)

	w.Stop()
	assert.False(t, w.IsRunning())
	w.Stop()
}

func TestOutboxWorker_CleanupOldMessages(t *testing.T) {
	outbox := repository.NewMemoryOutboxRepository()
	old := newOrderMessage(t, 5)
	published := time.Now().AddDate(0, 0, -10)
	old.Status = domain.OutboxStatusPublished
	old.PublishedAt = &published
	outbox.Add(old)
	outbox.Add(newOrderMessage(t, 5))

	w := NewOutboxWorker(outbox, &MockPublisher{}, testConfig(), logger.NewNop())
	w.cleanupOldMessages(context.Background())

	remaining := outbox.Messages()
	require.Len(t, remaining, 1)
	assert.Equal(t, domain.OutboxStatusPending, remaining[0].Status)
}
