package domain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus represents the status of an outbox message
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
	OutboxStatusDead      OutboxStatus = "dead"
)

// IsValid checks if the status is a valid OutboxStatus
func (s OutboxStatus) IsValid() bool {
	switch s {
	case OutboxStatusPending, OutboxStatusPublished, OutboxStatusFailed, OutboxStatusDead:
		return true
	}
	return false
}

// String returns the string representation of OutboxStatus
func (s OutboxStatus) String() string {
	return string(s)
}

// DefaultOrderTopic is the Kafka topic order events are published to
const DefaultOrderTopic = "order-events"

// OutboxMessage represents a message in the outbox table
type OutboxMessage struct {
	ID            string       `json:"id"`
	AggregateType string       `json:"aggregate_type"`
	AggregateID   string       `json:"aggregate_id"`
	EventType     string       `json:"event_type"`
	Payload       []byte       `json:"payload"`
	Topic         string       `json:"topic"`
	PartitionKey  string       `json:"partition_key"`
	Status        OutboxStatus `json:"status"`
	RetryCount    int          `json:"retry_count"`
	MaxRetries    int          `json:"max_retries"`
	LastError     string       `json:"last_error,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	ProcessedAt   *time.Time   `json:"processed_at,omitempty"`
	PublishedAt   *time.Time   `json:"published_at,omitempty"`
}

// NewOutboxMessage creates a pending outbox message keyed by its aggregate
func NewOutboxMessage(aggregateType, aggregateID, eventType, topic string, payload interface{}) (*OutboxMessage, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &OutboxMessage{
		ID:            uuid.New().String(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payloadBytes,
		Topic:         topic,
		PartitionKey:  aggregateID,
		Status:        OutboxStatusPending,
		MaxRetries:    5,
		CreatedAt:     time.Now(),
	}, nil
}

// CanRetry checks if the message can be retried
func (m *OutboxMessage) CanRetry() bool {
	return m.Status == OutboxStatusFailed && m.RetryCount < m.MaxRetries
}

// Exhausted reports whether the next failure should move the message to the dead letter topic
func (m *OutboxMessage) Exhausted() bool {
	return m.RetryCount+1 >= m.MaxRetries
}

// OrderEventType names an order lifecycle event
type OrderEventType string

const (
	OrderEventCreated   OrderEventType = "order.created"
	OrderEventShipped   OrderEventType = "order.shipped"
	OrderEventCompleted OrderEventType = "order.completed"
	OrderEventCancelled OrderEventType = "order.cancelled"
)

// OrderEventFor returns the event emitted when an order enters status
func OrderEventFor(status OrderStatus) OrderEventType {
	switch status {
	case OrderStatusShipped:
		return OrderEventShipped
	case OrderStatusCompleted:
		return OrderEventCompleted
	case OrderStatusCancelled:
		return OrderEventCancelled
	default:
		return OrderEventCreated
	}
}

// OrderEvent is the payload published for order lifecycle events
type OrderEvent struct {
	EventID        string         `json:"event_id"`
	EventType      OrderEventType `json:"event_type"`
	OrderID        int64          `json:"order_id"`
	UserID         int64          `json:"user_id"`
	Status         OrderStatus    `json:"status"`
	PreviousStatus OrderStatus    `json:"previous_status,omitempty"`
	Total          float64        `json:"total"`
	ItemCount      int            `json:"item_count"`
	TrackingNumber string         `json:"tracking_number,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`
}

// OrderOutboxEvent creates an outbox message describing order entering its current status
func OrderOutboxEvent(order *Order, previous OrderStatus, topic string) (*OutboxMessage, error) {
	if topic == "" {
		topic = DefaultOrderTopic
	}
	eventType := OrderEventFor(order.Status)
	event := OrderEvent{
		EventID:        uuid.New().String(),
		EventType:      eventType,
		OrderID:        order.ID,
		UserID:         order.UserID,
		Status:         order.Status,
		PreviousStatus: previous,
		Total:          order.Total,
		ItemCount:      len(order.Items),
		TrackingNumber: order.TrackingNumber,
		OccurredAt:     order.UpdatedAt,
	}
	return NewOutboxMessage("order", strconv.FormatInt(order.ID, 10), string(eventType), topic, event)
}
