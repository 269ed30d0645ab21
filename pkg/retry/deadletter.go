package retry

import (
	"encoding/json"
	"time"
)

// DeadLetterSuffix is appended to a topic name to form its dead letter topic
const DeadLetterSuffix = ".dlq"

// DeadLetter wraps a message that exhausted its retries
type DeadLetter struct {
	ID            string            `json:"id"`
	OriginalTopic string            `json:"original_topic"`
	OriginalKey   string            `json:"original_key"`
	Payload       json.RawMessage   `json:"payload"`
	Headers       map[string]string `json:"headers,omitempty"`
	Error         string            `json:"error"`
	Attempts      int               `json:"attempts"`
	MovedAt       time.Time         `json:"moved_at"`
	Source        string            `json:"source"`
}

// DeadLetterTopic returns the dead letter topic for topic
func DeadLetterTopic(topic string) string {
	return topic + DeadLetterSuffix
}

// KafkaHeaders returns the Kafka headers for the dead letter record
func (d *DeadLetter) KafkaHeaders() map[string]string {
	h := map[string]string{
		"content_type":   "application/json",
		"original_topic": d.OriginalTopic,
		"error":          d.Error,
		"source":         d.Source,
	}
	for k, v := range d.Headers {
		if _, exists := h[k]; !exists {
			h["original_"+k] = v
		}
	}
	return h
}
