package mq

import (
	"context"
	"time"
)

// MessageQueue is the broker abstraction the services publish and
// consume catalog refresh events through. Business code depends on
// this interface, not on the Kafka implementation.
type MessageQueue interface {
	Producer
	Consumer

	// Ping verifies the broker connection is alive.
	Ping(ctx context.Context) error

	// Close closes the broker connection.
	Close() error
}

// Producer publishes messages.
type Producer interface {
	// Publish publishes a message to the given topic.
	Publish(ctx context.Context, topic string, message *Message) error

	// PublishBatch publishes multiple messages in one call.
	PublishBatch(ctx context.Context, topic string, messages []*Message) error
}

// Consumer subscribes to topics. Subscriptions are registered first,
// then Start begins consumption for all of them.
type Consumer interface {
	// Subscribe registers a handler for a topic with default options.
	Subscribe(ctx context.Context, topic string, handler HandlerFunc) error

	// SubscribeWithOptions registers a handler with custom options.
	SubscribeWithOptions(ctx context.Context, topic string, handler HandlerFunc, opts *SubscribeOptions) error

	// Start begins consuming for all registered subscriptions.
	Start() error

	// Stop gracefully stops all consumers.
	Stop() error

	// Pause temporarily pauses consumption.
	Pause() error

	// Resume resumes consumption after a pause.
	Resume() error
}

// Message is a broker message.
type Message struct {
	ID        string            `json:"id"`
	Body      []byte            `json:"body"`
	Headers   map[string]string `json:"headers"`
	Timestamp time.Time         `json:"timestamp"`

	// Retry bookkeeping, maintained by the consumer.
	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`

	// Expiration drops the message if it sat in the topic longer
	// than this. Zero means no expiry.
	Expiration time.Duration `json:"expiration"`
}

// HandlerFunc processes one message. Returning an error triggers the
// retry policy of the subscription.
type HandlerFunc func(ctx context.Context, message *Message) error

// SubscribeOptions configures a subscription.
type SubscribeOptions struct {
	// ConsumerGroup names the Kafka consumer group. Empty picks a
	// per-topic default.
	ConsumerGroup string

	// PrefetchCount is the number of messages buffered per worker.
	PrefetchCount int

	// Concurrency is the number of handler workers.
	Concurrency int

	// MaxRetries before the message is given up on.
	MaxRetries int

	// RetryDelay between handler attempts.
	RetryDelay time.Duration

	// DeadLetterTopic receives messages that exhausted their retries.
	// Empty discards them.
	DeadLetterTopic string

	// MessageTTL caps how stale a message may be before it is dropped
	// unprocessed.
	MessageTTL time.Duration
}

// SetDefaults fills in zero-valued options.
func (o *SubscribeOptions) SetDefaults() {
	if o.PrefetchCount == 0 {
		o.PrefetchCount = 1
	}
	if o.Concurrency == 0 {
		o.Concurrency = 1
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 3
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = time.Second
	}
}

// NewMessage creates a message with the given body.
func NewMessage(body []byte) *Message {
	return &Message{
		Body:       body,
		Headers:    make(map[string]string),
		Timestamp:  time.Now(),
		MaxRetries: 3,
	}
}
