package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/cmms-platform/inventory-service/pkg/cloudevents"
	"github.com/cmms-platform/inventory-service/pkg/logging"
)

// Producer publishes CloudEvents to Kafka using one writer per topic
type Producer struct {
	config  *Config
	logger  *logging.Logger
	writers map[string]*kafka.Writer
	mu      sync.RWMutex
	closed  bool
}

// NewProducer creates a Kafka producer
func NewProducer(config *Config, logger *logging.Logger) *Producer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Producer{
		config:  config,
		logger:  logger.WithComponent("kafka-producer"),
		writers: make(map[string]*kafka.Writer),
	}
}

// getWriter returns the writer for a topic, creating it on first use
func (p *Producer) getWriter(topic string) (*kafka.Writer, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, fmt.Errorf("producer is closed")
	}
	if w, ok := p.writers[topic]; ok {
		p.mu.RUnlock()
		return w, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, fmt.Errorf("producer is closed")
	}
	if w, ok := p.writers[topic]; ok {
		return w, nil
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(p.config.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    p.config.BatchSize,
		BatchTimeout: p.config.BatchTimeout,
		RequiredAcks: kafka.RequiredAcks(p.config.RequiredAcks),
		Compression:  kafka.Snappy,
	}
	p.writers[topic] = w
	return w, nil
}

// PublishEvent publishes a CloudEvent to the given topic. The event subject
// is used as the partition key so events for one aggregate stay ordered.
func (p *Producer) PublishEvent(ctx context.Context, topic string, event *cloudevents.CloudEvent) error {
	writer, err := p.getWriter(topic)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Subject),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "ce-id", Value: []byte(event.ID)},
			{Key: "ce-type", Value: []byte(event.Type)},
			{Key: "ce-source", Value: []byte(event.Source)},
			{Key: "ce-specversion", Value: []byte(event.SpecVersion)},
			{Key: "content-type", Value: []byte(event.DataContentType)},
		},
		Time: time.Now(),
	}
	if event.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{
			Key: "ce-correlationid", Value: []byte(event.CorrelationID),
		})
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			"topic", topic,
			"eventId", event.ID,
			"eventType", event.Type,
			"error", err,
		)
		return fmt.Errorf("failed to publish event %s to %s: %w", event.ID, topic, err)
	}

	p.logger.Debug("event published",
		"topic", topic,
		"eventId", event.ID,
		"eventType", event.Type,
		"subject", event.Subject,
	)
	return nil
}

// Close closes all topic writers
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close writer for %s: %w", topic, err)
		}
	}
	p.writers = nil
	return firstErr
}
