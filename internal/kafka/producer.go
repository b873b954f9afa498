package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"ms-servicing/internal/config"
	"ms-servicing/internal/logger"
	"ms-servicing/internal/models"

	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes ticket lifecycle events. Messages are keyed by ticket
// id so events for one ticket stay ordered within a partition.
type Producer struct {
	Writer MessageWriter
	Topics config.TopicConfig
	Logger *logger.Logger
}

func NewProducer(brokers []string, topics config.TopicConfig, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: writer, Topics: topics, Logger: log}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte) error {
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
}

// TopicFor maps an event type to its topic. Mechanic and work-note events
// travel with status changes.
func (p *Producer) TopicFor(eventType models.TicketEventType) string {
	switch eventType {
	case models.EventTicketCreated:
		return p.Topics.TicketCreated
	case models.EventTicketCharges:
		return p.Topics.TicketCharges
	case models.EventTicketPayment:
		return p.Topics.TicketPayment
	case models.EventTicketDeleted:
		return p.Topics.TicketDeleted
	default:
		return p.Topics.TicketStatus
	}
}

func (p *Producer) PublishTicketEvent(ctx context.Context, event models.TicketEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket event: %w", err)
	}
	topic := p.TopicFor(event.Type)
	if err := p.Publish(ctx, topic, strconv.FormatInt(event.TicketID, 10), payload); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	p.Logger.LogKafka("PUBLISH", topic, fmt.Sprintf("%s ticket #%d", event.Type, event.TicketID))
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// NoopPublisher stands in when Kafka is disabled.
type NoopPublisher struct {
	Logger *logger.Logger
}

func (n NoopPublisher) PublishTicketEvent(_ context.Context, event models.TicketEvent) error {
	if n.Logger != nil {
		n.Logger.Debug("KAFKA", fmt.Sprintf("Kafka disabled, dropping %s for ticket #%d", event.Type, event.TicketID))
	}
	return nil
}

func (n NoopPublisher) Close() error { return nil }
