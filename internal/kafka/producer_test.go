package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ms-servicing/internal/config"
	"ms-servicing/internal/logger"
	"ms-servicing/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func testTopics() config.TopicConfig {
	return config.TopicConfig{
		TicketCreated: "created",
		TicketStatus:  "status",
		TicketCharges: "charges",
		TicketPayment: "payment",
		TicketDeleted: "deleted",
	}
}

func TestPublishTicketEvent(t *testing.T) {
	writer := &recordingWriter{}
	p := &Producer{Writer: writer, Topics: testTopics(), Logger: logger.New(nil)}

	event := models.TicketEvent{
		EventID:    "evt-1",
		Type:       models.EventTicketCharges,
		TicketID:   42,
		OccurredAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Ticket:     &models.Ticket{ID: 42, ExtraCharges: 500},
	}
	require.NoError(t, p.PublishTicketEvent(context.Background(), event))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "charges", msg.Topic)
	assert.Equal(t, "42", string(msg.Key))

	var decoded models.TicketEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "evt-1", decoded.EventID)
	assert.Equal(t, int64(500), decoded.Ticket.ExtraCharges)
}

func TestTopicFor(t *testing.T) {
	p := &Producer{Topics: testTopics()}

	assert.Equal(t, "created", p.TopicFor(models.EventTicketCreated))
	assert.Equal(t, "status", p.TopicFor(models.EventTicketStatus))
	assert.Equal(t, "status", p.TopicFor(models.EventTicketMechanic))
	assert.Equal(t, "status", p.TopicFor(models.EventTicketWork))
	assert.Equal(t, "payment", p.TopicFor(models.EventTicketPayment))
	assert.Equal(t, "deleted", p.TopicFor(models.EventTicketDeleted))
}

func TestPublishTicketEvent_WriterError(t *testing.T) {
	p := &Producer{Writer: &recordingWriter{err: errors.New("broker down")}, Topics: testTopics(), Logger: logger.New(nil)}

	err := p.PublishTicketEvent(context.Background(), models.TicketEvent{Type: models.EventTicketCreated, TicketID: 1})
	assert.ErrorContains(t, err, "broker down")
}

func TestNoopPublisher(t *testing.T) {
	var buf bytes.Buffer
	n := NoopPublisher{Logger: logger.New(&buf)}

	assert.NoError(t, n.PublishTicketEvent(context.Background(), models.TicketEvent{Type: models.EventTicketDeleted, TicketID: 7}))
	assert.Contains(t, buf.String(), "ticket #7")
}

func TestEnsureTopicsExist_NoBrokers(t *testing.T) {
	assert.Error(t, EnsureTopicsExist(context.Background(), nil, []string{"x"}, logger.New(nil)))
}
