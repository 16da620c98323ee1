package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/domain"
)

const (
	EventComandaOpened  = "comanda_opened"
	EventOrderFinalized = "order_finalized"
)

// Publisher notifies the kitchen and staff dashboards about comanda
// lifecycle changes.
type Publisher interface {
	Publish(ctx context.Context, eventType string, snap *domain.CartSnapshot) error
}

// messageWriter abstracts kafka.Writer for testability.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher publishes lifecycle events to the given topic, keyed by
// table id so per-table ordering is preserved.
func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

// NewKafkaPublisherWith is only for tests to inject a fake writer.
func NewKafkaPublisherWith(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

type envelope struct {
	EventType string               `json:"event_type"`
	TableID   string               `json:"table_id"`
	Snapshot  *domain.CartSnapshot `json:"snapshot"`
	EmittedAt time.Time            `json:"emitted_at"`
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, snap *domain.CartSnapshot) error {
	payload, err := json.Marshal(envelope{
		EventType: eventType,
		TableID:   snap.TableID,
		Snapshot:  snap,
		EmittedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(snap.TableID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	if w, ok := p.writer.(*kafka.Writer); ok {
		return w.Close()
	}
	return nil
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, *domain.CartSnapshot) error { return nil }
