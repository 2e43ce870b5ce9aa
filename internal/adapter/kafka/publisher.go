// Package kafka publishes finished status evaluations to a sink topic so
// downstream consumers (dashboards, alerting) see every status change
// without polling the HTTP API.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/parquevivo/park-status-service/internal/config"
	"github.com/parquevivo/park-status-service/internal/service"
)

// Publisher produces evaluation messages to a Kafka topic.
// It implements service.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishEvaluation serializes and publishes one evaluation.
func (p *Publisher) PublishEvaluation(ctx context.Context, ev service.Evaluation) error {
	msg, err := serializeToMessage(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an Evaluation into a Kafka message keyed by
// park ID, so one partition carries each park's full history in order.
func serializeToMessage(ev service.Evaluation) (kafkago.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize evaluation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ev.ParkID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "mode", Value: []byte(ev.Primary.Mode)},
			{Key: "advisory", Value: []byte(ev.Advisory)},
			{Key: "evaluated_at", Value: []byte(ev.EvaluatedAt.Format(time.RFC3339))},
		},
	}, nil
}
