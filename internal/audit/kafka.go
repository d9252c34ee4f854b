package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink mirrors audit entries to a Kafka topic for downstream forensics.
// Delivery is best-effort: the durable trail is the audit store, so a full
// buffer drops the mirror copy rather than blocking the request path.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
	inbox  chan Entry
}

// NewKafkaSink connects to the brokers and ensures the topic exists.
func NewKafkaSink(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ensure audit topic: %w", err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("ensure audit topic: %w", resp.Err)
	}

	return &KafkaSink{
		client: client,
		topic:  topic,
		logger: logger,
		inbox:  make(chan Entry, 1024),
	}, nil
}

// Publish enqueues an entry for delivery. Non-blocking; drops on overflow.
func (s *KafkaSink) Publish(entry Entry) {
	select {
	case s.inbox <- entry:
	default:
		s.logger.Warn("audit kafka buffer full, dropping mirror entry",
			"session_id", entry.SessionID,
			"entry_type", entry.Type,
		)
	}
}

// kafkaPayload is the JSON structure produced to the topic.
type kafkaPayload struct {
	SessionID string         `json:"session_id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp string         `json:"timestamp"`
}

func (s *KafkaSink) deliver(ctx context.Context, entry Entry) error {
	value, err := json.Marshal(kafkaPayload{
		SessionID: entry.SessionID.String(),
		Type:      string(entry.Type),
		Payload:   entry.Payload,
		Timestamp: entry.Timestamp.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(entry.SessionID.String()),
		Value: value,
	}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Error("audit kafka produce failed",
				"session_id", entry.SessionID,
				"entry_type", entry.Type,
				"error", err,
			)
		}
	})
	return nil
}

// Run drives delivery until the context is cancelled.
func (s *KafkaSink) Run(ctx context.Context) error {
	return NewWorker(s.deliver, s.inbox).Run(ctx)
}

// Close flushes buffered records and releases the client.
func (s *KafkaSink) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Flush(ctx)
	s.client.Close()
}
