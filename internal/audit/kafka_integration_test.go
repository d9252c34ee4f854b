//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredpanda "github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kgo"

	"lockpass/internal/audit"
)

func TestKafkaSinkDeliversEntries(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcredpanda.Run(ctx, "redpandadata/redpanda:v24.1.7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	broker, err := container.KafkaSeedBroker(ctx)
	require.NoError(t, err)

	const topic = "lockpass.audit.test"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sink, err := audit.NewKafkaSink(ctx, []string{broker}, topic, logger)
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sink.Run(runCtx)
	}()

	sessionID := uuid.New()
	sink.Publish(audit.Entry{
		SessionID: sessionID,
		Type:      audit.EntryAttestOK,
		Payload:   map[string]any{"wallet": "0xabc"},
		Timestamp: time.Now().UTC(),
	})

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	pollCtx, pollCancel := context.WithTimeout(ctx, 30*time.Second)
	defer pollCancel()
	fetches := consumer.PollFetches(pollCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.NotEmpty(t, records)
	assert.Equal(t, sessionID.String(), string(records[0].Key))

	var payload struct {
		SessionID string         `json:"session_id"`
		Type      string         `json:"type"`
		Payload   map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(records[0].Value, &payload))
	assert.Equal(t, sessionID.String(), payload.SessionID)
	assert.Equal(t, string(audit.EntryAttestOK), payload.Type)
	assert.Equal(t, "0xabc", payload.Payload["wallet"])

	cancel()
	<-done
	sink.Close()
}
