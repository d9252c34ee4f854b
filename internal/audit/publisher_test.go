package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	entries []Entry
}

func (s *captureSink) Publish(entry Entry) {
	s.entries = append(s.entries, entry)
}

type failingStore struct{}

func (failingStore) Append(context.Context, Entry) error { return errors.New("disk full") }
func (failingStore) ListBySession(context.Context, uuid.UUID) ([]Entry, error) {
	return nil, nil
}

func TestEmitPersistsBeforeSink(t *testing.T) {
	store := NewInMemoryStore()
	sink := &captureSink{}
	pub := NewPublisher(store, WithSink(sink))

	sessionID := uuid.New()
	err := pub.Emit(context.Background(), Entry{
		SessionID: sessionID,
		Type:      EntryAttestOK,
		Payload:   map[string]any{"wallet": "0xabc"},
	})
	require.NoError(t, err)

	entries, err := store.ListBySession(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, EntryAttestOK, entries[0].Type)
	assert.False(t, entries[0].Timestamp.IsZero(), "timestamp should be defaulted")

	require.Len(t, sink.entries, 1)
	assert.Equal(t, sessionID, sink.entries[0].SessionID)
}

func TestEmitFailsClosedOnStoreError(t *testing.T) {
	sink := &captureSink{}
	pub := NewPublisher(failingStore{}, WithSink(sink))

	err := pub.Emit(context.Background(), Entry{SessionID: uuid.New(), Type: EntryRedeemed})
	require.Error(t, err)
	assert.Empty(t, sink.entries, "sink must not see entries that were not persisted")
}

func TestEmitWithoutSink(t *testing.T) {
	pub := NewPublisher(NewInMemoryStore())
	err := pub.Emit(context.Background(), Entry{SessionID: uuid.New(), Type: EntryExpired})
	require.NoError(t, err)
}
