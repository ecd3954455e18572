package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ria/internal/platform/kafka/producer"
	id "ria/pkg/domain"
	"ria/pkg/requestcontext"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type recordingProducer struct {
	mu       sync.Mutex
	messages []*producer.Message
	err      error
}

func (p *recordingProducer) Produce(_ context.Context, msg *producer.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func TestPublisher_SyncStoresAndForwards(t *testing.T) {
	store := NewInMemoryStore()
	prod := &recordingProducer{}
	pub := NewPublisher(store, WithPublisherLogger(discard), WithSink(NewKafkaSink(prod, "ria.settlements", SettlementsOnly())))
	ctx := context.Background()
	pid := id.NewParticipantID()

	require.NoError(t, pub.Emit(ctx, Event{Action: ActionIOUIssued, ParticipantID: pid, Subject: "iou-1"}))
	attrs := map[string]string{"transition": "fulfilled"}
	require.NoError(t, pub.Emit(requestcontext.WithClient(ctx, "Firefox on Linux"), Event{
		Action: ActionSettlementApplied, ParticipantID: pid, Subject: "iou-1",
		Attributes: attrs,
	}))
	assert.NotContains(t, attrs, AttrClient, "caller's map is not mutated")

	events, err := pub.List(ctx, pid, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionSettlementApplied, events[0].Action, "newest first")
	assert.NotZero(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())

	require.Len(t, prod.messages, 1, "only settlements reach the topic")
	msg := prod.messages[0]
	assert.Equal(t, "ria.settlements", msg.Topic)
	assert.Equal(t, []byte("iou-1"), msg.Key)
	assert.Equal(t, "settlement_applied", msg.Headers["event_type"])

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, pid, decoded.ParticipantID)
	assert.Equal(t, "fulfilled", decoded.Attributes["transition"])
	assert.Equal(t, "Firefox on Linux", decoded.Attributes[AttrClient])
	assert.NotContains(t, events[1].Attributes, AttrClient)
}

func TestPublisher_SinkFailureDoesNotFailEmit(t *testing.T) {
	prod := &recordingProducer{err: errors.New("broker down")}
	pub := NewPublisher(NewInMemoryStore(), WithPublisherLogger(discard), WithSink(NewKafkaSink(prod, "t")))

	err := pub.Emit(context.Background(), Event{Action: ActionVoteCast, ParticipantID: id.NewParticipantID()})
	assert.NoError(t, err)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(64), WithPublisherLogger(discard))
	pid := id.NewParticipantID()

	for i := 0; i < 20; i++ {
		require.NoError(t, pub.Emit(context.Background(), Event{Action: ActionVoteCast, ParticipantID: pid}))
	}
	pub.Close()

	events, err := store.ListByParticipant(context.Background(), pid, 0)
	require.NoError(t, err)
	assert.Len(t, events, 20)
}

func TestHandleActivity(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithPublisherLogger(discard))
	pid := id.NewParticipantID()
	for i := 0; i < 3; i++ {
		require.NoError(t, pub.Emit(context.Background(), Event{Action: ActionIOUIssued, ParticipantID: pid}))
	}

	r := chi.NewRouter()
	NewHandler(pub, discard).Register(r)

	req := httptest.NewRequest(http.MethodGet, "/me/activity?limit=2", nil)
	req = req.WithContext(requestcontext.WithParticipantID(req.Context(), pid))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Events []Event `json:"events"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Events, 2)

	req = httptest.NewRequest(http.MethodGet, "/me/activity?limit=0", nil)
	req = req.WithContext(requestcontext.WithParticipantID(req.Context(), pid))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me/activity", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
