//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"ria/internal/audit"
	"ria/internal/platform/kafka/producer"
	id "ria/pkg/domain"
	"ria/pkg/testutil/containers"
)

func TestKafkaSinkPublishesSettlements(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	broker := containers.GetManager().GetKafka(t)
	ctx := context.Background()
	const topic = "ria.settlements.sink-test"
	require.NoError(t, broker.CreateTopic(ctx, topic, 3, 1))

	cfg := producer.DefaultConfig(broker.Brokers)
	cfg.DeliveryTimeout = 10 * time.Second
	prod, err := producer.New(cfg, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	defer prod.Close()

	pub := audit.NewPublisher(audit.NewInMemoryStore(),
		audit.WithSink(audit.NewKafkaSink(prod, topic, audit.SettlementsOnly())))
	issuer := id.NewParticipantID()
	iouID := id.NewIOUID().String()

	require.NoError(t, pub.Emit(ctx, audit.Event{Action: audit.ActionIOUFulfilled, ParticipantID: issuer, Subject: iouID}))
	require.NoError(t, pub.Emit(ctx, audit.Event{
		Action:        audit.ActionSettlementApplied,
		ParticipantID: issuer,
		Subject:       iouID,
		Attributes:    map[string]string{"transition": "fulfilled"},
	}))

	consumer, err := broker.NewConsumer(ctx, "sink-test", topic)
	require.NoError(t, err)
	defer consumer.Close()

	record := broker.WaitForMessage(ctx, consumer, 15*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == iouID
	})
	require.NotNil(t, record)

	var event audit.Event
	require.NoError(t, json.Unmarshal(record.Value, &event))
	require.Equal(t, audit.ActionSettlementApplied, event.Action, "lifecycle events stay off the topic")
	require.Equal(t, issuer, event.ParticipantID)
}
