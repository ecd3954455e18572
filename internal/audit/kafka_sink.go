package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"ria/internal/platform/kafka/producer"
)

// KafkaSink publishes events as JSON records keyed by subject, so all events
// of one IOU or proposal land on the same partition in order.
type KafkaSink struct {
	producer producer.Publisher
	topic    string
	// filter limits which actions are published; nil publishes everything.
	filter func(Action) bool
}

type KafkaSinkOption func(*KafkaSink)

// SettlementsOnly publishes only settlement actions.
func SettlementsOnly() KafkaSinkOption {
	return func(k *KafkaSink) {
		k.filter = Action.IsSettlement
	}
}

func NewKafkaSink(p producer.Publisher, topic string, opts ...KafkaSinkOption) *KafkaSink {
	k := &KafkaSink{producer: p, topic: topic}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func (k *KafkaSink) Publish(ctx context.Context, event Event) error {
	if k.filter != nil && !k.filter(event.Action) {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	return k.producer.Produce(ctx, &producer.Message{
		Topic: k.topic,
		Key:   []byte(event.Subject),
		Value: payload,
		Headers: map[string]string{
			"event_type":     string(event.Action),
			"participant_id": event.ParticipantID.String(),
			"event_id":       event.ID.String(),
		},
	})
}
