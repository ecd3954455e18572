package producer

import (
	"errors"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Acks is the broker acknowledgement level a produce waits for.
type Acks string

const (
	AcksNone   Acks = "0"
	AcksLeader Acks = "1"
	AcksAll    Acks = "all"
)

type Config struct {
	Brokers         []string
	ClientID        string
	Acks            Acks
	Retries         int
	Linger          time.Duration
	DeliveryTimeout time.Duration
	CloseTimeout    time.Duration
}

// DefaultConfig parses a comma separated broker list and waits for every
// in-sync replica.
func DefaultConfig(brokers string) Config {
	var list []string
	for b := range strings.SplitSeq(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			list = append(list, b)
		}
	}
	return Config{
		Brokers:         list,
		ClientID:        "ria",
		Acks:            AcksAll,
		Retries:         3,
		Linger:          5 * time.Millisecond,
		DeliveryTimeout: 30 * time.Second,
		CloseTimeout:    30 * time.Second,
	}
}

func (c Config) options() ([]kgo.Opt, error) {
	if len(c.Brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(c.Brokers...),
		kgo.RecordRetries(c.Retries),
		kgo.ProducerLinger(c.Linger),
		kgo.AllowAutoTopicCreation(),
	}
	switch c.Acks {
	case AcksNone:
		opts = append(opts, kgo.RequiredAcks(kgo.NoAck()), kgo.DisableIdempotentWrite())
	case AcksLeader:
		opts = append(opts, kgo.RequiredAcks(kgo.LeaderAck()), kgo.DisableIdempotentWrite())
	default:
		opts = append(opts, kgo.RequiredAcks(kgo.AllISRAcks()))
	}
	if c.ClientID != "" {
		opts = append(opts, kgo.ClientID(c.ClientID))
	}
	if c.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(c.DeliveryTimeout))
	}
	return opts, nil
}
