package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

// DefaultChangeTopic carries role, consent, and policy change notifications
// from the identity and consent components.
const DefaultChangeTopic = "haven.policy.changes"

type changeMessage struct {
	Kind    string `json:"kind"`
	ActorID string `json:"actorId"`
}

// decodeChangeEvent parses a change notification. Policy updates carry no
// actor; everything else must name one.
func decodeChangeEvent(payload []byte) (ChangeEvent, error) {
	var msg changeMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return ChangeEvent{}, fmt.Errorf("unmarshal change event: %w", err)
	}
	kind := ChangeKind(msg.Kind)
	switch kind {
	case ChangePolicyUpdate:
		return ChangeEvent{Kind: kind}, nil
	case ChangeRoleAssignment, ChangeConsentRevocation:
		actor, err := domain.ParseActorID(msg.ActorID)
		if err != nil {
			return ChangeEvent{}, fmt.Errorf("change event actor: %w", err)
		}
		return ChangeEvent{Kind: kind, Actor: actor}, nil
	default:
		return ChangeEvent{}, fmt.Errorf("unknown change kind %q", msg.Kind)
	}
}

// ChangeConsumer reads change notifications from Kafka and forwards them to
// the invalidator's inbox. Malformed messages are logged and skipped; a
// stuck eviction must never stall the partition.
type ChangeConsumer struct {
	client *kgo.Client
	out    chan<- ChangeEvent
	logger *slog.Logger
}

func NewChangeConsumer(brokers []string, topic string, out chan<- ChangeEvent, logger *slog.Logger) (*ChangeConsumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumerGroup("haven-policy-invalidation"),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &ChangeConsumer{client: client, out: out, logger: logger}, nil
}

func (c *ChangeConsumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, fetchErr := range errs {
				c.logger.ErrorContext(ctx, "change topic fetch failed",
					"topic", fetchErr.Topic, "error", fetchErr.Err)
			}
			continue
		}
		fetches.EachRecord(func(record *kgo.Record) {
			event, err := decodeChangeEvent(record.Value)
			if err != nil {
				c.logger.WarnContext(ctx, "skipping malformed change event",
					"offset", record.Offset, "error", err)
				return
			}
			select {
			case c.out <- event:
			case <-ctx.Done():
			}
		})
	}
}

func (c *ChangeConsumer) Close() {
	c.client.Close()
}
