//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/FedassaMeg/haven-sub012/internal/audit"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	"github.com/FedassaMeg/haven-sub012/pkg/testutil/containers"
)

type KafkaSinkIntegrationSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
	sink     *audit.KafkaSink
	ctx      context.Context
}

func TestKafkaSinkIntegrationSuite(t *testing.T) {
	suite.Run(t, new(KafkaSinkIntegrationSuite))
}

func (s *KafkaSinkIntegrationSuite) SetupSuite() {
	s.redpanda = containers.NewRedpandaContainer(s.T())
	s.ctx = context.Background()

	sink, err := audit.NewKafkaSink(s.redpanda.Brokers, audit.DefaultTopic)
	s.Require().NoError(err)
	s.sink = sink

	s.Require().NoError(s.sink.EnsureTopic(s.ctx, 1, 1))
	// EnsureTopic is called on every startup; a second call must be a no-op.
	s.Require().NoError(s.sink.EnsureTopic(s.ctx, 1, 1))
}

func (s *KafkaSinkIntegrationSuite) TearDownSuite() {
	s.sink.Close()
}

func (s *KafkaSinkIntegrationSuite) TestPublishRoundTrip() {
	actor := domain.NewActorID()
	event := audit.Event{
		ID:           uuid.New(),
		Timestamp:    time.Now().UTC().Truncate(time.Millisecond),
		Kind:         audit.KindExportGenerated,
		Severity:     audit.KindExportGenerated.Severity(),
		ActorID:      actor,
		ResourceType: "export_batch",
		ResourceID:   "HMIS",
		Details:      map[string]string{"recordCount": "12"},
	}
	s.Require().NoError(s.sink.Publish(s.ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(audit.DefaultTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())

	records := fetches.Records()
	s.Require().NotEmpty(records)

	last := records[len(records)-1]
	s.Equal(string(audit.KindExportGenerated), string(last.Key))

	var got audit.Event
	s.Require().NoError(json.Unmarshal(last.Value, &got))
	s.Equal(event.ID, got.ID)
	s.Equal(event.Kind, got.Kind)
	s.Equal(event.ActorID, got.ActorID)
	s.Equal(event.Details, got.Details)
}
