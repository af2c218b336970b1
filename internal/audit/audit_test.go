package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/FedassaMeg/haven-sub012/internal/export"
	"github.com/FedassaMeg/haven-sub012/internal/policy"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

type failingStore struct{}

func (failingStore) Append(context.Context, Event) error { return errors.New("disk full") }
func (failingStore) ListByResource(context.Context, string, string) ([]Event, error) {
	return nil, nil
}
func (failingStore) ListByActor(context.Context, domain.ActorID) ([]Event, error) { return nil, nil }
func (failingStore) ListByDateRange(context.Context, time.Time, time.Time) ([]Event, error) {
	return nil, nil
}
func (failingStore) ListByRule(context.Context, string) ([]Event, error) { return nil, nil }
func (failingStore) ListHighRisk(context.Context, time.Time, time.Time) ([]Event, error) {
	return nil, nil
}

type recordingSink struct {
	published []Event
	fail      error
}

func (r *recordingSink) Publish(_ context.Context, event Event) error {
	if r.fail != nil {
		return r.fail
	}
	r.published = append(r.published, event)
	return nil
}

type PublisherSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemoryStore
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryStore()
}

func (s *PublisherSuite) TestEmitFillsDefaults() {
	publisher := NewPublisher(s.store, slog.Default())
	actor := domain.NewActorID()

	err := publisher.Emit(s.ctx, Event{Kind: KindDVHighRiskEvent, ActorID: actor})
	s.Require().NoError(err)

	events, err := s.store.ListByActor(s.ctx, actor)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.NotZero(events[0].ID)
	s.False(events[0].Timestamp.IsZero())
	s.Equal(SeverityCritical, events[0].Severity)
}

func (s *PublisherSuite) TestEmitFailsClosed() {
	publisher := NewPublisher(failingStore{}, slog.Default())
	err := publisher.Emit(s.ctx, Event{Kind: KindExportGenerated})
	s.Error(err)
}

func (s *PublisherSuite) TestSinkFailureDoesNotFailEmit() {
	sink := &recordingSink{fail: errors.New("broker down")}
	publisher := NewPublisher(s.store, slog.Default(), sink)

	err := publisher.Emit(s.ctx, Event{Kind: KindDataAccess, ActorID: domain.NewActorID()})
	s.NoError(err)
}

func (s *PublisherSuite) TestSinkReceivesDurableEvents() {
	sink := &recordingSink{}
	publisher := NewPublisher(s.store, slog.Default(), sink)

	s.Require().NoError(publisher.Emit(s.ctx, Event{Kind: KindNoteSealed, ActorID: domain.NewActorID()}))
	s.Require().Len(sink.published, 1)
	s.Equal(KindNoteSealed, sink.published[0].Kind)
}

type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemoryStore
	actor domain.ActorID
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryStore()
	s.actor = domain.NewActorID()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{Kind: KindDataAccess, ActorID: s.actor, ResourceType: "client", ResourceID: "c1", Timestamp: base},
		{Kind: KindUnauthorizedAccess, ActorID: s.actor, ResourceType: "client", ResourceID: "c1", Timestamp: base.Add(time.Hour)},
		{Kind: KindExportGenerated, ActorID: domain.NewActorID(), ResourceType: "export", ResourceID: "h1", Rule: "EXPORT_HASH_POLICY", Timestamp: base.Add(2 * time.Hour)},
		{Kind: KindNoteSealed, ActorID: domain.NewActorID(), ResourceType: "restricted_note", ResourceID: "n1", Timestamp: base.Add(3 * time.Hour)},
	}
	for _, e := range events {
		s.Require().NoError(s.store.Append(s.ctx, e))
	}
}

func (s *StoreSuite) TestListByResource() {
	events, err := s.store.ListByResource(s.ctx, "client", "c1")
	s.Require().NoError(err)
	s.Len(events, 2)
	s.True(events[0].Timestamp.After(events[1].Timestamp))
}

func (s *StoreSuite) TestListByActor() {
	events, err := s.store.ListByActor(s.ctx, s.actor)
	s.Require().NoError(err)
	s.Len(events, 2)
}

func (s *StoreSuite) TestListByDateRange() {
	from := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	to := time.Date(2026, 8, 1, 14, 30, 0, 0, time.UTC)
	events, err := s.store.ListByDateRange(s.ctx, from, to)
	s.Require().NoError(err)
	s.Len(events, 2)
}

func (s *StoreSuite) TestListByRule() {
	events, err := s.store.ListByRule(s.ctx, "EXPORT_HASH_POLICY")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(KindExportGenerated, events[0].Kind)
}

func (s *StoreSuite) TestListHighRisk() {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	events, err := s.store.ListHighRisk(s.ctx, from, to)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	for _, e := range events {
		s.True(e.Kind.IsHighRisk())
	}
}

type RecorderSuite struct {
	suite.Suite
	ctx      context.Context
	store    *InMemoryStore
	recorder *Recorder
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryStore()
	s.recorder = NewRecorder(NewPublisher(s.store, slog.Default()))
}

func (s *RecorderSuite) TestExportGenerated() {
	actor := domain.NewActorID()
	err := s.recorder.ExportGenerated(s.ctx, export.ExportAudit{
		Actor:       actor,
		Destination: policy.ExportHMIS,
		RecordCount: 42,
		ContentHash: "abc123",
	})
	s.Require().NoError(err)

	events, err := s.store.ListByActor(s.ctx, actor)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(KindExportGenerated, events[0].Kind)
	s.Equal("42", events[0].Details["recordCount"])
	s.Equal("HMIS", events[0].Details["destination"])
}

func (s *RecorderSuite) TestDetailsNeverCarryRawValues() {
	s.Equal("len:11", LengthSummary("123-45-6789"))
}

func (s *RecorderSuite) TestDataCorrectionLinksSupersededRecord() {
	actor := domain.NewActorID()
	originalID := domain.NewNoteID().String()
	correctionID := domain.NewNoteID().String()

	err := s.recorder.DataCorrection(s.ctx, actor, "case_record", originalID, correctionID, "wrong enrollment date")
	s.Require().NoError(err)

	events, err := s.store.ListByResource(s.ctx, "case_record", originalID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(KindDataCorrection, events[0].Kind)
	s.Equal(SeverityWarning, events[0].Severity)
	s.Equal(correctionID, events[0].Details["correctionId"])
	s.Equal("wrong enrollment date", events[0].Reason)
}

func (s *RecorderSuite) TestSafetyProtocolActivated() {
	actor := domain.NewActorID()
	clientID := domain.NewClientID()

	err := s.recorder.SafetyProtocolActivated(s.ctx, actor, clientID, "address_lockdown")
	s.Require().NoError(err)

	events, err := s.store.ListByResource(s.ctx, "client", clientID.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(KindSafetyProtocolActivated, events[0].Kind)
	s.Equal(SeverityHigh, events[0].Severity)
	s.Equal("address_lockdown", events[0].Details["protocol"])
	s.True(events[0].Kind.IsHighRisk())
}

func (s *RecorderSuite) TestNoteSealAndUnseal() {
	noteID := domain.NewNoteID()
	actor := domain.NewActorID()

	s.Require().NoError(s.recorder.NoteSealed(s.ctx, noteID, actor, "pending custody hearing"))
	s.Require().NoError(s.recorder.NoteUnsealed(s.ctx, noteID, actor, "hearing concluded"))

	events, err := s.store.ListByResource(s.ctx, "restricted_note", noteID.String())
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(KindNoteUnsealed, events[0].Kind)
	s.Equal(KindNoteSealed, events[1].Kind)
}
