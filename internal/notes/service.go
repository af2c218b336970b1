package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/FedassaMeg/haven-sub012/internal/policy"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
	"github.com/FedassaMeg/haven-sub012/pkg/platform/sentinel"
)

// AuditRecorder appends note lifecycle and access events. Seal and unseal
// are fail-closed: the transition is not saved unless its event landed.
type AuditRecorder interface {
	NoteSealed(ctx context.Context, noteID domain.NoteID, actor domain.ActorID, reason string) error
	NoteUnsealed(ctx context.Context, noteID domain.NoteID, actor domain.ActorID, reason string) error
	DataAccess(ctx context.Context, actor domain.ActorID, resourceType, resourceID string, details map[string]string) error
	UnauthorizedAccess(ctx context.Context, actor domain.ActorID, resourceType, resourceID, reason string) error
}

// Service coordinates note persistence, visibility, and the seal state
// machine.
type Service struct {
	store  Store
	audit  AuditRecorder
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, audit AuditRecorder, logger *slog.Logger) *Service {
	return &Service{store: store, audit: audit, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, note RestrictedNote) (RestrictedNote, error) {
	if err := s.store.Save(ctx, note); err != nil {
		return RestrictedNote{}, fmt.Errorf("save note: %w", err)
	}
	return note, nil
}

// Read returns the note if the access context may see it. Every outcome is
// audited; a denied read is recorded as unauthorized access before the
// caller learns anything, including whether the note exists.
func (s *Service) Read(ctx context.Context, noteID domain.NoteID, access policy.AccessContext) (RestrictedNote, error) {
	note, err := s.load(ctx, noteID)
	if err != nil {
		return RestrictedNote{}, err
	}

	if !note.IsVisibleTo(access.ActorID, access.Roles, s.now()) {
		if err := s.audit.UnauthorizedAccess(ctx, access.ActorID, "restricted_note", noteID.String(), "note not visible to actor"); err != nil {
			return RestrictedNote{}, fmt.Errorf("record unauthorized access: %w", err)
		}
		return RestrictedNote{}, dErrors.New(dErrors.CodeUnauthorized, "note is not visible to this user")
	}

	if err := s.audit.DataAccess(ctx, access.ActorID, "restricted_note", noteID.String(), map[string]string{
		"noteType":      string(note.Type),
		"scope":         string(note.Scope),
		"contentLength": fmt.Sprintf("%d", len(note.Content)),
	}); err != nil {
		return RestrictedNote{}, fmt.Errorf("record note access: %w", err)
	}
	return note, nil
}

// Seal places a hold on the note. The audit event is appended before the
// sealed note is saved; if either step fails the note stays unsealed.
func (s *Service) Seal(ctx context.Context, noteID domain.NoteID, access policy.AccessContext, reason, legalBasis string, temporary bool, expiresAt time.Time) (RestrictedNote, error) {
	note, err := s.load(ctx, noteID)
	if err != nil {
		return RestrictedNote{}, err
	}
	if err := note.ApplySeal(access.ActorID, reason, legalBasis, temporary, expiresAt); err != nil {
		return RestrictedNote{}, err
	}
	if err := s.audit.NoteSealed(ctx, noteID, access.ActorID, reason); err != nil {
		return RestrictedNote{}, fmt.Errorf("record note seal: %w", err)
	}
	if err := s.store.Save(ctx, note); err != nil {
		return RestrictedNote{}, fmt.Errorf("save sealed note: %w", err)
	}
	s.logger.InfoContext(ctx, "note sealed",
		"note_id", noteID, "sealed_by", access.ActorID, "temporary", temporary)
	return note, nil
}

// Unseal lifts a hold, with the same fail-closed audit ordering as Seal.
func (s *Service) Unseal(ctx context.Context, noteID domain.NoteID, access policy.AccessContext, reason string) (RestrictedNote, error) {
	note, err := s.load(ctx, noteID)
	if err != nil {
		return RestrictedNote{}, err
	}
	if err := note.ApplyUnseal(); err != nil {
		return RestrictedNote{}, err
	}
	if err := s.audit.NoteUnsealed(ctx, noteID, access.ActorID, reason); err != nil {
		return RestrictedNote{}, fmt.Errorf("record note unseal: %w", err)
	}
	if err := s.store.Save(ctx, note); err != nil {
		return RestrictedNote{}, fmt.Errorf("save unsealed note: %w", err)
	}
	s.logger.InfoContext(ctx, "note unsealed",
		"note_id", noteID, "unsealed_by", access.ActorID)
	return note, nil
}

// load fetches the note and settles any lapsed temporary seal so state in
// the store converges with what readers observe.
func (s *Service) load(ctx context.Context, noteID domain.NoteID) (RestrictedNote, error) {
	note, err := s.store.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return RestrictedNote{}, dErrors.New(dErrors.CodeNotFound, "note not found")
		}
		return RestrictedNote{}, fmt.Errorf("load note: %w", err)
	}
	if note.Sealed && note.Seal.expired(s.now()) {
		note.Sealed = false
		note.Seal = Seal{}
		if err := s.store.Save(ctx, note); err != nil {
			return RestrictedNote{}, fmt.Errorf("settle expired seal: %w", err)
		}
	}
	return note, nil
}
