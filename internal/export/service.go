package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/FedassaMeg/haven-sub012/internal/policy"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

// ExportAudit is what the compliance trail records about a generated
// export: who, where to, how many records, and a hash of the produced
// content so the file can later be matched to its audit entry.
type ExportAudit struct {
	Actor       domain.ActorID
	Destination policy.ExportType
	RecordCount int
	ContentHash string
	GeneratedAt time.Time
}

// AuditRecorder durably appends the export event. Implemented by the
// audit trail's fail-closed publisher.
type AuditRecorder interface {
	ExportGenerated(ctx context.Context, event ExportAudit) error
}

const defaultWorkers = 8

// Service produces export batches. Pseudonymization is CPU-bound, so
// records are projected on a bounded worker pool; each worker writes only
// its own slot in the result slice.
type Service struct {
	builder *ProjectionBuilder
	audit   AuditRecorder
	logger  *slog.Logger
	workers int64
}

func NewService(builder *ProjectionBuilder, audit AuditRecorder, logger *slog.Logger) *Service {
	return &Service{builder: builder, audit: audit, logger: logger, workers: defaultWorkers}
}

// BuildBatch projects every record for the destination and appends the
// export event to the audit trail. The audit append is the gate: if it
// fails, no results are returned and the caller must treat the export as
// not having happened.
func (s *Service) BuildBatch(ctx context.Context, records []ClientRecord, access policy.AccessContext, destination policy.ExportType) ([]map[string]any, error) {
	ctx, span := otel.Tracer("export").Start(ctx, "export.BuildBatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("export.destination", string(destination)),
		attribute.Int("export.records", len(records)),
	)

	started := time.Now()
	results := make([]map[string]any, len(records))

	sem := semaphore.NewWeighted(s.workers)
	g, gctx := errgroup.WithContext(ctx)
	var acquireErr error
	for i, record := range records {
		if acquireErr = sem.Acquire(gctx, 1); acquireErr != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			projection, err := s.builder.Project(gctx, record, access, destination)
			if err != nil {
				return fmt.Errorf("project record %s: %w", record.ClientID, err)
			}
			results[i] = projection
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if acquireErr != nil {
		return nil, fmt.Errorf("batch interrupted: %w", acquireErr)
	}

	contentHash, err := hashContent(results)
	if err != nil {
		return nil, err
	}

	event := ExportAudit{
		Actor:       access.ActorID,
		Destination: destination,
		RecordCount: len(results),
		ContentHash: contentHash,
		GeneratedAt: started,
	}
	if err := s.audit.ExportGenerated(ctx, event); err != nil {
		auditFailures.Inc()
		s.logger.ErrorContext(ctx, "export aborted: audit append failed",
			"destination", destination, "records", len(results), "error", err)
		return nil, fmt.Errorf("record export audit: %w", err)
	}

	batchesTotal.WithLabelValues(string(destination)).Inc()
	batchDuration.WithLabelValues(string(destination)).Observe(time.Since(started).Seconds())
	s.logger.InfoContext(ctx, "export batch generated",
		"destination", destination, "records", len(results), "content_hash", contentHash)
	return results, nil
}

// hashContent digests the serialized batch. JSON map keys marshal in
// sorted order, so the hash is stable for identical content.
func hashContent(results []map[string]any) (string, error) {
	raw, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("serialize batch for hashing: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
