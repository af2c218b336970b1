package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

// PostgresStore writes the trail to an append-only table. No method issues
// UPDATE or DELETE; retention is an operational concern handled outside
// the application.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const eventColumns = `
	id, occurred_at, kind, severity, actor_id, tenant_id,
	resource_type, resource_id, rule, decision, reason, details,
	ip_address, session_id, user_agent
`

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	query := `
		INSERT INTO audit_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		string(event.Kind),
		string(event.Severity),
		nullUUID(uuid.UUID(event.ActorID)),
		nullUUID(uuid.UUID(event.TenantID)),
		event.ResourceType,
		event.ResourceID,
		event.Rule,
		event.Decision,
		event.Reason,
		details,
		event.IPAddress,
		event.SessionID,
		event.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByResource(ctx context.Context, resourceType, resourceID string) ([]Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY occurred_at DESC
	`
	return s.query(ctx, query, resourceType, resourceID)
}

func (s *PostgresStore) ListByActor(ctx context.Context, actor domain.ActorID) ([]Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE actor_id = $1
		ORDER BY occurred_at DESC
	`
	return s.query(ctx, query, uuid.UUID(actor))
}

func (s *PostgresStore) ListByDateRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE occurred_at >= $1 AND occurred_at < $2
		ORDER BY occurred_at DESC
	`
	return s.query(ctx, query, from, to)
}

func (s *PostgresStore) ListByRule(ctx context.Context, rule string) ([]Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE rule = $1
		ORDER BY occurred_at DESC
	`
	return s.query(ctx, query, rule)
}

func (s *PostgresStore) ListHighRisk(ctx context.Context, from, to time.Time) ([]Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE kind = ANY($1) AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at DESC
	`
	kinds := make([]string, 0, len(highRiskKinds))
	for k := range highRiskKinds {
		kinds = append(kinds, string(k))
	}
	return s.query(ctx, query, pq.Array(kinds), from, to)
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			event             Event
			kind, severity    string
			actorID, tenantID uuid.NullUUID
			detailsRaw        []byte
		)
		err := rows.Scan(&event.ID, &event.Timestamp, &kind, &severity,
			&actorID, &tenantID, &event.ResourceType, &event.ResourceID,
			&event.Rule, &event.Decision, &event.Reason, &detailsRaw,
			&event.IPAddress, &event.SessionID, &event.UserAgent)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Kind = Kind(kind)
		event.Severity = Severity(severity)
		if actorID.Valid {
			event.ActorID = domain.ActorID(actorID.UUID)
		}
		if tenantID.Valid {
			event.TenantID = domain.TenantID(tenantID.UUID)
		}
		if len(detailsRaw) > 0 {
			if err := json.Unmarshal(detailsRaw, &event.Details); err != nil {
				return nil, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}

func nullUUID(u uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: u, Valid: u != uuid.Nil}
}
