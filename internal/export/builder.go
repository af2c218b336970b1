package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/FedassaMeg/haven-sub012/internal/policy"
	"github.com/FedassaMeg/haven-sub012/internal/redact"
)

// DecisionSource resolves the redaction level for one field under one
// access context. Satisfied by policy.CachedResolver.
type DecisionSource interface {
	Resolve(ctx context.Context, fieldLabel string, access policy.AccessContext, export policy.ExportType) (policy.RedactionLevel, error)
}

// ProjectionBuilder turns a client record into the destination-shaped map
// an export file row is serialized from.
type ProjectionBuilder struct {
	decisions DecisionSource
	engine    *redact.Engine
}

func NewProjectionBuilder(decisions DecisionSource, engine *redact.Engine) *ProjectionBuilder {
	return &ProjectionBuilder{decisions: decisions, engine: engine}
}

// Project walks the static field table and shapes each value for the
// destination. Fields the policy fully redacts are omitted rather than
// emitted as placeholders, so a receiver cannot distinguish "redacted"
// from "absent".
func (b *ProjectionBuilder) Project(ctx context.Context, record ClientRecord, access policy.AccessContext, export policy.ExportType) (map[string]any, error) {
	out := make(map[string]any, len(clientFields))
	for _, field := range clientFields {
		level, err := b.decisions.Resolve(ctx, field.Label, access, export)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", field.Label, err)
		}
		value, include := b.shape(record, field, level, export)
		if include {
			out[field.Label] = value
		}
	}
	return out, nil
}

func (b *ProjectionBuilder) shape(record ClientRecord, field FieldDescriptor, level policy.RedactionLevel, export policy.ExportType) (any, bool) {
	raw := field.Value(record)

	switch export {
	case policy.ExportPartnerSharing:
		// Partner files carry only what the partner is cleared to see in
		// full. No masked placeholders leave the building.
		if level != policy.NoRedaction {
			return nil, false
		}
		return raw, true

	case policy.ExportResearch:
		if generalized, ok := researchGeneralize(field.Label, record); ok {
			return generalized, true
		}
		if level == policy.FullRedaction {
			return nil, false
		}
		return b.engine.Apply(field.Label, raw, level), true

	case policy.ExportCourt:
		if isNameField(field.Label) && level != policy.NoRedaction {
			str, _ := raw.(string)
			return initial(str), true
		}
		if level == policy.FullRedaction {
			return nil, false
		}
		return b.engine.Apply(field.Label, raw, level), true

	default:
		if level == policy.FullRedaction {
			return nil, false
		}
		return b.engine.Apply(field.Label, raw, level), true
	}
}

// researchGeneralize replaces re-identifying values with the coarse bins
// research datasets carry: birth dates become age ranges, zips keep only
// their regional prefix.
func researchGeneralize(fieldLabel string, record ClientRecord) (any, bool) {
	switch fieldLabel {
	case "dateOfBirth":
		if record.DateOfBirth.IsZero() {
			return nil, false
		}
		return ageRange(record.DateOfBirth, time.Now()), true
	case "zipCode":
		if len(record.ZipCode) < 3 {
			return record.ZipCode, true
		}
		return record.ZipCode[:3], true
	default:
		return nil, false
	}
}

func ageRange(dob, now time.Time) string {
	years := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		years--
	}
	switch {
	case years < 18:
		return "0-17"
	case years < 25:
		return "18-24"
	case years < 35:
		return "25-34"
	case years < 45:
		return "35-44"
	case years < 55:
		return "45-54"
	case years < 65:
		return "55-64"
	default:
		return "65+"
	}
}

func isNameField(fieldLabel string) bool {
	lower := strings.ToLower(fieldLabel)
	return strings.Contains(lower, "firstname") || strings.Contains(lower, "lastname") || strings.Contains(lower, "fullname")
}

// initial reduces a name to its court-filing form, e.g. "Jane" to "J.".
func initial(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return strings.ToUpper(string([]rune(trimmed)[0])) + "."
}
