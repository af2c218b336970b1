// Package redact rewrites field values to the disclosure level resolved by
// policy. The engine never mutates its input; callers hand it a copy of the
// record and receive transformed values back.
package redact

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FedassaMeg/haven-sub012/internal/hasher"
	"github.com/FedassaMeg/haven-sub012/internal/policy"
)

const (
	MaskSSN     = "***-**-****"
	MaskPhone   = "***-***-****"
	MaskEmail   = "***@***.***"
	MaskAddress = "[ADDRESS REDACTED]"
	MaskName    = "[NAME REDACTED]"
)

type fieldKind int

const (
	kindGeneric fieldKind = iota
	kindSSN
	kindPhone
	kindEmail
	kindAddress
	kindName
)

// kindOf recognizes the field family from its label. Labels are the same
// camel-case names the policy resolver classifies, so the two stay in
// agreement about what a field is.
func kindOf(fieldLabel string) fieldKind {
	label := strings.ToLower(fieldLabel)
	switch {
	case strings.Contains(label, "ssn") || strings.Contains(label, "socialsecurity"):
		return kindSSN
	case strings.Contains(label, "phone") || strings.Contains(label, "mobile") || strings.Contains(label, "telephone"):
		return kindPhone
	case strings.Contains(label, "email"):
		return kindEmail
	case strings.Contains(label, "address") || strings.Contains(label, "street") || strings.Contains(label, "zip"):
		return kindAddress
	case strings.Contains(label, "name"):
		return kindName
	default:
		return kindGeneric
	}
}

// Engine applies redaction levels to field values. The pseudonymizer backs
// HASH_ONLY so a given identifier redacts to the same token across records
// within a deployment.
type Engine struct {
	pseudo *hasher.Pseudonymizer
}

func NewEngine(pseudo *hasher.Pseudonymizer) *Engine {
	return &Engine{pseudo: pseudo}
}

// Apply transforms value to the given redaction level. Non-string values
// pass through unchanged at every level except FULL_REDACTION, which zeroes
// them by type.
func (e *Engine) Apply(fieldLabel string, value any, level policy.RedactionLevel) any {
	switch level {
	case policy.NoRedaction:
		return value
	case policy.Minimal:
		return e.minimal(fieldLabel, value)
	case policy.Partial:
		return e.partial(fieldLabel, value)
	case policy.HashOnly:
		return e.hashOnly(value)
	case policy.FullRedaction:
		return zeroed(value)
	default:
		return zeroed(value)
	}
}

func (e *Engine) minimal(fieldLabel string, value any) any {
	str, ok := value.(string)
	if !ok {
		return value
	}
	if kindOf(fieldLabel) == kindSSN {
		return "***-**-" + lastN(str, 4)
	}
	return str
}

func (e *Engine) partial(fieldLabel string, value any) any {
	str, ok := value.(string)
	if !ok {
		return value
	}
	switch kindOf(fieldLabel) {
	case kindSSN:
		return MaskSSN
	case kindPhone:
		return MaskPhone
	case kindEmail:
		return MaskEmail
	case kindAddress:
		return MaskAddress
	case kindName:
		return MaskName
	default:
		return genericMask(str)
	}
}

func (e *Engine) hashOnly(value any) any {
	str, ok := value.(string)
	if !ok || str == "" {
		return zeroed(value)
	}
	return e.pseudo.Pseudonym(str)
}

// genericMask hides a value of unknown shape: short values vanish
// entirely, longer ones keep their final character as a correlation hint.
func genericMask(str string) string {
	runes := []rune(str)
	if len(runes) <= 3 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-1) + string(runes[len(runes)-1])
}

func lastN(str string, n int) string {
	runes := []rune(str)
	digits := make([]rune, 0, len(runes))
	for _, r := range runes {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < n {
		return string(digits)
	}
	return string(digits[len(digits)-n:])
}

// zeroed removes a value by type so downstream serialization shows an
// absent field rather than a placeholder.
func zeroed(value any) any {
	switch value.(type) {
	case string:
		return ""
	case int:
		return 0
	case int32:
		return int32(0)
	case int64:
		return int64(0)
	case float32:
		return float32(0)
	case float64:
		return float64(0)
	case time.Time, *time.Time:
		return nil
	case uuid.UUID, *uuid.UUID:
		return nil
	default:
		return nil
	}
}
