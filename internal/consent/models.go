// Package consent models the boundary with the external consent-management
// component. Records arrive from that component; this package only decides
// whether a consent currently authorizes an operation.
package consent

import (
	"time"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
)

// Status is the lifecycle state reported by the consent component.
type Status string

const (
	StatusGranted Status = "GRANTED"
	StatusRevoked Status = "REVOKED"
	StatusExpired Status = "EXPIRED"
)

// Record captures a client's consent decision as issued by the consent
// component. VAWAProtected marks consents whose subject matter falls under
// Violence Against Women Act confidentiality; the flag must propagate into
// every packet built from the consent.
type Record struct {
	ID            domain.ConsentID
	ClientID      domain.ClientID
	Status        Status
	Version       int64
	GrantedAt     time.Time
	ExpiresAt     time.Time
	VAWAProtected bool
}

// IsActive returns true when the consent may still authorize sharing.
func (r Record) IsActive(now time.Time) bool {
	if r.Status != StatusGranted {
		return false
	}
	return r.ExpiresAt.IsZero() || now.Before(r.ExpiresAt)
}

// EnsureActive enforces that the consent authorizes an operation now.
func (r Record) EnsureActive(now time.Time) error {
	if r.Status == StatusRevoked {
		return dErrors.New(dErrors.CodeUnauthorized, "consent has been revoked")
	}
	if !r.IsActive(now) {
		return dErrors.New(dErrors.CodeUnauthorized, "consent is not active")
	}
	return nil
}
