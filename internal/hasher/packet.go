package hasher

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/FedassaMeg/haven-sub012/internal/consent"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
)

// ShareScope names the downstream audience a packet is built for.
type ShareScope string

const (
	ScopeCoordinatedEntry      ShareScope = "COC_COORDINATED_ENTRY"
	ScopeVictimServiceProvider ShareScope = "VICTIM_SERVICE_PROVIDER"
	ScopeHousingPlacement      ShareScope = "HOUSING_PLACEMENT"
	ScopeResearch              ShareScope = "RESEARCH"
)

// DefaultEncryptionScheme is recorded in packet metadata so receivers know
// how any accompanying encrypted payloads were produced.
const DefaultEncryptionScheme = "AES-256-GCM"

// Packet is a consent-aware coordinated-entry record. The client appears
// only as a salted pseudonym; the checksum binds every field so a receiver
// can detect modification in transit or at rest.
type Packet struct {
	ClientHash   string
	Salt         string
	ConsentID    domain.ConsentID
	EnrollmentID domain.EnrollmentID
	Scopes       []ShareScope
	Metadata     map[string]string
	Tags         []string
	Algorithm    Algorithm
	BuiltAt      time.Time
	Checksum     string
}

// Builder constructs packets under a fixed algorithm. Construction refuses
// to proceed without an active consent; there is no unconsented path.
type Builder struct {
	algorithm Algorithm
	now       func() time.Time
}

func NewBuilder(algorithm Algorithm) *Builder {
	return &Builder{algorithm: algorithm, now: time.Now}
}

// Build pseudonymizes rawIdentifier and assembles the packet. Scopes
// default to coordinated entry when none are given. Metadata passed in is
// copied, then enriched with consent provenance before the checksum is
// computed.
func (b *Builder) Build(rawIdentifier string, record consent.Record, enrollmentID domain.EnrollmentID, scopes []ShareScope, metadata map[string]string) (Packet, error) {
	now := b.now()
	if err := record.EnsureActive(now); err != nil {
		return Packet{}, err
	}
	if rawIdentifier == "" {
		return Packet{}, dErrors.New(dErrors.CodeInvalidInput, "raw identifier is required")
	}

	if len(scopes) == 0 {
		scopes = []ShareScope{ScopeCoordinatedEntry}
	}

	salt, err := NewSalt()
	if err != nil {
		return Packet{}, err
	}

	var clientHash string
	switch b.algorithm {
	case AlgorithmSHA256Salt:
		clientHash = SHA256Chain(rawIdentifier, salt, SHAIterations)
	case AlgorithmBcrypt:
		clientHash, err = BcryptHash(rawIdentifier)
		if err != nil {
			return Packet{}, err
		}
	default:
		return Packet{}, dErrors.Newf(dErrors.CodeInvalidInput, "unsupported hash algorithm %q", b.algorithm)
	}

	enriched := make(map[string]string, len(metadata)+6)
	for k, v := range metadata {
		enriched[k] = v
	}
	enriched["consentStatus"] = string(record.Status)
	enriched["consentVersion"] = strconv.FormatInt(record.Version, 10)
	enriched["hashAlgorithm"] = string(b.algorithm)
	enriched["encryptionScheme"] = DefaultEncryptionScheme
	if !record.ExpiresAt.IsZero() {
		enriched["consentExpiresAt"] = record.ExpiresAt.UTC().Format(time.RFC3339)
	}
	enriched["vawaProtected"] = strconv.FormatBool(record.VAWAProtected)

	tags := make([]string, 0, 2+len(scopes))
	tags = append(tags, "consent:"+record.ID.String())
	tags = append(tags, "status:"+string(record.Status))
	for _, scope := range scopes {
		tags = append(tags, "scope:"+string(scope))
	}

	packet := Packet{
		ClientHash:   clientHash,
		Salt:         base64.StdEncoding.EncodeToString(salt),
		ConsentID:    record.ID,
		EnrollmentID: enrollmentID,
		Scopes:       scopes,
		Metadata:     enriched,
		Tags:         tags,
		Algorithm:    b.algorithm,
		BuiltAt:      now,
	}
	packet.Checksum = ComputeChecksum(packet)
	return packet, nil
}

// ComputeChecksum digests the packet's fields in a fixed order: client
// hash, salt, consent id, enrollment id, scopes sorted, metadata entries
// sorted by key, then tags as stored. Receivers recompute over the same
// order, so any reordering-sensitive field is canonicalized first.
func ComputeChecksum(p Packet) string {
	digest := sha256.New()
	fmt.Fprint(digest, p.ClientHash)
	fmt.Fprint(digest, p.Salt)
	fmt.Fprint(digest, p.ConsentID.String())
	fmt.Fprint(digest, p.EnrollmentID.String())

	scopes := make([]string, len(p.Scopes))
	for i, scope := range p.Scopes {
		scopes[i] = string(scope)
	}
	sort.Strings(scopes)
	for _, scope := range scopes {
		fmt.Fprint(digest, scope)
	}

	keys := make([]string, 0, len(p.Metadata))
	for k := range p.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprint(digest, k)
		fmt.Fprint(digest, p.Metadata[k])
	}

	for _, tag := range p.Tags {
		fmt.Fprint(digest, tag)
	}
	return hex.EncodeToString(digest.Sum(nil))
}

// VerifyChecksum recomputes the checksum and rejects a packet whose
// contents no longer match it.
func VerifyChecksum(p Packet) error {
	if ComputeChecksum(p) != p.Checksum {
		return dErrors.New(dErrors.CodeIntegrity, "packet checksum mismatch")
	}
	return nil
}
