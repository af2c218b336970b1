// Package hasher produces stable pseudonymous client identifiers and
// tamper-evident packet checksums for cross-agency data exchange.
package hasher

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Algorithm selects the pseudonymization scheme for a packet. The choice
// is explicit and fixed per packet: there is no fallback between schemes.
type Algorithm string

const (
	// AlgorithmSHA256Salt chains a random salt through iterated SHA-256.
	AlgorithmSHA256Salt Algorithm = "SHA256_SALT"
	// AlgorithmBcrypt uses an adaptive-cost hash with a fixed cost factor.
	AlgorithmBcrypt Algorithm = "BCRYPT"
)

const (
	SaltBytes     = 16
	SHAIterations = 100_000
	BcryptCost    = 12
)

// NewSalt draws a fresh salt from the OS entropy source. Salts are local
// to one packet and never reused or derived from shared state.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// SHA256Chain computes the iterated salted digest: the running hash starts
// as salt‖input and each round hashes salt‖previous. Deterministic per
// (raw, salt, iterations), so the same client always maps to the same
// pseudonym within a packet's salt.
func SHA256Chain(raw string, salt []byte, iterations int) string {
	hash := make([]byte, 0, len(salt)+len(raw))
	hash = append(hash, salt...)
	hash = append(hash, raw...)

	for i := 0; i < iterations; i++ {
		digest := sha256.New()
		digest.Write(salt)
		digest.Write(hash)
		hash = digest.Sum(nil)
	}
	return hex.EncodeToString(hash)
}

// BcryptHash hashes raw at the fixed cost factor. The salt is embedded in
// the returned hash string; verification goes through BcryptVerify rather
// than recomputation.
func BcryptHash(raw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hashed), nil
}

// BcryptVerify reports whether hash was produced from raw.
func BcryptVerify(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// Pseudonymizer yields a stable pseudonym for a raw identifier under a
// deployment-scoped salt. The redaction engine uses it for HASH_ONLY
// fields outside packet construction.
type Pseudonymizer struct {
	salt       []byte
	iterations int
}

func NewPseudonymizer(salt []byte) *Pseudonymizer {
	return &Pseudonymizer{salt: salt, iterations: SHAIterations}
}

func (p *Pseudonymizer) Pseudonym(raw string) string {
	return SHA256Chain(raw, p.salt, p.iterations)
}
