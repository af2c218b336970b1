// Package vault encrypts PII at rest. Ciphertexts are self-contained
// base64 blobs carrying their nonce, so a blob can be decrypted with the
// key alone and any modification is detected on decrypt.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
)

const (
	KeyBytes   = 32
	nonceBytes = 12
)

// Vault performs AES-256-GCM encryption under a single tenant key.
type Vault struct {
	aead cipher.AEAD
}

func New(key []byte) (*Vault, error) {
	if len(key) != KeyBytes {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "vault key must be %d bytes, got %d", KeyBytes, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh nonce and returns
// base64(nonce‖ciphertext‖tag). Equal plaintexts produce distinct blobs.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a blob produced by Encrypt. A blob that fails
// authentication, including one encrypted under a different key, is
// reported as an integrity violation rather than returned partially.
func (v *Vault) Decrypt(blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeIntegrity, "ciphertext is not valid base64", err)
	}
	if len(raw) < nonceBytes {
		return "", dErrors.New(dErrors.CodeIntegrity, "ciphertext shorter than nonce")
	}
	nonce, sealed := raw[:nonceBytes], raw[nonceBytes:]
	plaintext, err := v.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeIntegrity, "ciphertext failed authentication", err)
	}
	return string(plaintext), nil
}

// normalizeSSN strips separator characters so storage and masking operate
// on bare digits.
func normalizeSSN(ssn string) string {
	var b strings.Builder
	b.Grow(len(ssn))
	for _, r := range ssn {
		if r != '-' && r != ' ' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EncryptSSN validates and encrypts a social security number. The number
// must contain exactly nine digits; it is stored in normalized digit form.
func (v *Vault) EncryptSSN(ssn string) (string, error) {
	digits := normalizeSSN(ssn)
	if len(digits) != 9 {
		return "", dErrors.New(dErrors.CodeValidation, "ssn must contain exactly nine digits")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", dErrors.New(dErrors.CodeValidation, "ssn must contain only digits")
		}
	}
	return v.Encrypt(digits)
}

// MaskedDisplay decrypts a blob and masks all but the trailing visible
// characters. Used for confirmation screens where the full value must not
// render.
func (v *Vault) MaskedDisplay(blob string, visible int) (string, error) {
	plaintext, err := v.Decrypt(blob)
	if err != nil {
		return "", err
	}
	if visible < 0 {
		visible = 0
	}
	runes := []rune(plaintext)
	if visible >= len(runes) {
		return plaintext, nil
	}
	masked := strings.Repeat("*", len(runes)-visible)
	return masked + string(runes[len(runes)-visible:]), nil
}
