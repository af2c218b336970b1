package vault

import (
	"encoding/json"
	"fmt"
	"strings"

	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
)

// Address is a postal address as collected at intake.
type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2,omitempty"`
	City  string `json:"city"`
	State string `json:"state"`
	Zip   string `json:"zip"`
}

func (a Address) zip3() string {
	if len(a.Zip) < 3 {
		return a.Zip
	}
	return a.Zip[:3]
}

// ProtectedAddress is a Safe at Home enrollment: the participant's true
// address encrypted, with a substitute mailing address for all
// correspondence. The true address never appears in cleartext outside
// Decrypt calls by authorized safety staff.
type ProtectedAddress struct {
	EncryptedTrue string
	Substitute    Address
}

// ProtectAddress validates the substitute against the true address and
// encrypts the true address. The substitute must not resolve to the same
// location: it must differ from the true address and sit in a different
// ZIP3 region, so mail routing cannot narrow down the participant.
func (v *Vault) ProtectAddress(trueAddr, substitute Address) (ProtectedAddress, error) {
	if trueAddr.Line1 == "" || trueAddr.Zip == "" {
		return ProtectedAddress{}, dErrors.New(dErrors.CodeInvalidInput, "true address requires street and zip")
	}
	if substitute.Line1 == "" || substitute.Zip == "" {
		return ProtectedAddress{}, dErrors.New(dErrors.CodeInvalidInput, "substitute address requires street and zip")
	}
	if sameAddress(trueAddr, substitute) {
		return ProtectedAddress{}, dErrors.New(dErrors.CodeValidation, "substitute address must differ from the true address")
	}
	if trueAddr.zip3() == substitute.zip3() {
		return ProtectedAddress{}, dErrors.New(dErrors.CodeValidation, "substitute address must be in a different zip region")
	}

	raw, err := json.Marshal(trueAddr)
	if err != nil {
		return ProtectedAddress{}, fmt.Errorf("marshal address: %w", err)
	}
	blob, err := v.Encrypt(string(raw))
	if err != nil {
		return ProtectedAddress{}, err
	}
	return ProtectedAddress{EncryptedTrue: blob, Substitute: substitute}, nil
}

// RevealTrueAddress decrypts the protected true address.
func (v *Vault) RevealTrueAddress(p ProtectedAddress) (Address, error) {
	raw, err := v.Decrypt(p.EncryptedTrue)
	if err != nil {
		return Address{}, err
	}
	var addr Address
	if err := json.Unmarshal([]byte(raw), &addr); err != nil {
		return Address{}, dErrors.Wrap(dErrors.CodeIntegrity, "decrypted address is malformed", err)
	}
	return addr, nil
}

// RedactedDisplay renders the substitute address for general screens: the
// street is replaced with a protection marker and the zip is truncated to
// its first three digits.
func (p ProtectedAddress) RedactedDisplay() string {
	return fmt.Sprintf("[ADDRESS PROTECTED] %s, %s %sXX", p.Substitute.City, p.Substitute.State, p.Substitute.zip3())
}

func sameAddress(a, b Address) bool {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return norm(a.Line1) == norm(b.Line1) &&
		norm(a.Line2) == norm(b.Line2) &&
		norm(a.City) == norm(b.City) &&
		norm(a.State) == norm(b.State) &&
		norm(a.Zip) == norm(b.Zip)
}
