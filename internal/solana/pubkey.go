package solana

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PubkeyLength is the decoded size of a Solana public key.
const PubkeyLength = 32

// ErrInvalidPubkey is returned for strings that are not base58 32-byte keys.
var ErrInvalidPubkey = errors.New("invalid public key")

// DecodePubkey decodes a base58 public key.
func DecodePubkey(s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPubkey, s, err)
	}
	if len(b) != PubkeyLength {
		return nil, fmt.Errorf("%w %q: %d bytes", ErrInvalidPubkey, s, len(b))
	}
	return b, nil
}

// ValidatePubkey reports whether s is a well-formed public key.
func ValidatePubkey(s string) error {
	_, err := DecodePubkey(s)
	return err
}

// IsOnCurve reports whether the 32 bytes are a valid ed25519 point.
// Program-derived addresses are deliberately off the curve.
func IsOnCurve(point []byte) bool {
	if len(point) != PubkeyLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// IsProgramDerived reports whether the base58 key s is a program-derived
// address, i.e. a valid key that is not on the ed25519 curve.
func IsProgramDerived(s string) (bool, error) {
	b, err := DecodePubkey(s)
	if err != nil {
		return false, err
	}
	return !IsOnCurve(b), nil
}
