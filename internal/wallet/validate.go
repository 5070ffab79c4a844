package wallet

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	solanago "github.com/gagliardetto/solana-go"
)

// ErrInvalidAddress is returned for strings that cannot be a user wallet.
var ErrInvalidAddress = errors.New("invalid wallet address")

// Validate checks that addr is a base58 ed25519 public key that lies on the
// curve. Program-derived addresses are off-curve and have no private key,
// so they are rejected.
func Validate(addr string) error {
	pk, err := solanago.PublicKeyFromBase58(addr)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidAddress, addr, err)
	}
	if _, err := new(edwards25519.Point).SetBytes(pk.Bytes()); err != nil {
		return fmt.Errorf("%w: %q is off the ed25519 curve", ErrInvalidAddress, addr)
	}
	return nil
}

// ValidateAll validates every address and reports the first failure.
func ValidateAll(addrs []string) error {
	for _, a := range addrs {
		if err := Validate(a); err != nil {
			return err
		}
	}
	return nil
}
