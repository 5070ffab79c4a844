package wallet

import (
	"errors"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
)

func TestValidate_OnCurve(t *testing.T) {
	key, err := solanago.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	if err := Validate(key.PublicKey().String()); err != nil {
		t.Errorf("expected wallet key to validate, got %v", err)
	}
}

func TestValidate_ProgramDerivedAddress(t *testing.T) {
	pda, _, err := solanago.FindProgramAddress(
		[][]byte{[]byte("vault")},
		solanago.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"),
	)
	if err != nil {
		t.Fatalf("derive address: %v", err)
	}

	err = Validate(pda.String())
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress for PDA, got %v", err)
	}
}

func TestValidate_Malformed(t *testing.T) {
	for _, addr := range []string{"", "not-base58!", "abc", "0OIl"} {
		if err := Validate(addr); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidAddress", addr, err)
		}
	}
}

func TestValidateAll(t *testing.T) {
	key, err := solanago.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	if err := ValidateAll([]string{key.PublicKey().String()}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateAll([]string{key.PublicKey().String(), "bad"}); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}
