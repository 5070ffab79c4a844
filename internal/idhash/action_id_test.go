package idhash

import (
	"errors"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
)

func TestComputeActionID(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		wallet    string
		seqs      []int
	}{
		{
			name:      "buy leg",
			signature: "5xSig",
			wallet:    "User1111111111111111111111111111111111111111",
			seqs:      []int{0, 2, 3},
		},
		{
			name:      "empty path",
			signature: "5xSig",
			wallet:    "User1111111111111111111111111111111111111111",
			seqs:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeActionID(tt.signature, tt.wallet, tt.seqs)

			if len(got) != 64 {
				t.Errorf("ComputeActionID() length = %d, want 64", len(got))
			}

			got2 := ComputeActionID(tt.signature, tt.wallet, tt.seqs)
			if got != got2 {
				t.Errorf("ComputeActionID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeActionID_DifferentInputs(t *testing.T) {
	base := ComputeActionID("sig", "wallet", []int{1, 2})

	if base == ComputeActionID("other", "wallet", []int{1, 2}) {
		t.Error("Different signature should produce different hash")
	}
	if base == ComputeActionID("sig", "other", []int{1, 2}) {
		t.Error("Different wallet should produce different hash")
	}
	if base == ComputeActionID("sig", "wallet", []int{1, 3}) {
		t.Error("Different path should produce different hash")
	}
	// 1,2 must not collide with 12
	if base == ComputeActionID("sig", "wallet", []int{12}) {
		t.Error("Path separator missing")
	}
}

func TestValidateSignature(t *testing.T) {
	valid := base58.Encode(make([]byte, SignatureLen))
	short := base58.Encode(make([]byte, 32))

	tests := []struct {
		name    string
		sig     string
		wantErr bool
	}{
		{"valid", valid, false},
		{"pubkey length", short, true},
		{"empty", "", true},
		{"bad alphabet", "0OIl" + strings.Repeat("1", 80), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignature(tt.sig)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSignature() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSignature) {
				t.Errorf("expected ErrInvalidSignature, got %v", err)
			}
		})
	}
}
