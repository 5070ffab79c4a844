package solana

import (
	"testing"

	"solana-trade-recon/internal/domain"
)

func TestWrappedSOLMintMatchesNativeMint(t *testing.T) {
	if WrappedSOLMint.String() != domain.NativeMint {
		t.Errorf("wrapped SOL mint %s differs from native mint %s", WrappedSOLMint, domain.NativeMint)
	}
}

func TestIsNonHumanAccount(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{SystemProgramID.String(), true},
		{TokenProgramID.String(), true},
		{"SysvarRent111111111111111111111111111111111", true},
		{"User1111111111111111111111111111111111111111", false},
	}

	for _, tt := range tests {
		if got := IsNonHumanAccount(tt.addr); got != tt.want {
			t.Errorf("IsNonHumanAccount(%s) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}
