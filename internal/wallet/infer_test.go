package wallet

import (
	"reflect"
	"testing"

	"solana-trade-recon/internal/solana"
	"solana-trade-recon/internal/solana/stub"
)

const (
	alice = "A1ice111111111111111111111111111111111111111"
	bob   = "Bob11111111111111111111111111111111111111111"
	carol = "Caro1111111111111111111111111111111111111111"
	mint  = "Mint111111111111111111111111111111111111111"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		name string
		tx   *solana.Transaction
		want []string
	}{
		{
			name: "nil transaction",
			tx:   nil,
			want: nil,
		},
		{
			name: "no signers",
			tx:   stub.NewTx("s").WithAccount(alice).Build(),
			want: nil,
		},
		{
			name: "single human signer",
			tx:   stub.NewTx("s").WithSigner(alice).Build(),
			want: []string{alice},
		},
		{
			name: "program signers are ignored",
			tx: stub.NewTx("s").
				WithSigner(solana.ComputeBudgetProgramID.String()).
				WithSigner("SysvarRent111111111111111111111111111111111").
				WithSigner(bob).
				Build(),
			want: []string{bob},
		},
		{
			name: "balance owner preferred",
			tx: stub.NewTx("s").
				WithSigner(alice).
				WithSigner(bob).
				WithTokenAccount("BobAta", mint, bob, 6).
				Build(),
			want: []string{bob},
		},
		{
			name: "instruction authority preferred",
			tx: stub.NewTx("s").
				WithSigner(alice).
				WithSigner(bob).
				Inner(0, stub.TokenTransfer("x", "y", bob, 1)).
				Build(),
			want: []string{bob},
		},
		{
			name: "owner beats authority",
			tx: stub.NewTx("s").
				WithSigner(alice).
				WithSigner(bob).
				WithSigner(carol).
				WithTokenAccount("CarolAta", mint, carol, 6).
				Top(stub.TokenTransfer("x", "y", bob, 1)).
				Build(),
			want: []string{carol},
		},
		{
			name: "first signer fallback",
			tx: stub.NewTx("s").
				WithSigner(alice).
				WithSigner(bob).
				Build(),
			want: []string{alice},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Infer(tt.tx)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Infer() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInferAll(t *testing.T) {
	tx := stub.NewTx("s").
		WithSigner(alice).
		WithSigner(solana.SystemProgramID.String()).
		WithSigner(bob).
		WithSigner(carol).
		WithTokenAccount("CarolAta", mint, carol, 6).
		Top(stub.CreateATA(alice, "BobAta", bob, mint)).
		Build()

	got := InferAll(tx)
	want := []string{carol, bob, alice}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("InferAll() = %v, want %v", got, want)
	}
}

func TestInferAll_NoSigners(t *testing.T) {
	if got := InferAll(stub.NewTx("s").Build()); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
