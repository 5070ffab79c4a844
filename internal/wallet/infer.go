// Package wallet decides which signers of a transaction are the human
// wallets whose trades are being reconstructed.
package wallet

import (
	"solana-trade-recon/internal/solana"
)

// Infer returns the single most likely user wallet of tx, or nil when the
// transaction has no human signer.
//
// Priority: the only human signer; a signer that owns a token balance; a
// signer named as authority or owner by any instruction; the first signer.
func Infer(tx *solana.Transaction) []string {
	signers := humanSigners(tx)
	switch len(signers) {
	case 0:
		return nil
	case 1:
		return signers
	}

	owners := balanceOwners(tx)
	for _, s := range signers {
		if _, ok := owners[s]; ok {
			return []string{s}
		}
	}

	authorities := instructionAuthorities(tx)
	for _, s := range signers {
		if _, ok := authorities[s]; ok {
			return []string{s}
		}
	}

	return signers[:1]
}

// InferAll returns every plausible user wallet of tx in priority order:
// balance-owning signers, signers that had an associated token account
// created for them, then the remaining signers.
func InferAll(tx *solana.Transaction) []string {
	signers := humanSigners(tx)
	if len(signers) == 0 {
		return nil
	}

	owners := balanceOwners(tx)
	created := ataWallets(tx)

	out := make([]string, 0, len(signers))
	seen := make(map[string]struct{}, len(signers))
	add := func(pred func(string) bool) {
		for _, s := range signers {
			if _, dup := seen[s]; dup || !pred(s) {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}

	add(func(s string) bool { _, ok := owners[s]; return ok })
	add(func(s string) bool { _, ok := created[s]; return ok })
	add(func(string) bool { return true })

	return out
}

// humanSigners returns the signers of tx that are not programs or sysvars,
// deduplicated, in account-key order.
func humanSigners(tx *solana.Transaction) []string {
	if tx == nil {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, s := range tx.Signers() {
		if solana.IsNonHumanAccount(s) {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func balanceOwners(tx *solana.Transaction) map[string]struct{} {
	owners := make(map[string]struct{})
	if tx.Meta == nil {
		return owners
	}
	for _, balances := range [][]solana.TokenBalance{tx.Meta.PreTokenBalances, tx.Meta.PostTokenBalances} {
		for _, tb := range balances {
			if tb.Owner != "" {
				owners[tb.Owner] = struct{}{}
			}
		}
	}
	return owners
}

func instructionAuthorities(tx *solana.Transaction) map[string]struct{} {
	found := make(map[string]struct{})
	tx.InstructionGroups(func(ix solana.Instruction, _, _ int) {
		info := ix.Info()
		for _, key := range []string{"authority", "multisigAuthority", "owner"} {
			if v := info.String(key); v != "" {
				found[v] = struct{}{}
			}
		}
	})
	return found
}

func ataWallets(tx *solana.Transaction) map[string]struct{} {
	found := make(map[string]struct{})
	tx.InstructionGroups(func(ix solana.Instruction, _, _ int) {
		if !solana.IsAssociatedTokenProgram(ix.ProgramID) {
			return
		}
		switch ix.Type() {
		case "create", "createIdempotent":
			if w := ix.Info().String("wallet"); w != "" {
				found[w] = struct{}{}
			}
		}
	})
	return found
}
