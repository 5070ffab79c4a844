package solana

import (
	"strings"

	solanago "github.com/gagliardetto/solana-go"
)

// Program and sysvar addresses the reconstruction cares about.
var (
	SystemProgramID          = solanago.MustPublicKeyFromBase58("11111111111111111111111111111111")
	TokenProgramID           = solanago.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	Token2022ProgramID       = solanago.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	AssociatedTokenProgramID = solanago.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	ComputeBudgetProgramID   = solanago.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")
	MemoProgramID            = solanago.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
	MemoV1ProgramID          = solanago.MustPublicKeyFromBase58("Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo")
	LookupTableProgramID     = solanago.MustPublicKeyFromBase58("AddressLookupTab1e1111111111111111111111111")
	VoteProgramID            = solanago.MustPublicKeyFromBase58("Vote111111111111111111111111111111111111111")
	StakeProgramID           = solanago.MustPublicKeyFromBase58("Stake11111111111111111111111111111111111111")

	WrappedSOLMint = solanago.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	USDCMint       = solanago.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	USDTMint       = solanago.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
)

var nonHumanAccounts = map[string]struct{}{
	SystemProgramID.String():          {},
	TokenProgramID.String():           {},
	Token2022ProgramID.String():       {},
	AssociatedTokenProgramID.String(): {},
	ComputeBudgetProgramID.String():   {},
	MemoProgramID.String():            {},
	MemoV1ProgramID.String():          {},
	LookupTableProgramID.String():     {},
	VoteProgramID.String():            {},
	StakeProgramID.String():           {},
}

// IsTokenProgram reports whether programID is SPL Token or Token-2022.
func IsTokenProgram(programID string) bool {
	return programID == TokenProgramID.String() || programID == Token2022ProgramID.String()
}

// IsSystemProgram reports whether programID is the system program.
func IsSystemProgram(programID string) bool {
	return programID == SystemProgramID.String()
}

// IsAssociatedTokenProgram reports whether programID is the ATA program.
func IsAssociatedTokenProgram(programID string) bool {
	return programID == AssociatedTokenProgramID.String()
}

// IsNonHumanAccount reports whether addr is a well-known program or sysvar
// and therefore can never be a user wallet.
func IsNonHumanAccount(addr string) bool {
	if _, ok := nonHumanAccounts[addr]; ok {
		return true
	}
	return strings.HasPrefix(addr, "Sysvar")
}

// DefaultStablecoins returns the mints treated as USD-pegged.
func DefaultStablecoins() []string {
	return []string{USDCMint.String(), USDTMint.String()}
}
