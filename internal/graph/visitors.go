package graph

import (
	"strconv"

	"go.uber.org/zap"

	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/observability"
	"solana-trade-recon/internal/solana"
)

// tokenVisitor handles SPL Token and Token-2022 instructions.
type tokenVisitor struct {
	logger *zap.Logger
}

func (tokenVisitor) Supports(ix solana.Instruction) bool {
	return solana.IsTokenProgram(ix.ProgramID)
}

func (v tokenVisitor) Visit(ix solana.Instruction, em *Emitter) {
	info := ix.Info()
	if info == nil {
		return
	}

	switch ix.Type() {
	case "transfer", "transferChecked":
		v.transfer(ix.Type() == "transferChecked", info, em)
	case "initializeAccount", "initializeAccount2", "initializeAccount3":
		em.accounts.Merge(info.String("account"), domain.AccountInfo{
			Mint:  info.String("mint"),
			Owner: info.String("owner"),
		})
	case "closeAccount":
		em.accounts.Merge(info.String("account"), domain.AccountInfo{
			Owner: info.String("owner"),
		})
	}
}

func (v tokenVisitor) transfer(checked bool, info solana.ParsedInfo, em *Emitter) {
	src := info.String("source")
	dst := info.String("destination")
	srcInfo, dstInfo := em.accounts[src], em.accounts[dst]

	mint := info.String("mint")
	if mint == "" {
		mint = srcInfo.Mint
	}
	if mint == "" {
		mint = dstInfo.Mint
	}
	if mint == "" {
		v.logger.Debug("token transfer with unresolved mint", zap.String("source", src), zap.String("destination", dst))
		return
	}

	var raw string
	var decimals *uint8
	if checked {
		raw, decimals, _ = info.TokenAmount()
	} else {
		raw = rawAmount(info, "amount")
	}
	if decimals == nil {
		decimals = srcInfo.Decimals
	}
	if decimals == nil {
		decimals = dstInfo.Decimals
	}
	if decimals == nil && mint == domain.NativeMint {
		decimals = domain.Uint8Ptr(domain.NativeDecimals)
	}

	var scale uint8
	if decimals != nil {
		scale = *decimals
	}
	amount, err := domain.FromBaseUnits(raw, scale)
	if err != nil || amount.IsNegative() {
		v.logger.Debug("token transfer with invalid amount", zap.String("amount", raw))
		return
	}

	authority := info.String("authority")
	if authority == "" {
		authority = info.String("multisigAuthority")
	}

	em.Emit(domain.Edge{
		Source:      src,
		Destination: dst,
		Mint:        mint,
		Amount:      amount,
		Authority:   authority,
		Decimals:    decimals,
		Checked:     checked,
	})

	// Both ends now provably hold mint.
	known := domain.AccountInfo{Mint: mint, Decimals: decimals}
	em.accounts.Merge(src, known)
	em.accounts.Merge(dst, known)
}

// rawAmount reads an integer amount that may be encoded as string or number.
func rawAmount(info solana.ParsedInfo, key string) string {
	if s := info.String(key); s != "" {
		return s
	}
	if n, ok := info.Uint64(key); ok {
		return strconv.FormatUint(n, 10)
	}
	return ""
}

// associatedAccountVisitor records the owner and mint of created
// associated token accounts. It never emits edges.
type associatedAccountVisitor struct{}

func (associatedAccountVisitor) Supports(ix solana.Instruction) bool {
	return solana.IsAssociatedTokenProgram(ix.ProgramID)
}

func (associatedAccountVisitor) Visit(ix solana.Instruction, em *Emitter) {
	switch ix.Type() {
	case "create", "createIdempotent":
		info := ix.Info()
		em.accounts.Merge(info.String("account"), domain.AccountInfo{
			Mint:  info.String("mint"),
			Owner: info.String("wallet"),
		})
	}
}

// systemVisitor turns lamport transfers into native edges.
type systemVisitor struct{}

func (systemVisitor) Supports(ix solana.Instruction) bool {
	return solana.IsSystemProgram(ix.ProgramID)
}

func (systemVisitor) Visit(ix solana.Instruction, em *Emitter) {
	switch ix.Type() {
	case "transfer", "transferWithSeed":
	default:
		return
	}

	info := ix.Info()
	lamports, ok := info.Uint64("lamports")
	if !ok {
		return
	}

	src := info.String("source")
	authority := info.String("sourceBase")
	if authority == "" {
		authority = src
	}

	em.Emit(domain.Edge{
		Source:      src,
		Destination: info.String("destination"),
		Mint:        domain.NativeMint,
		Amount:      domain.FromLamports(int64(lamports)),
		Authority:   authority,
		Decimals:    domain.Uint8Ptr(domain.NativeDecimals),
	})
}

// fallbackVisitor accepts everything and emits nothing.
type fallbackVisitor struct {
	logger *zap.Logger
}

func (fallbackVisitor) Supports(solana.Instruction) bool { return true }

func (v fallbackVisitor) Visit(ix solana.Instruction, _ *Emitter) {
	program := ix.Program
	if program == "" {
		program = ix.ProgramID
	}
	observability.RecordUnhandledInstruction(program)
	v.logger.Debug("unhandled instruction", zap.String("program", program), zap.String("type", ix.Type()))
}
