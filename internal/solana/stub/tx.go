package stub

import (
	"strconv"

	"solana-trade-recon/internal/solana"
)

// TxBuilder assembles jsonParsed transactions for tests.
type TxBuilder struct {
	tx       *solana.Transaction
	keys     map[string]int
	balances map[string][2]uint64
}

// NewTx starts a successful transaction with the given signature.
func NewTx(signature string) *TxBuilder {
	return &TxBuilder{
		tx: &solana.Transaction{
			Slot:      1,
			Signature: signature,
			BlockTime: 1_700_000_000,
			Meta:      &solana.TransactionMeta{},
			Message:   &solana.TransactionMessage{},
		},
		keys:     make(map[string]int),
		balances: make(map[string][2]uint64),
	}
}

func (b *TxBuilder) key(addr string, signer bool) int {
	if i, ok := b.keys[addr]; ok {
		if signer {
			b.tx.Message.AccountKeys[i].Signer = true
		}
		return i
	}
	i := len(b.tx.Message.AccountKeys)
	b.keys[addr] = i
	b.tx.Message.AccountKeys = append(b.tx.Message.AccountKeys, solana.AccountKey{
		Pubkey:   addr,
		Signer:   signer,
		Writable: true,
	})
	return i
}

// WithSigner adds addr as a signing account. The first signer pays the fee.
func (b *TxBuilder) WithSigner(addr string) *TxBuilder {
	b.key(addr, true)
	return b
}

// WithAccount adds a non-signing account key.
func (b *TxBuilder) WithAccount(addr string) *TxBuilder {
	b.key(addr, false)
	return b
}

// WithTokenAccount registers account as holding mint for owner, via a pre
// and post token balance entry.
func (b *TxBuilder) WithTokenAccount(account, mint, owner string, decimals uint8) *TxBuilder {
	tb := solana.TokenBalance{
		AccountIndex:  b.key(account, false),
		Mint:          mint,
		Owner:         owner,
		UITokenAmount: solana.UITokenAmount{Amount: "0", Decimals: decimals},
	}
	b.tx.Meta.PreTokenBalances = append(b.tx.Meta.PreTokenBalances, tb)
	b.tx.Meta.PostTokenBalances = append(b.tx.Meta.PostTokenBalances, tb)
	return b
}

// WithBalance sets the lamport balance of addr before and after execution.
func (b *TxBuilder) WithBalance(addr string, pre, post uint64) *TxBuilder {
	b.key(addr, false)
	b.balances[addr] = [2]uint64{pre, post}
	return b
}

// WithFee sets the network fee in lamports.
func (b *TxBuilder) WithFee(lamports uint64) *TxBuilder {
	b.tx.Meta.Fee = lamports
	return b
}

// WithBlockTime sets the block time in Unix seconds.
func (b *TxBuilder) WithBlockTime(ts int64) *TxBuilder {
	b.tx.BlockTime = ts
	return b
}

// WithError marks the transaction as failed.
func (b *TxBuilder) WithError(err interface{}) *TxBuilder {
	b.tx.Meta.Err = err
	return b
}

// Top appends top-level instructions.
func (b *TxBuilder) Top(ixs ...solana.Instruction) *TxBuilder {
	b.tx.Message.Instructions = append(b.tx.Message.Instructions, ixs...)
	return b
}

// Inner appends inner instructions under the top-level instruction parent.
func (b *TxBuilder) Inner(parent int, ixs ...solana.Instruction) *TxBuilder {
	groups := b.tx.Meta.InnerInstructions
	for i := range groups {
		if groups[i].Index == parent {
			groups[i].Instructions = append(groups[i].Instructions, ixs...)
			return b
		}
	}
	b.tx.Meta.InnerInstructions = append(groups, solana.InnerInstructions{Index: parent, Instructions: ixs})
	return b
}

// Build returns the transaction. Balances default to zero.
func (b *TxBuilder) Build() *solana.Transaction {
	n := len(b.tx.Message.AccountKeys)
	b.tx.Meta.PreBalances = make([]uint64, n)
	b.tx.Meta.PostBalances = make([]uint64, n)
	for addr, bal := range b.balances {
		i := b.keys[addr]
		b.tx.Meta.PreBalances[i] = bal[0]
		b.tx.Meta.PostBalances[i] = bal[1]
	}
	return b.tx
}

func parsed(programID, program, typ string, info solana.ParsedInfo) solana.Instruction {
	return solana.Instruction{
		Program:   program,
		ProgramID: programID,
		Parsed:    &solana.ParsedInstruction{Type: typ, Info: info},
	}
}

// SystemTransfer is a system program lamport transfer.
func SystemTransfer(source, destination string, lamports uint64) solana.Instruction {
	return parsed(solana.SystemProgramID.String(), "system", "transfer", solana.ParsedInfo{
		"source":      source,
		"destination": destination,
		"lamports":    lamports,
	})
}

// TokenTransfer is an unchecked SPL token transfer of a raw amount.
func TokenTransfer(source, destination, authority string, raw uint64) solana.Instruction {
	return parsed(solana.TokenProgramID.String(), "spl-token", "transfer", solana.ParsedInfo{
		"source":      source,
		"destination": destination,
		"authority":   authority,
		"amount":      strconv.FormatUint(raw, 10),
	})
}

// TokenTransferChecked is a checked SPL token transfer of a raw amount.
func TokenTransferChecked(source, destination, authority, mint string, raw uint64, decimals uint8) solana.Instruction {
	return parsed(solana.TokenProgramID.String(), "spl-token", "transferChecked", solana.ParsedInfo{
		"source":      source,
		"destination": destination,
		"authority":   authority,
		"mint":        mint,
		"tokenAmount": solana.ParsedInfo{
			"amount":   strconv.FormatUint(raw, 10),
			"decimals": uint64(decimals),
		},
	})
}

// CreateATA creates the associated token account of wallet for mint.
func CreateATA(payer, account, wallet, mint string) solana.Instruction {
	return parsed(solana.AssociatedTokenProgramID.String(), "spl-associated-token-account", "createIdempotent", solana.ParsedInfo{
		"source":  payer,
		"account": account,
		"wallet":  wallet,
		"mint":    mint,
	})
}

// InitializeAccount initializes a token account for owner.
func InitializeAccount(account, mint, owner string) solana.Instruction {
	return parsed(solana.TokenProgramID.String(), "spl-token", "initializeAccount3", solana.ParsedInfo{
		"account": account,
		"mint":    mint,
		"owner":   owner,
	})
}

// CloseAccount closes a token account, returning rent to destination.
func CloseAccount(account, destination, owner string) solana.Instruction {
	return parsed(solana.TokenProgramID.String(), "spl-token", "closeAccount", solana.ParsedInfo{
		"account":     account,
		"destination": destination,
		"owner":       owner,
	})
}

// Opaque is an instruction of a program the node could not decode.
func Opaque(programID string) solana.Instruction {
	return solana.Instruction{ProgramID: programID, Data: "3Bxs4"}
}
