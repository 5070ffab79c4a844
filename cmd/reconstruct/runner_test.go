package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"solana-trade-recon/internal/actions"
	"solana-trade-recon/internal/config"
	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/pipeline"
	"solana-trade-recon/internal/solana"
	"solana-trade-recon/internal/solana/stub"
	"solana-trade-recon/internal/storage"
	"solana-trade-recon/internal/storage/memory"
)

const (
	user     = "User1111111111111111111111111111111111111111"
	userMeme = "UserMeme11111111111111111111111111111111111"
	poolMeme = "PoolMeme11111111111111111111111111111111111"
	curve    = "Curve111111111111111111111111111111111111111"
	memeMint = "Meme111111111111111111111111111111111111111"
	feeRecv  = "FeeRecv11111111111111111111111111111111111111"
	jitoTip  = "Jito1111111111111111111111111111111111111111"
)

func buyTx(sig string) *solana.Transaction {
	return stub.NewTx(sig).
		WithSigner(user).
		WithBalance(user, 2_000_000_000, 1_493_995_000).
		WithTokenAccount(userMeme, memeMint, user, 6).
		WithTokenAccount(poolMeme, memeMint, curve, 6).
		WithFee(5000).
		Top(
			stub.Opaque(solana.ComputeBudgetProgramID.String()),
			stub.SystemTransfer(user, jitoTip, 1_000_000),
			stub.Opaque("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"),
		).
		Inner(2,
			stub.SystemTransfer(user, curve, 500_000_000),
			stub.SystemTransfer(user, feeRecv, 5_000_000),
			stub.TokenTransferChecked(poolMeme, userMeme, curve, memeMint, 1_000_000_000, 6),
		).
		Build()
}

type fixture struct {
	rpc      *stub.RPCClient
	actions  *memory.ActionStore
	progress *memory.ProgressStore
	out      *bytes.Buffer
	runner   *runner
}

func newFixture() *fixture {
	params := config.DefaultParams()
	f := &fixture{
		rpc:      stub.NewRPCClient(),
		actions:  memory.NewActionStore(),
		progress: memory.NewProgressStore(),
		out:      &bytes.Buffer{},
	}
	f.runner = newRunner(f.rpc,
		pipeline.NewReconstructor(params, nil),
		actions.NewEnricher(nil, params, nil),
		f.actions, f.progress, 2, zap.NewNop())
	f.runner.out = f.out
	return f
}

func TestRunner_Process(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	failed := stub.NewTx("failed").WithSigner(user).WithError(map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}).Build()

	n, err := f.runner.process(ctx, []*solana.Transaction{buyTx("buy1"), failed, nil}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := f.actions.GetBySignature(ctx, "buy1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, domain.ActionBuy, stored[0].Type)
	assert.Equal(t, user, stored[0].Wallet)
	assert.True(t, stored[0].SoldAmount.Equal(decimal.RequireFromString("0.5")), "sold %s", stored[0].SoldAmount)
	assert.True(t, stored[0].BoughtAmount.Equal(decimal.NewFromInt(1000)), "bought %s", stored[0].BoughtAmount)
	assert.True(t, stored[0].Tip.Equal(decimal.RequireFromString("0.001")), "tip %s", stored[0].Tip)

	lines := strings.Split(strings.TrimSpace(f.out.String()), "\n")
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"Signature":"buy1"`)

	// Re-processing is idempotent for storage
	n, err = f.runner.process(ctx, []*solana.Transaction{buyTx("buy1")}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	stored, _ = f.actions.GetBySignature(ctx, "buy1")
	assert.Len(t, stored, 1)
}

func TestRunner_WalletsFor(t *testing.T) {
	f := newFixture()
	tx := buyTx("buy1")

	assert.Equal(t, []string{user}, f.runner.walletsFor(tx, nil))
	assert.Equal(t, []string{"Subject"}, f.runner.walletsFor(tx, []string{"Subject"}))

	f.runner.wallets = []string{"Override"}
	assert.Equal(t, []string{"Override"}, f.runner.walletsFor(tx, []string{"Subject"}))
}

func TestRunner_ScanWallet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.rpc.AddTransaction(buyTx("buy2"))
	f.rpc.AddTransaction(buyTx("buy1"))
	f.rpc.AddSignatures(user, []solana.SignatureInfo{
		{Signature: "buy2", Slot: 12},
		{Signature: "reverted", Slot: 11, Err: "InstructionError"},
		{Signature: "buy1", Slot: 10},
	})

	n, err := f.runner.scanWallet(ctx, user, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, f.rpc.CallCount("reverted"), "errored signatures are not fetched")

	lines := strings.Split(strings.TrimSpace(f.out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"Signature":"buy1"`, "oldest first")

	p, err := f.progress.GetLastProcessed(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "buy2", p.Signature)
	assert.Equal(t, int64(12), p.Slot)
}

func TestRunner_ScanWalletEmpty(t *testing.T) {
	f := newFixture()

	n, err := f.runner.scanWallet(context.Background(), user, 10)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.progress.GetLastProcessed(context.Background(), user)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunner_ScanWalletPagesToCursor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Newest first; "old" is the stored cursor.
	var sigs []solana.SignatureInfo
	for i := 5; i >= 1; i-- {
		sig := fmt.Sprintf("new%d", i)
		f.rpc.AddTransaction(buyTx(sig))
		sigs = append(sigs, solana.SignatureInfo{Signature: sig, Slot: int64(100 + i)})
	}
	sigs = append(sigs, solana.SignatureInfo{Signature: "old", Slot: 100})
	f.rpc.AddSignatures(user, sigs)
	require.NoError(t, f.progress.SetLastProcessed(ctx, user, &storage.WalletProgress{Slot: 100, Signature: "old"}))

	n, err := f.runner.scanWallet(ctx, user, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, n, "every signature newer than the cursor is processed")
	assert.Equal(t, 3, f.rpc.SignatureCalls)
	assert.Zero(t, f.rpc.CallCount("old"))

	lines := strings.Split(strings.TrimSpace(f.out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], `"Signature":"new1"`)
	assert.Contains(t, lines[4], `"Signature":"new5"`)

	p, err := f.progress.GetLastProcessed(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "new5", p.Signature)

	// Caught up: one empty page, cursor unchanged.
	n, err = f.runner.scanWallet(ctx, user, 2)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 4, f.rpc.SignatureCalls)
}

func TestRunner_ScanWalletFirstScanReadsOnePage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, sig := range []string{"c", "b", "a"} {
		f.rpc.AddTransaction(buyTx(sig))
	}
	f.rpc.AddSignatures(user, []solana.SignatureInfo{
		{Signature: "c", Slot: 3},
		{Signature: "b", Slot: 2},
		{Signature: "a", Slot: 1},
	})

	n, err := f.runner.scanWallet(ctx, user, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, f.rpc.SignatureCalls)
	assert.Zero(t, f.rpc.CallCount("a"))

	p, err := f.progress.GetLastProcessed(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "c", p.Signature)
}

type fakeWS struct {
	ch chan solana.LogNotification
}

func (w *fakeWS) SubscribeWallet(context.Context, string) (<-chan solana.LogNotification, error) {
	return w.ch, nil
}

func (w *fakeWS) Close() error { return nil }

func TestRunner_Watch(t *testing.T) {
	f := newFixture()
	f.rpc.AddTransaction(buyTx("live1"))

	ws := &fakeWS{ch: make(chan solana.LogNotification, 2)}
	ws.ch <- solana.LogNotification{Signature: "reverted", Wallet: user, Slot: 20, Err: "InstructionError"}
	ws.ch <- solana.LogNotification{Signature: "live1", Wallet: user, Slot: 21}
	close(ws.ch)

	err := f.runner.watch(context.Background(), ws, []string{user})
	require.Error(t, err, "closed subscriptions end the watch")

	stored, err := f.actions.GetBySignature(context.Background(), "live1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	p, err := f.progress.GetLastProcessed(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "live1", p.Signature)
}

const rawTx = `{
  "slot": 7,
  "blockTime": 1700000000,
  "meta": {"err": null, "fee": 5000, "preBalances": [1], "postBalances": [1]},
  "transaction": {
    "signatures": ["%s"],
    "message": {"accountKeys": [{"pubkey": "User1111111111111111111111111111111111111111", "signer": true, "writable": true}], "instructions": []}
  }
}`

func TestReadTransactions(t *testing.T) {
	dir := t.TempDir()

	single := filepath.Join(dir, "single.json")
	require.NoError(t, os.WriteFile(single, []byte(strings.Replace(rawTx, "%s", "one", 1)), 0o600))

	txs, err := readTransactions(single)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "one", txs[0].Signature)
	assert.Equal(t, int64(7), txs[0].Slot)

	many := filepath.Join(dir, "many.json")
	body := "[" + strings.Replace(rawTx, "%s", "a", 1) + ",null," + strings.Replace(rawTx, "%s", "b", 1) + "]"
	require.NoError(t, os.WriteFile(many, []byte(body), 0o600))

	txs, err = readTransactions(many)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "b", txs[1].Signature)

	_, err = readTransactions(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}
