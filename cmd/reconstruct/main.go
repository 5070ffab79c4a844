package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"solana-trade-recon/internal/actions"
	"solana-trade-recon/internal/cache"
	"solana-trade-recon/internal/config"
	"solana-trade-recon/internal/idhash"
	"solana-trade-recon/internal/logging"
	"solana-trade-recon/internal/observability"
	"solana-trade-recon/internal/pipeline"
	"solana-trade-recon/internal/solana"
	"solana-trade-recon/internal/storage"
	chstore "solana-trade-recon/internal/storage/clickhouse"
	"solana-trade-recon/internal/storage/memory"
	"solana-trade-recon/internal/storage/migrations"
	pgstore "solana-trade-recon/internal/storage/postgres"
	"solana-trade-recon/internal/wallet"
)

type options struct {
	mode          string
	rpcEndpoint   string
	wsEndpoint    string
	signatures    string
	wallets       string
	attribute     string
	multiWallet   bool
	file          string
	limit         int
	workers       int
	paramsPath    string
	redisAddr     string
	redisPassword string
	redisTTL      time.Duration
	postgresDSN   string
	clickhouseDSN string
	useMemory     bool
	metricsAddr   string
	logLevel      string
	logConsole    bool
	logFile       string
}

func main() {
	var o options
	flag.StringVar(&o.mode, "mode", "tx", "Mode: tx, wallet, file, or watch")
	flag.StringVar(&o.rpcEndpoint, "rpc-endpoint", "", "Solana RPC HTTP endpoint")
	flag.StringVar(&o.wsEndpoint, "ws-endpoint", "", "Solana WebSocket endpoint (watch mode)")
	flag.StringVar(&o.signatures, "sig", "", "Comma-separated transaction signatures (tx mode)")
	flag.StringVar(&o.wallets, "wallet", "", "Comma-separated wallets to scan or watch")
	flag.StringVar(&o.attribute, "attribute", "", "Comma-separated wallets to attribute legs to (default: inferred)")
	flag.BoolVar(&o.multiWallet, "multi-wallet", false, "Attribute legs to every plausible signer when inferring")
	flag.StringVar(&o.file, "file", "", "JSON file with getTransaction results (file mode)")
	flag.IntVar(&o.limit, "limit", 100, "Signature page size; a first scan without a stored cursor reads one page (wallet mode)")
	flag.IntVar(&o.workers, "workers", 4, "Reconstruction workers")
	flag.StringVar(&o.paramsPath, "params", "", "YAML file overriding reconstruction parameters")
	flag.StringVar(&o.redisAddr, "redis-addr", "", "Redis address for the transaction cache (empty to disable)")
	flag.StringVar(&o.redisPassword, "redis-password", "", "Redis password")
	flag.DurationVar(&o.redisTTL, "redis-ttl", cache.DefaultTTL, "Transaction cache TTL")
	flag.StringVar(&o.postgresDSN, "postgres-dsn", "", "PostgreSQL connection string for trade actions")
	flag.StringVar(&o.clickhouseDSN, "clickhouse-dsn", "", "ClickHouse DSN for price candles (empty disables USD valuation)")
	flag.BoolVar(&o.useMemory, "use-memory", false, "Use in-memory storage instead of PostgreSQL")
	flag.StringVar(&o.metricsAddr, "metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	flag.StringVar(&o.logLevel, "log-level", "info", "Log level")
	flag.BoolVar(&o.logConsole, "log-console", false, "Human-readable log output")
	flag.StringVar(&o.logFile, "log-file", "", "Log to this rotating file instead of stderr")
	flag.Parse()

	logger, err := newLogger(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if o.metricsAddr != "" {
		go serveMetrics(o.metricsAddr, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
			cancel()
		case <-done:
			return
		}

		// Second signal forces exit
		select {
		case <-sigCh:
			logger.Warn("second signal, forcing exit")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Error("graceful shutdown timed out after 30s")
			os.Exit(1)
		case <-done:
		}
	}()

	err = run(ctx, o, logger)
	close(done)
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("reconstruct failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func newLogger(o options) (*zap.Logger, error) {
	c := logging.DefaultConfig()
	c.Level = o.logLevel
	c.Console = o.logConsole
	// stdout carries the actions
	c.Output = logging.OutputStderr
	if o.logFile != "" {
		c.Output = logging.OutputFile
		c.Dir, c.Name = filepath.Split(o.logFile)
	}
	return logging.New(c)
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	logger.Info("starting metrics server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server error", zap.Error(err))
	}
}

func run(ctx context.Context, o options, logger *zap.Logger) error {
	params, err := config.LoadParams(o.paramsPath)
	if err != nil {
		return err
	}

	subjects := splitList(o.wallets)
	attribute := splitList(o.attribute)
	if err := wallet.ValidateAll(append(append([]string(nil), subjects...), attribute...)); err != nil {
		return err
	}

	rpc, closeRPC, err := newRPC(o, logger)
	if err != nil {
		return err
	}
	defer closeRPC()

	actionStore, progressStore, closeStores, err := newStores(ctx, o, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	candles, closeCandles, err := newCandleStore(ctx, o, logger)
	if err != nil {
		return err
	}
	defer closeCandles()

	recon := pipeline.NewReconstructor(params, logger)
	enricher := actions.NewEnricher(candles, params, logger)

	r := newRunner(rpc, recon, enricher, actionStore, progressStore, o.workers, logger)
	r.wallets = attribute
	r.multiWallet = o.multiWallet

	switch o.mode {
	case "tx":
		return runTx(ctx, r, o, logger)
	case "wallet":
		return runWallet(ctx, r, o, subjects, logger)
	case "file":
		return runFile(ctx, r, o, logger)
	case "watch":
		return runWatch(ctx, r, o, subjects, logger)
	default:
		return fmt.Errorf("unknown mode: %s", o.mode)
	}
}

func runTx(ctx context.Context, r *runner, o options, logger *zap.Logger) error {
	if r.rpc == nil {
		return fmt.Errorf("--rpc-endpoint is required for tx mode")
	}
	sigs := splitList(o.signatures)
	if len(sigs) == 0 {
		return fmt.Errorf("--sig is required for tx mode")
	}
	for _, s := range sigs {
		if err := idhash.ValidateSignature(s); err != nil {
			return err
		}
	}

	txs, err := r.fetch(ctx, sigs)
	if err != nil {
		return err
	}
	n, err := r.process(ctx, txs, nil)
	logger.Info("transactions processed", zap.Int("transactions", len(txs)), zap.Int("actions", n))
	return err
}

func runWallet(ctx context.Context, r *runner, o options, wallets []string, logger *zap.Logger) error {
	if r.rpc == nil {
		return fmt.Errorf("--rpc-endpoint is required for wallet mode")
	}
	if len(wallets) == 0 {
		return fmt.Errorf("--wallet is required for wallet mode")
	}

	for _, w := range wallets {
		n, err := r.scanWallet(ctx, w, o.limit)
		if err != nil {
			return err
		}
		logger.Info("wallet scanned", zap.String("wallet", w), zap.Int("actions", n))
	}
	return nil
}

func runFile(ctx context.Context, r *runner, o options, logger *zap.Logger) error {
	if o.file == "" {
		return fmt.Errorf("--file is required for file mode")
	}
	txs, err := readTransactions(o.file)
	if err != nil {
		return err
	}
	n, err := r.process(ctx, txs, nil)
	logger.Info("file processed", zap.String("file", o.file), zap.Int("transactions", len(txs)), zap.Int("actions", n))
	return err
}

func runWatch(ctx context.Context, r *runner, o options, wallets []string, logger *zap.Logger) error {
	if r.rpc == nil || o.wsEndpoint == "" {
		return fmt.Errorf("--rpc-endpoint and --ws-endpoint are required for watch mode")
	}
	if len(wallets) == 0 {
		return fmt.Errorf("--wallet is required for watch mode")
	}

	ws, err := solana.NewLogsClient(ctx, o.wsEndpoint, nil, logger)
	if err != nil {
		return fmt.Errorf("connect websocket: %w", err)
	}
	defer ws.Close()

	logger.Info("watching wallets", zap.Strings("wallets", wallets))
	return r.watch(ctx, ws, wallets)
}

// newRPC builds the RPC client, cached through Redis when configured.
// Returns a nil client when no endpoint is set.
func newRPC(o options, logger *zap.Logger) (solana.RPCClient, func(), error) {
	noop := func() {}
	if o.rpcEndpoint == "" {
		return nil, noop, nil
	}

	var rpc solana.RPCClient = solana.NewHTTPClient(o.rpcEndpoint)
	if o.redisAddr == "" {
		return rpc, noop, nil
	}

	client, err := cache.NewRedisClient(o.redisAddr, o.redisPassword, 0)
	if err != nil {
		return nil, noop, err
	}
	logger.Info("transaction cache enabled", zap.String("redis", o.redisAddr), zap.Duration("ttl", o.redisTTL))
	return cache.NewTxCache(rpc, client, o.redisTTL, logger), func() { client.Close() }, nil
}

func newStores(ctx context.Context, o options, logger *zap.Logger) (storage.ActionStore, storage.ProgressStore, func(), error) {
	if o.useMemory {
		return memory.NewActionStore(), memory.NewProgressStore(), func() {}, nil
	}
	if o.postgresDSN == "" {
		return nil, nil, nil, fmt.Errorf("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	pool, err := pgstore.NewPool(ctx, o.postgresDSN, int32(o.workers+2))
	if err != nil {
		return nil, nil, nil, err
	}
	applied, err := migrations.RunPostgresMigrations(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	logger.Info("postgres ready", zap.Strings("applied_migrations", applied))
	return pgstore.NewActionStore(pool), pgstore.NewProgressStore(pool), pool.Close, nil
}

// newCandleStore returns nil when no candle source is configured.
func newCandleStore(ctx context.Context, o options, logger *zap.Logger) (storage.CandleStore, func(), error) {
	if o.clickhouseDSN == "" {
		return nil, func() {}, nil
	}
	conn, applied, err := migrations.RunClickhouseMigrations(ctx, o.clickhouseDSN)
	if err != nil {
		return nil, func() {}, err
	}
	logger.Info("clickhouse ready", zap.Strings("applied_migrations", applied))
	return chstore.NewCandleStore(conn), func() { conn.Close() }, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
