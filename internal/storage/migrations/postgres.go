package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-trade-recon/internal/storage/postgres"
)

const pgLedgerDDL = `CREATE TABLE IF NOT EXISTS ` + ledgerTable + ` (
    name        TEXT PRIMARY KEY,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// RunPostgresMigrations applies embedded SQL files not yet recorded in
// schema_migrations. Each file runs in its own transaction together with
// its ledger row. Returns the names of the files applied.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) ([]string, error) {
	ms, err := load(PostgresFS, "postgres")
	if err != nil {
		return nil, err
	}

	if _, err := pool.Exec(ctx, pgLedgerDDL); err != nil {
		return nil, fmt.Errorf("create %s: %w", ledgerTable, err)
	}

	applied, err := pgApplied(ctx, pool)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, m := range pending(ms, applied) {
		if err := pgApply(ctx, pool, m); err != nil {
			return names, err
		}
		names = append(names, m.name)
	}
	return names, nil
}

func pgApplied(ctx context.Context, pool *postgres.Pool) (map[string]struct{}, error) {
	rows, err := pool.Query(ctx, "SELECT name FROM "+ledgerTable)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan applied migrations: %w", err)
	}

	applied := make(map[string]struct{}, len(names))
	for _, n := range names {
		applied[n] = struct{}{}
	}
	return applied, nil
}

func pgApply(ctx context.Context, pool *postgres.Pool, m migration) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.name, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, m.sql); err != nil {
		return fmt.Errorf("apply migration %s: %w", m.name, err)
	}
	if _, err := tx.Exec(ctx, "INSERT INTO "+ledgerTable+" (name) VALUES ($1)", m.name); err != nil {
		return fmt.Errorf("record migration %s: %w", m.name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.name, err)
	}
	return nil
}
