package migrations

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	chstore "solana-trade-recon/internal/storage/clickhouse"
)

const chLedgerDDL = `CREATE TABLE IF NOT EXISTS ` + ledgerTable + ` (
    name        String,
    applied_at  DateTime64(3) DEFAULT now64(3)
) ENGINE = ReplacingMergeTree()
ORDER BY name`

// RunClickhouseMigrations creates the database named in dsn if needed and
// applies embedded SQL files not yet recorded in schema_migrations.
// ClickHouse has no DDL transactions, so migrations must be rerunnable
// (IF NOT EXISTS) in case a file fails halfway.
// Returns a connection to the target database and the files applied.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, []string, error) {
	ms, err := load(ClickhouseFS, "clickhouse")
	if err != nil {
		return nil, nil, err
	}
	for _, m := range ms {
		if err := validateNoSemicolonInStrings(m.sql); err != nil {
			return nil, nil, fmt.Errorf("validate migration %s: %w", m.name, err)
		}
	}

	dbName, err := ensureDatabase(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, nil, fmt.Errorf("connect clickhouse db: %w", err)
	}

	names, err := chMigrate(ctx, conn, ms)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, names, nil
}

// ensureDatabase creates the database named in dsn through a connection to
// the server default database.
func ensureDatabase(ctx context.Context, dsn string) (string, error) {
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return "", err
	}

	admin, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return "", fmt.Errorf("connect clickhouse admin: %w", err)
	}
	defer admin.Close()

	if err := admin.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", dbName)); err != nil {
		return "", fmt.Errorf("create database %s: %w", dbName, err)
	}
	return dbName, nil
}

func chMigrate(ctx context.Context, conn *chstore.Conn, ms []migration) ([]string, error) {
	if err := conn.Exec(ctx, chLedgerDDL); err != nil {
		return nil, fmt.Errorf("create %s: %w", ledgerTable, err)
	}

	applied, err := chApplied(ctx, conn)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, m := range pending(ms, applied) {
		// The driver does not support multiquery in Exec.
		for _, stmt := range splitStatements(m.sql) {
			if err := conn.Exec(ctx, stmt); err != nil {
				return names, fmt.Errorf("apply migration %s: %w", m.name, err)
			}
		}
		if err := conn.Exec(ctx, "INSERT INTO "+ledgerTable+" (name) VALUES (?)", m.name); err != nil {
			return names, fmt.Errorf("record migration %s: %w", m.name, err)
		}
		names = append(names, m.name)
	}
	return names, nil
}

func chApplied(ctx context.Context, conn *chstore.Conn) (map[string]struct{}, error) {
	rows, err := conn.Query(ctx, "SELECT name FROM "+ledgerTable+" FINAL")
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[name] = struct{}{}
	}
	return applied, rows.Err()
}

// splitStatements splits SQL content into individual statements by semicolon.
// Full-line -- comments are dropped. Semicolons inside string literals are
// not supported; validateNoSemicolonInStrings rejects them up front.
func splitStatements(input string) []string {
	var filtered []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		filtered = append(filtered, line)
	}
	joined := strings.Join(filtered, "\n")

	var stmts []string
	for _, part := range strings.Split(joined, ";") {
		stmt := strings.TrimSpace(part)
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// validateNoSemicolonInStrings rejects semicolons inside single-quoted strings.
func validateNoSemicolonInStrings(sql string) error {
	inString := false
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		if ch == '\'' {
			if i+1 < len(sql) && sql[i+1] == '\'' {
				i++ // escaped quote
				continue
			}
			inString = !inString
		} else if ch == ';' && inString {
			return fmt.Errorf("semicolon inside string literal at offset %d", i)
		}
	}
	return nil
}

func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return "", fmt.Errorf("clickhouse dsn missing database")
	}
	return db, nil
}
