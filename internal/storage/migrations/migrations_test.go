package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedFiles(t *testing.T) {
	pg, err := sqlFiles(PostgresFS, "postgres")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"postgres/001_trade_actions.sql",
		"postgres/002_wallet_progress.sql",
	}, pg)

	ch, err := sqlFiles(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	assert.Equal(t, []string{"clickhouse/001_price_candles.sql"}, ch)
}

func TestSplitStatements(t *testing.T) {
	input := `
-- header comment
CREATE TABLE a (x UInt8) ENGINE = Memory;

-- second
CREATE TABLE b (y String) ENGINE = Memory;
`
	stmts := splitStatements(input)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (x UInt8) ENGINE = Memory", stmts[0])
	assert.Equal(t, "CREATE TABLE b (y String) ENGINE = Memory", stmts[1])
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings("SELECT 'it''s'; SELECT 1;"))
	assert.Error(t, validateNoSemicolonInStrings("SELECT 'a;b'"))
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default@localhost:9000/prices")
	require.NoError(t, err)
	assert.Equal(t, "prices", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}

func TestLoadAndPending(t *testing.T) {
	ms, err := load(PostgresFS, "postgres")
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "001_trade_actions.sql", ms[0].name)
	assert.Contains(t, ms[0].sql, "CREATE TABLE IF NOT EXISTS trade_actions")

	rest := pending(ms, map[string]struct{}{"001_trade_actions.sql": {}})
	require.Len(t, rest, 1)
	assert.Equal(t, "002_wallet_progress.sql", rest[0].name)
	assert.Len(t, ms, 2, "pending must not modify its input")

	assert.Empty(t, pending(ms, map[string]struct{}{
		"001_trade_actions.sql":   {},
		"002_wallet_progress.sql": {},
	}))
}

func TestEmbeddedClickhouseIsSplittable(t *testing.T) {
	ms, err := load(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	for _, m := range ms {
		assert.NoError(t, validateNoSemicolonInStrings(m.sql), m.name)
		assert.NotEmpty(t, splitStatements(m.sql), m.name)
	}
}
