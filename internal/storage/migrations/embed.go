package migrations

import "embed"

// PostgresFS embeds the trade_actions and wallet_progress migrations.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds the price_candles migrations.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
