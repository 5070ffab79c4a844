// Package cache provides a Redis read-through cache for confirmed transactions.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"go.uber.org/zap"

	"solana-trade-recon/internal/observability"
	"solana-trade-recon/internal/solana"
)

const (
	txPrefix = "tx"

	// DefaultTTL keeps confirmed transactions for a day.
	DefaultTTL = 24 * time.Hour
)

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 10 * time.Second,
		ReadTimeout: 5 * time.Second,
	})
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// TxCache decorates an RPC client with a Redis cache of GetTransaction results.
// Signature listings are never cached. Redis failures degrade to the inner
// client instead of failing the call.
type TxCache struct {
	inner  solana.RPCClient
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewTxCache wraps inner. ttl <= 0 uses DefaultTTL.
func NewTxCache(inner solana.RPCClient, client *redis.Client, ttl time.Duration, logger *zap.Logger) *TxCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TxCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.Named("tx_cache"),
	}
}

func txKey(signature string) string {
	return fmt.Sprintf("%s:%s", txPrefix, signature)
}

// GetTransaction returns the cached transaction or fetches and stores it.
// Unknown transactions are not cached.
func (c *TxCache) GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error) {
	if tx, ok := c.get(signature); ok {
		observability.RecordCache(true)
		return tx, nil
	}
	observability.RecordCache(false)

	tx, err := c.inner.GetTransaction(ctx, signature)
	if err != nil || tx == nil {
		return tx, err
	}

	c.put(signature, tx)
	return tx, nil
}

// GetSignaturesForAddress passes through to the inner client.
func (c *TxCache) GetSignaturesForAddress(ctx context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	return c.inner.GetSignaturesForAddress(ctx, address, opts)
}

func (c *TxCache) get(signature string) (*solana.Transaction, bool) {
	data, err := c.client.Get(txKey(signature)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("redis get failed", zap.String("signature", signature), zap.Error(err))
		return nil, false
	}

	var tx solana.Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		c.logger.Warn("dropping corrupt cache entry", zap.String("signature", signature), zap.Error(err))
		c.client.Del(txKey(signature))
		return nil, false
	}
	return &tx, true
}

func (c *TxCache) put(signature string, tx *solana.Transaction) {
	data, err := json.Marshal(tx)
	if err != nil {
		c.logger.Warn("encode transaction", zap.String("signature", signature), zap.Error(err))
		return
	}
	if err := c.client.Set(txKey(signature), data, c.ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", zap.String("signature", signature), zap.Error(err))
	}
}

var _ solana.RPCClient = (*TxCache)(nil)
