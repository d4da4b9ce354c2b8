package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/config"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	analysisKeyPrefix = "analysis:rows"
	scanBatchSize     = 100
)

// AnalysisResult is the cached payload: the rows plus the data-quality
// diagnostics that accompanied them.
type AnalysisResult struct {
	Rows        []domain.AnalysisRow `json:"rows"`
	Diagnostics domain.Diagnostics   `json:"diagnostics"`
}

// AnalysisCache stores analysis results keyed by filter fingerprint.
// Every write path (import, sync, review edits, group changes) calls
// InvalidateAll, so a hit is always consistent with the stored data.
type AnalysisCache interface {
	Get(ctx context.Context, filters *domain.FilterState) (*AnalysisResult, bool, error)
	Set(ctx context.Context, filters *domain.FilterState, result *AnalysisResult) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalysisCache struct{}

func NewAnalysisCache(cfg config.CacheConfig) (AnalysisCache, error) {
	if !cfg.Enabled {
		return &noopAnalysisCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalysisCache{client: client, ttl: ttl}, nil
}

func NewNoopAnalysisCache() AnalysisCache {
	return &noopAnalysisCache{}
}

func (c *redisAnalysisCache) Get(ctx context.Context, filters *domain.FilterState) (*AnalysisResult, bool, error) {
	key := buildAnalysisKey(filters)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decode analysis cache: %w", err)
	}

	return &result, true, nil
}

func (c *redisAnalysisCache) Set(ctx context.Context, filters *domain.FilterState, result *AnalysisResult) error {
	key := buildAnalysisKey(filters)
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisAnalysisCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, analysisKeyPrefix, scanBatchSize)
}

func (n *noopAnalysisCache) Get(ctx context.Context, filters *domain.FilterState) (*AnalysisResult, bool, error) {
	return nil, false, nil
}

func (n *noopAnalysisCache) Set(ctx context.Context, filters *domain.FilterState, result *AnalysisResult) error {
	return nil
}

func (n *noopAnalysisCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildAnalysisKey(filters *domain.FilterState) string {
	if filters == nil {
		return analysisKeyPrefix + ":default"
	}

	hash := sha1.Sum([]byte(filters.Fingerprint()))
	return fmt.Sprintf("%s:%s", analysisKeyPrefix, hex.EncodeToString(hash[:]))
}
