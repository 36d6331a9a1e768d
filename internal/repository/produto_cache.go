package repository

import (
	"context"
	"encoding/json"
	"time"

	"solispdv/internal/model"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const produtoCachePrefix = "produto:"

// ProdutoCache memoizes barcode lookups. Errors are never surfaced: a cache
// failure degrades to a miss and the agent is asked again.
type ProdutoCache interface {
	Get(ctx context.Context, codigoBarras string) (*model.Produto, bool)
	Set(ctx context.Context, p *model.Produto)
	// Flush drops every entry, used after a successful product sync.
	Flush(ctx context.Context)
}

// ─── Redis ───────────────────────────────────────────────────────────────────

type redisProdutoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisProdutoCache(rdb *redis.Client, ttl time.Duration) ProdutoCache {
	return &redisProdutoCache{rdb: rdb, ttl: ttl}
}

func (c *redisProdutoCache) Get(ctx context.Context, codigoBarras string) (*model.Produto, bool) {
	b, err := c.rdb.Get(ctx, produtoCachePrefix+codigoBarras).Bytes()
	if err != nil {
		return nil, false
	}
	var p model.Produto
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *redisProdutoCache) Set(ctx context.Context, p *model.Produto) {
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, produtoCachePrefix+p.CodigoBarras, b, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("codigo_barras", p.CodigoBarras).Msg("produto cache: set failed")
	}
}

func (c *redisProdutoCache) Flush(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, produtoCachePrefix+"*", 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Msg("produto cache: scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("produto cache: flush failed")
	}
}

// ─── In-process ──────────────────────────────────────────────────────────────

type memoriaProdutoCache struct {
	c *cache.Cache
}

// NewMemoriaProdutoCache is used when no REDIS_URL is configured.
func NewMemoriaProdutoCache(ttl time.Duration) ProdutoCache {
	return &memoriaProdutoCache{c: cache.New(ttl, 2*ttl)}
}

func (m *memoriaProdutoCache) Get(_ context.Context, codigoBarras string) (*model.Produto, bool) {
	v, ok := m.c.Get(codigoBarras)
	if !ok {
		return nil, false
	}
	p := v.(model.Produto)
	return &p, true
}

func (m *memoriaProdutoCache) Set(_ context.Context, p *model.Produto) {
	m.c.SetDefault(p.CodigoBarras, *p)
}

func (m *memoriaProdutoCache) Flush(_ context.Context) { m.c.Flush() }
