//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"solispdv/internal/infra"
	"solispdv/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisProdutoCache(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewRedisProdutoCache(rdb, time.Minute)
	c.Set(ctx, &model.Produto{CodigoBarras: "111", Nome: "Leite", PrecoVenda: decimal.RequireFromString("5.49")})
	c.Set(ctx, &model.Produto{CodigoBarras: "222", Nome: "Pão", PrecoVenda: decimal.RequireFromString("0.75")})
	require.NoError(t, rdb.Set(ctx, "outra:chave", "x", 0).Err())

	p, ok := c.Get(ctx, "111")
	require.True(t, ok)
	assert.Equal(t, "Leite", p.Nome)
	assert.Equal(t, "5.49", p.PrecoVenda.String())

	c.Flush(ctx)
	_, ok = c.Get(ctx, "111")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "222")
	assert.False(t, ok)

	v, err := rdb.Get(ctx, "outra:chave").Result()
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}
