package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/devfolio-io/devfolio/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := New(config.RedisCfg{Addr: mr.Addr(), PoolSize: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, Instrument(rdb))

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	rdb, err := New(config.RedisCfg{Addr: addr})
	assert.Nil(t, rdb)
	assert.ErrorContains(t, err, "ping redis at "+addr)
}

func TestNew_RequiresPassword(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("secret")

	_, err := New(config.RedisCfg{Addr: mr.Addr()})
	assert.Error(t, err)

	rdb, err := New(config.RedisCfg{Addr: mr.Addr(), Password: "secret"})
	require.NoError(t, err)
	_ = rdb.Close()
}
