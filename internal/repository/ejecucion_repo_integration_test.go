//go:build integration

package repository

// Recent-runs index against a real Redis.
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"fmt"
	"testing"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestEjecucionRepo_IndiceRedis(t *testing.T) {
	ctx := context.Background()

	container, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	repo := NewEjecucionRepository(&fakeBlobWriter{}, rdb)

	for i := 0; i < recentRunsCap+5; i++ {
		reg := registroCerrado()
		reg.RunID = fmt.Sprintf("run-%d", i)
		_, err := repo.Guardar(ctx, "in", reg)
		require.NoError(t, err)
	}

	n, err := rdb.LLen(ctx, RecentRunsKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(recentRunsCap), n)

	runs, err := repo.ListarRecientes(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, fmt.Sprintf("run-%d", recentRunsCap+4), runs[0].RunID)
	assert.Equal(t, 4, runs[0].Procesadas)
	assert.Equal(t, 1, runs[0].Errores)

	runs, err = repo.ListarRecientes(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 20)
}
