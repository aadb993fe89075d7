package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Goopi7/crop-connect/internal/config"
	"github.com/Goopi7/crop-connect/internal/crops"
)

func TestOpenStores_Memory(t *testing.T) {
	cfg := config.Default()
	ctx := context.Background()

	stores, err := OpenStores(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer stores.Close(ctx)

	assert.IsType(t, &crops.MemoryRepository{}, stores.Crops)
	require.NotNil(t, stores.Agronomy)

	catalog, err := crops.DefaultCatalog()
	require.NoError(t, err)
	n, err := stores.Crops.Upsert(ctx, catalog)
	require.NoError(t, err)

	cleared, err := stores.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(n), cleared)

	all, err := stores.Crops.FindAll(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOpenStores_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "sqlite"

	_, err := OpenStores(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
