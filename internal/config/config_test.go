package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.True(t, cfg.Store.SeedOnStart)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.CacheTTL.Std())
	assert.Equal(t, "@every 10m", cfg.Catalog.WarmSchedule)
	assert.Equal(t, 500, cfg.Recommendation.ExportLimit)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.GetServerAddr())
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"port": 9090, "read_timeout": "3s"},
		"store": {"driver": "mongo", "seed_on_start": false},
		"mongo": {"uri": "mongodb://db:27017", "database": "crops"},
		"catalog": {"cache_ttl": "1m", "warm_schedule": "*/5 * * * *"},
		"recommendation": {"tables_path": "tables.yaml", "export_limit": 50},
		"logging": {"level": "debug", "format": "json"}
	}`)
	t.Setenv("CONFIG_PATH", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout.Std())
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout.Std())
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.False(t, cfg.Store.SeedOnStart)
	assert.Equal(t, "crops", cfg.Mongo.Database)
	assert.Equal(t, time.Minute, cfg.Catalog.CacheTTL.Std())
	assert.Equal(t, "tables.yaml", cfg.Recommendation.TablesPath)
	assert.Equal(t, 50, cfg.Recommendation.ExportLimit)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfig_ConfigPathEnv(t *testing.T) {
	path := writeConfig(t, `{"server": {"port": 7070}}`)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig("ignored.json")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `{"server": {"port": 9090}, "store": {"driver": "memory"}}`)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SERVER_PORT", "8181")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_HOST", "pg")
	t.Setenv("DATABASE_PORT", "6543")
	t.Setenv("DATABASE_USER", "farmer")
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("DATABASE_DBNAME", "crops")
	t.Setenv("DATABASE_SSLMODE", "require")
	t.Setenv("CATALOG_CACHE_TTL", "90s")
	t.Setenv("CATALOG_WARM_SCHEDULE", "")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 90*time.Second, cfg.Catalog.CacheTTL.Std())
	assert.Empty(t, cfg.Catalog.WarmSchedule)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "postgres://farmer:secret@pg:6543/crops?sslmode=require", cfg.Database.GetDatabaseURL())
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "malformed file", body: `{"server":`},
		{name: "bad duration", body: `{"catalog": {"cache_ttl": "soon"}}`},
		{name: "unknown driver", body: `{"store": {"driver": "sqlite"}}`},
		{name: "bad port", body: `{"server": {"port": 70000}}`},
		{name: "bad schedule", body: `{"catalog": {"warm_schedule": "every day"}}`},
		{name: "bad port env", body: `{}`, env: map[string]string{"SERVER_PORT": "http"}},
		{name: "bad metrics env", body: `{}`, env: map[string]string{"METRICS_ENABLED": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"2m30s"`)))
	assert.Equal(t, 150*time.Second, d.Std())

	require.NoError(t, d.UnmarshalJSON([]byte(`1000000000`)))
	assert.Equal(t, time.Second, d.Std())

	out, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1s"`, string(out))
}
