package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Data.Source)
	assert.Equal(t, "data/clean-data/combined2.csv", cfg.Data.Path)
	assert.Equal(t, "counties", cfg.Data.Table)
	assert.Equal(t, "data/raw-data/counties.csv", cfg.Data.CountiesPath)
	assert.Equal(t, 4, cfg.Cluster.K)
	assert.Equal(t, uint64(42), cfg.Cluster.Seed)
	assert.Equal(t, 300, cfg.Cluster.MaxIterations)
	assert.InDelta(t, 1e-4, cfg.Cluster.Tolerance, 1e-12)
	assert.Equal(t, 1, cfg.Cluster.Inits)
	assert.Equal(t, []string{"red", "green", "purple", "orange"}, cfg.Cluster.Palette)
	assert.False(t, cfg.Cluster.DropIncomplete)
	assert.Equal(t, 2010, cfg.Dashboard.MinYear)
	require.Len(t, cfg.Dashboard.Images, 4)
	assert.Equal(t, "images/Water_Usage_by_Cat.png", cfg.Dashboard.Images[0].Path)
	assert.Equal(t, 750, cfg.Dashboard.Images[0].Width)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 20.0, cfg.Server.RateLimit, 0.001)
	assert.Equal(t, 40, cfg.Server.RateBurst)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
data:
  source: sqlite
  path: water.db
cluster:
  seed: 7
  palette: [blue, teal, gold, pink, gray]
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Data.Source)
	assert.Equal(t, "water.db", cfg.Data.Path)
	assert.Equal(t, uint64(7), cfg.Cluster.Seed)
	assert.Equal(t, []string{"blue", "teal", "gold", "pink", "gray"}, cfg.Cluster.Palette)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 4, cfg.Cluster.K)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
data:
  source: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("WATER_DATA_SOURCE", "postgres")
	t.Setenv("WATER_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Data.Source)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("WATER_SERVER_PORT", "3000")
	t.Setenv("WATER_CLUSTER_K", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Cluster.K)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("data: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "invalid", Format: "json"}))
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Data.Source = "csv"
	cfg.Data.Path = "combined2.csv"
	cfg.Data.MonthlyPath = "monthly.csv"
	cfg.Data.AnnualPath = "annual.csv"
	cfg.Cluster.K = 4
	cfg.Cluster.MaxIterations = 300
	cfg.Cluster.Tolerance = 1e-4
	cfg.Cluster.Inits = 1
	cfg.Cluster.Palette = DefaultPalette
	cfg.Server.Port = 8080
	cfg.Server.RateLimit = 20
	cfg.Server.RateBurst = 40
	return cfg
}

func TestValidateCluster(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("cluster"))

	cfg.Cluster.K = 5
	cfg.Cluster.MaxIterations = 0
	err := cfg.Validate("cluster")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster.palette needs at least cluster.k colors")
	assert.Contains(t, err.Error(), "cluster.max_iterations must be > 0")
}

func TestValidateTimeseries(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("timeseries"))

	cfg.Data.MonthlyPath = ""
	err := cfg.Validate("timeseries")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.monthly_path is required")
}

func TestValidateServe(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.Port = 0
	cfg.Server.RateBurst = 0
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be between 1 and 65535")
	assert.Contains(t, err.Error(), "server.rate_burst")
}

func TestValidateData(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("data"))

	cfg.Data.Source = "postgres"
	err := cfg.Validate("data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.database_url is required for postgres")

	cfg.Data.DatabaseURL = "postgres://localhost/water"
	assert.NoError(t, cfg.Validate("data"))

	cfg.Data.Source = "parquet"
	err = cfg.Validate("cluster")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.source must be one of")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
