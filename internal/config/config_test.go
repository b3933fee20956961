package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/mini-rodalies-3d/metrograph/internal/metro"
	"github.com/mini-rodalies-3d/metrograph/internal/source"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"STATIONS_SOURCE", "ACCESSES_SOURCE", "SOURCE_MAX_AGE_HOURS", "COLOR_SCHEME",
		"ADJACENCY", "UNRESOLVED_POLICY", "OUTPUT", "RENDER_WIDTH_CM", "SNAPSHOT_RETENTION",
		"PORT", "ALLOWED_ORIGINS", "VERBOSE", "DATABASE_URL", "SQLITE_DATABASE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "estacions_linia.csv", cfg.StationsSource)
	assert.Equal(t, "accessos_estacio_linia.csv", cfg.AccessesSource)
	assert.Equal(t, 7*24*time.Hour, cfg.SourceMaxAge)
	assert.Equal(t, metro.SchemeLine, cfg.ColorScheme)
	assert.Equal(t, "metro.png", cfg.Output)
	assert.Equal(t, 29.7, cfg.RenderWidthCM)
	assert.Equal(t, 10, cfg.SnapshotRetention)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.False(t, cfg.Verbose)
	require.NoError(t, cfg.Validate())

	opts, err := cfg.BuildOptions()
	require.NoError(t, err)
	assert.Equal(t, metro.Options{}, opts)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STATIONS_SOURCE", "https://example.org/estacions.csv")
	t.Setenv("SOURCE_MAX_AGE_HOURS", "0")
	t.Setenv("TMB_APP_ID", "id")
	t.Setenv("TMB_APP_KEY", "key")
	t.Setenv("COLOR_SCHEME", "index")
	t.Setenv("ADJACENCY", "station_order")
	t.Setenv("UNRESOLVED_POLICY", "skip")
	t.Setenv("OUTPUT", "out/metro.svg")
	t.Setenv("RENDER_WIDTH_CM", "10")
	t.Setenv("RENDER_HEIGHT_CM", "5.5")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("VERBOSE", "true")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://example.org/estacions.csv", cfg.StationsSource)
	assert.Equal(t, time.Duration(0), cfg.SourceMaxAge)
	assert.Equal(t, source.Auth{AppID: "id", AppKey: "key"}, cfg.SourceAuth())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.Verbose)

	opts, err := cfg.BuildOptions()
	require.NoError(t, err)
	assert.Equal(t, metro.Options{OnUnresolved: metro.SkipUnresolved, Adjacency: metro.StationOrder}, opts)

	color, err := cfg.Colorer()
	require.NoError(t, err)
	assert.Equal(t, "pink", color(500, "L1"))

	ro := cfg.RenderOptions()
	assert.InDelta(t, float64(10*vg.Centimeter), float64(ro.Width), 1e-9)
	assert.InDelta(t, float64(5.5*vg.Centimeter), float64(ro.Height), 1e-9)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("SNAPSHOT_RETENTION", "many")
	t.Setenv("RENDER_WIDTH_CM", "wide")
	t.Setenv("VERBOSE", "sometimes")

	cfg := Load()
	assert.Equal(t, 10, cfg.SnapshotRetention)
	assert.Equal(t, 29.7, cfg.RenderWidthCM)
	assert.False(t, cfg.Verbose)
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	cfg := Load()
	cfg.ColorScheme = "rainbow"
	cfg.Adjacency = "alphabetical"
	cfg.UnresolvedPolicy = "ignore"
	cfg.Output = "metro.bmp"
	cfg.RenderWidthCM = 0
	cfg.SnapshotRetention = 0

	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"COLOR_SCHEME", "ADJACENCY", "UNRESOLVED_POLICY", "OUTPUT", "render size", "SNAPSHOT_RETENTION"} {
		assert.Contains(t, err.Error(), key)
	}
}
