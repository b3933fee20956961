package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/mini-rodalies-3d/metrograph/internal/metro"
	"github.com/mini-rodalies-3d/metrograph/internal/render"
	"github.com/mini-rodalies-3d/metrograph/internal/source"
)

// Config holds all configuration for the CLI and the API server
type Config struct {
	// Datasets
	StationsSource string
	AccessesSource string
	CacheDir       string
	SourceMaxAge   time.Duration

	// Metro/TMB
	TMBAppID  string
	TMBAppKey string

	// Graph assembly
	ColorScheme      string
	Adjacency        string
	UnresolvedPolicy string

	// Rendering
	Output         string
	RenderWidthCM  float64
	RenderHeightCM float64

	// Snapshot export
	SQLiteDatabase    string
	DatabaseURL       string
	SnapshotRetention int

	// API
	Port           string
	AllowedOrigins []string

	Verbose bool
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		// Datasets
		StationsSource: getEnv("STATIONS_SOURCE", "estacions_linia.csv"),
		AccessesSource: getEnv("ACCESSES_SOURCE", "accessos_estacio_linia.csv"),
		CacheDir:       getEnv("CACHE_DIR", "data/cache"),
		SourceMaxAge:   time.Duration(getEnvInt("SOURCE_MAX_AGE_HOURS", 7*24)) * time.Hour,

		// Metro/TMB
		TMBAppID:  getEnv("TMB_APP_ID", ""),
		TMBAppKey: getEnv("TMB_APP_KEY", ""),

		// Graph assembly
		ColorScheme:      getEnv("COLOR_SCHEME", metro.SchemeLine),
		Adjacency:        getEnv("ADJACENCY", "load_order"),
		UnresolvedPolicy: getEnv("UNRESOLVED_POLICY", "fail"),

		// Rendering
		Output:         getEnv("OUTPUT", "metro.png"),
		RenderWidthCM:  getEnvFloat("RENDER_WIDTH_CM", 29.7),
		RenderHeightCM: getEnvFloat("RENDER_HEIGHT_CM", 21),

		// Snapshot export
		SQLiteDatabase:    getEnv("SQLITE_DATABASE", ""),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		SnapshotRetention: getEnvInt("SNAPSHOT_RETENTION", 10),

		// API
		Port:           getEnv("PORT", "8081"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),

		Verbose: getEnvBool("VERBOSE", false),
	}
}

// Validate rejects values no component would accept, reporting all of them at once.
func (c *Config) Validate() error {
	var errs []error

	if c.StationsSource == "" {
		errs = append(errs, errors.New("STATIONS_SOURCE is empty"))
	}
	if c.AccessesSource == "" {
		errs = append(errs, errors.New("ACCESSES_SOURCE is empty"))
	}
	if _, err := metro.ColorerFor(c.ColorScheme); err != nil {
		errs = append(errs, fmt.Errorf("COLOR_SCHEME: %w", err))
	}
	if _, err := metro.ParseAdjacencyMode(c.Adjacency); err != nil {
		errs = append(errs, fmt.Errorf("ADJACENCY: %w", err))
	}
	if _, err := metro.ParseUnresolvedPolicy(c.UnresolvedPolicy); err != nil {
		errs = append(errs, fmt.Errorf("UNRESOLVED_POLICY: %w", err))
	}
	if c.Output != "" {
		if _, err := render.FormatFromPath(c.Output); err != nil {
			errs = append(errs, fmt.Errorf("OUTPUT: %w", err))
		}
	}
	if c.RenderWidthCM <= 0 || c.RenderHeightCM <= 0 {
		errs = append(errs, fmt.Errorf("render size must be positive, got %gx%g cm", c.RenderWidthCM, c.RenderHeightCM))
	}
	if c.SnapshotRetention < 1 {
		errs = append(errs, fmt.Errorf("SNAPSHOT_RETENTION must be at least 1, got %d", c.SnapshotRetention))
	}

	return errors.Join(errs...)
}

// BuildOptions converts the graph assembly settings. Call Validate first.
func (c *Config) BuildOptions() (metro.Options, error) {
	policy, err := metro.ParseUnresolvedPolicy(c.UnresolvedPolicy)
	if err != nil {
		return metro.Options{}, err
	}
	adjacency, err := metro.ParseAdjacencyMode(c.Adjacency)
	if err != nil {
		return metro.Options{}, err
	}
	return metro.Options{OnUnresolved: policy, Adjacency: adjacency}, nil
}

// Colorer returns the station colour scheme
func (c *Config) Colorer() (metro.Colorer, error) {
	return metro.ColorerFor(c.ColorScheme)
}

// RenderOptions returns the image size settings
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		Width:  vg.Length(c.RenderWidthCM) * vg.Centimeter,
		Height: vg.Length(c.RenderHeightCM) * vg.Centimeter,
	}
}

// SourceAuth returns the TMB credentials used when downloading datasets
func (c *Config) SourceAuth() source.Auth {
	return source.Auth{AppID: c.TMBAppID, AppKey: c.TMBAppKey}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
