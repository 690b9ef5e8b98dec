package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/vango-dev/fractals/internal/errors"
	"github.com/vango-dev/fractals/pkg/history"
)

const (
	// JSONFileName is the JSON configuration file name.
	JSONFileName = "fractals.json"

	// TOMLFileName is the TOML configuration file name. It is read when
	// no JSON file is present.
	TOMLFileName = "fractals.toml"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultShutdownTimeout is the default graceful shutdown timeout.
	DefaultShutdownTimeout = "10s"

	// DefaultLoadTimeout is the default view load timeout.
	DefaultLoadTimeout = "30s"
)

// Environment variables read by ApplyEnv.
const (
	EnvBaseURL    = "BASE_URL"
	EnvHistory    = "FRACTALS_HISTORY"
	EnvAddr       = "FRACTALS_ADDR"
	EnvViewsDir   = "FRACTALS_VIEWS_DIR"
	EnvS3Bucket   = "FRACTALS_S3_BUCKET"
	EnvS3Prefix   = "FRACTALS_S3_PREFIX"
	EnvS3Region   = "FRACTALS_S3_REGION"
	EnvS3Endpoint = "FRACTALS_S3_ENDPOINT"
	EnvLogLevel   = "FRACTALS_LOG_LEVEL"
)

// Config is the fractals.json / fractals.toml configuration.
type Config struct {
	// Base is the deployed base path. It is handed to the history as is.
	Base string `json:"base,omitempty" toml:"base,omitempty"`

	// History is the history mode: web, hash or memory.
	History string `json:"history,omitempty" toml:"history,omitempty"`

	// Server contains HTTP server settings.
	Server ServerConfig `json:"server" toml:"server"`

	// Views selects where view bundles are read from.
	Views ViewsConfig `json:"views" toml:"views"`

	// Navigation contains engine settings.
	Navigation NavigationConfig `json:"navigation" toml:"navigation"`

	// Log contains logging settings.
	Log LogConfig `json:"log" toml:"log"`

	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" toml:"addr,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g. "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" toml:"shutdownTimeout,omitempty"`

	// Metrics exposes /metrics.
	Metrics bool `json:"metrics" toml:"metrics"`

	// AllowedOrigins are the origins accepted on the navigation socket.
	// Empty means same origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" toml:"allowedOrigins,omitempty"`
}

// ViewsConfig selects the view bundle source. With neither Dir nor an S3
// bucket set, the bundles embedded in the binary are used.
type ViewsConfig struct {
	// Dir is a directory holding view bundles.
	Dir string `json:"dir,omitempty" toml:"dir,omitempty"`

	// S3 reads view bundles from a bucket.
	S3 S3Config `json:"s3" toml:"s3"`
}

// S3Config locates view bundles in S3.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty" toml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" toml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" toml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" toml:"endpoint,omitempty"`
}

// NavigationConfig contains engine settings.
type NavigationConfig struct {
	// LoadTimeout bounds one view load (e.g. "30s").
	LoadTimeout string `json:"loadTimeout,omitempty" toml:"loadTimeout,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" toml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" toml:"format,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		History: string(history.ModeWeb),
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
			Metrics:         true,
		},
		Navigation: NavigationConfig{
			LoadTimeout: DefaultLoadTimeout,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration in dir: fractals.json, or fractals.toml
// when there is no JSON file.
func Load(dir string) (*Config, error) {
	jsonPath := filepath.Join(dir, JSONFileName)
	if _, err := os.Stat(jsonPath); err == nil {
		return LoadFile(jsonPath)
	}
	tomlPath := filepath.Join(dir, TOMLFileName)
	if _, err := os.Stat(tomlPath); err == nil {
		return LoadFile(tomlPath)
	}
	return nil, errors.New("C001").
		WithDetail("No " + JSONFileName + " or " + TOMLFileName + " found in " + dir).
		WithSuggestion("Run without a config file to use defaults, or create " + JSONFileName)
}

// LoadFile reads the configuration at path. The format follows the file
// extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("C001").WithDetail(path).Wrap(err)
	}

	cfg := New()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("C002").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid " + formatOf(path))
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Exists reports whether dir holds a configuration file.
func Exists(dir string) bool {
	for _, name := range []string{JSONFileName, TOMLFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// ApplyEnv overrides fields from environment variables read with getenv.
// Unset or empty variables leave the field alone.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Base, EnvBaseURL)
	set(&c.History, EnvHistory)
	set(&c.Server.Addr, EnvAddr)
	set(&c.Views.Dir, EnvViewsDir)
	set(&c.Views.S3.Bucket, EnvS3Bucket)
	set(&c.Views.S3.Prefix, EnvS3Prefix)
	set(&c.Views.S3.Region, EnvS3Region)
	set(&c.Views.S3.Endpoint, EnvS3Endpoint)
	set(&c.Log.Level, EnvLogLevel)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.History == "" {
		c.History = string(history.ModeWeb)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Navigation.LoadTimeout == "" {
		c.Navigation.LoadTimeout = DefaultLoadTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := history.ParseMode(c.History); err != nil {
		return errors.New("C003").
			WithDetailf("history %q", c.History).
			WithSuggestion("Use web, hash or memory")
	}
	if c.Server.Addr == "" {
		return errors.New("C003").WithDetail("server.addr is empty")
	}
	for field, v := range map[string]string{
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
		"navigation.loadTimeout": c.Navigation.LoadTimeout,
	} {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			return errors.New("C003").
				WithDetailf("%s %q", field, v).
				WithSuggestion("Use a positive Go duration such as \"10s\"")
		}
	}
	if c.Views.Dir != "" && c.Views.S3.Bucket != "" {
		return errors.New("C003").
			WithDetail("views.dir and views.s3.bucket are both set").
			WithSuggestion("Choose one view source")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.New("C003").WithDetailf("log.level %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("C003").WithDetailf("log.format %q", c.Log.Format)
	}
	return nil
}

// HistoryMode returns the parsed history mode.
func (c *Config) HistoryMode() history.Mode {
	mode, err := history.ParseMode(c.History)
	if err != nil {
		return history.ModeWeb
	}
	return mode
}

// ShutdownTimeout returns the parsed shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return durationOr(c.Server.ShutdownTimeout, DefaultShutdownTimeout)
}

// LoadTimeout returns the parsed view load timeout.
func (c *Config) LoadTimeout() time.Duration {
	return durationOr(c.Navigation.LoadTimeout, DefaultLoadTimeout)
}

// Logger returns a logger writing to w with the configured level and format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Encode writes the configuration to w as "json" or "toml".
func (c *Config) Encode(w io.Writer, format string) error {
	switch format {
	case "toml":
		return toml.NewEncoder(w).Encode(c)
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}
	return errors.New("C003").WithDetailf("format %q", format)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}

func durationOr(v, fallback string) time.Duration {
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func formatOf(path string) string {
	if isTOML(path) {
		return "TOML"
	}
	return "JSON"
}

// String returns a one-line summary for logs.
func (c *Config) String() string {
	src := "embedded"
	switch {
	case c.Views.Dir != "":
		src = "dir:" + c.Views.Dir
	case c.Views.S3.Bucket != "":
		src = fmt.Sprintf("s3://%s/%s", c.Views.S3.Bucket, c.Views.S3.Prefix)
	}
	return fmt.Sprintf("base=%q history=%s addr=%s views=%s", c.Base, c.History, c.Server.Addr, src)
}
