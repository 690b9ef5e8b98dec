package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/fractals/pkg/history"
	"github.com/vango-dev/fractals/pkg/nav"
	"github.com/vango-dev/fractals/pkg/routes"
)

// Config configures the HTTP server.
type Config struct {
	// Address is the address to listen on (e.g., ":8080").
	// Default: ":8080".
	Address string

	// Base is the deployed base path, forwarded to every session's history.
	Base string

	// Mode is the history mode of navigation sessions.
	// Default: web.
	Mode history.Mode

	// Table is the route table. Default: routes.BuildRoutes().
	Table *routes.Table

	// EngineOptions are applied to every session's engine.
	EngineOptions []nav.Option

	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// Metrics records session metrics. May be nil.
	Metrics *Metrics

	// Middleware wraps every request, after request IDs and panic recovery.
	Middleware []func(http.Handler) http.Handler

	// WebSocket buffer sizes. Default: 4096.
	ReadBufferSize  int
	WriteBufferSize int

	// MaxSessions limits concurrent navigation sessions. 0 means no limit.
	MaxSessions int

	// CheckOrigin validates the navigation socket origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// IdleTimeout closes a navigation session without traffic.
	// Pings are sent at half this interval. Default: 60 seconds.
	IdleTimeout time.Duration

	// WriteTimeout bounds one frame write. Default: 10 seconds.
	WriteTimeout time.Duration

	// ReadHeaderTimeout bounds reading request headers. Default: 5 seconds.
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":8080",
		Mode:              history.ModeWeb,
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		CheckOrigin:       SameOriginCheck,
		IdleTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// withDefaults returns a copy of c with unset fields filled in.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		return defaults
	}
	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.Mode == "" {
		out.Mode = defaults.Mode
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = defaults.CheckOrigin
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = defaults.IdleTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.Table == nil {
		t := routes.BuildRoutes()
		out.Table = &t
	}
	return &out
}

// SameOriginCheck accepts a request whose Origin host matches its Host.
// Requests without an Origin header are accepted.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil || r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}

// AllowOrigins accepts same-origin requests and the listed origins.
func AllowOrigins(origins ...string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(strings.ToLower(o), "/")] = true
	}
	return func(r *http.Request) bool {
		if SameOriginCheck(r) {
			return true
		}
		return allowed[strings.ToLower(r.Header.Get("Origin"))]
	}
}

// mountPath returns the path the server is mounted under: the base with
// any hash part removed and no trailing slash.
func mountPath(base string) string {
	base = history.NormalizeBase(base)
	if i := strings.Index(base, "#"); i >= 0 {
		base = strings.TrimRight(base[:i], "/")
	}
	return base
}
