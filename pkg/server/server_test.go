package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/fractals/pkg/history"
	"github.com/vango-dev/fractals/pkg/middleware"
	"github.com/vango-dev/fractals/pkg/nav"
	"github.com/vango-dev/fractals/pkg/routes"
	"github.com/vango-dev/fractals/pkg/view"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestServer(t *testing.T, modify func(*Config)) (*Server, *httptest.Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	cfg := DefaultConfig()
	cfg.Base = "/app"
	cfg.Gatherer = reg
	cfg.Metrics = NewMetrics(reg)
	cfg.EngineOptions = []nav.Option{nav.WithMetrics(nav.NewMetrics(nav.WithRegistry(reg)))}
	cfg.Middleware = []func(http.Handler) http.Handler{middleware.Prometheus(middleware.WithRegistry(reg))}
	if modify != nil {
		modify(cfg)
	}

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.SetLogger(testLogger())
	ts := httptest.NewServer(s)
	t.Cleanup(func() {
		s.Shutdown(context.Background())
		ts.Close()
	})
	return s, ts, reg
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%s) error = %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) ServerFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f ServerFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return f
}

func get(t *testing.T, url string, header http.Header) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestShellFallback(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	tests := []struct {
		path string
		code int
	}{
		{"/app", http.StatusOK},
		{"/app/", http.StatusOK},
		{"/app/fractals", http.StatusOK},
		{"/app/no/such/page", http.StatusOK},
		{"/other", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := get(t, ts.URL+tt.path, nil)
			if resp.StatusCode != tt.code {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.code)
			}
			if tt.code != http.StatusOK {
				return
			}
			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), `<base href="/app/">`) {
				t.Errorf("shell does not carry the base path:\n%s", body)
			}
			if !strings.Contains(string(body), `data-socket="/app/_nav"`) {
				t.Errorf("shell does not point at the navigation socket:\n%s", body)
			}
		})
	}
}

func TestShellAtRootBase(t *testing.T) {
	_, ts, _ := newTestServer(t, func(c *Config) { c.Base = "" })

	for _, path := range []string{"/", "/fractals"} {
		resp := get(t, ts.URL+path, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d", path, resp.StatusCode)
		}
	}
	if resp := get(t, ts.URL+"/healthz", nil); resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("/healthz shadowed by the shell")
	}
}

func TestClientScriptETag(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	resp := get(t, ts.URL+"/app"+clientPath, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	resp = get(t, ts.URL+"/app"+clientPath, http.Header{"If-None-Match": {"W/" + etag}})
	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("conditional status = %d, want 304", resp.StatusCode)
	}
}

func TestNavigationSession(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)
	conn := dial(t, ts, "/app/_nav?location=/app/fractals")

	f := readFrame(t, conn)
	if f.Type != FrameMatched || f.Kind != string(nav.KindInitial) || f.Route != routes.Fractals {
		t.Fatalf("initial frame = %+v", f)
	}
	if f.Href != "/app/fractals" || !f.SyncURL {
		t.Errorf("initial href = %q, syncUrl = %v", f.Href, f.SyncURL)
	}
	if !strings.Contains(f.View, `data-view="FractalsPage"`) {
		t.Errorf("initial view = %q", f.View)
	}
	if f.Session == "" {
		t.Error("missing session id")
	}

	conn.WriteJSON(ClientFrame{Op: OpPush, Name: routes.MainPage})
	f = readFrame(t, conn)
	if f.Route != routes.MainPage || f.Kind != string(nav.KindPush) || f.Href != "/app/" {
		t.Fatalf("push frame = %+v", f)
	}
	if f.From != "/fractals" {
		t.Errorf("From = %q, want /fractals", f.From)
	}

	conn.WriteJSON(ClientFrame{Op: OpBack})
	f = readFrame(t, conn)
	if f.Route != routes.Fractals || f.Kind != string(nav.KindPop) {
		t.Fatalf("back frame = %+v", f)
	}

	conn.WriteJSON(ClientFrame{Op: OpForward})
	f = readFrame(t, conn)
	if f.Route != routes.MainPage || f.Kind != string(nav.KindPop) {
		t.Fatalf("forward frame = %+v", f)
	}

	conn.WriteJSON(ClientFrame{Op: OpReplace, URL: "/app/fractals?zoom=2"})
	f = readFrame(t, conn)
	if f.Route != routes.Fractals || f.Kind != string(nav.KindReplace) || f.Path != "/fractals?zoom=2" {
		t.Fatalf("replace frame = %+v", f)
	}
}

func TestNavigationSessionErrors(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)
	conn := dial(t, ts, "/app/_nav")

	if f := readFrame(t, conn); f.Route != routes.MainPage {
		t.Fatalf("initial frame = %+v", f)
	}

	tests := []struct {
		frame ClientFrame
		code  string
	}{
		{ClientFrame{Op: OpPush, Path: "/gallery"}, "N001"},
		{ClientFrame{Op: OpPush, Name: "gallery"}, "N002"},
		{ClientFrame{Op: OpPush}, "N004"},
		{ClientFrame{Op: OpPush, Path: "/../etc"}, "N005"},
		{ClientFrame{Op: "teleport"}, "N005"},
	}
	for _, tt := range tests {
		conn.WriteJSON(tt.frame)
		f := readFrame(t, conn)
		if f.Type != FrameError || f.Code != tt.code || f.Op != tt.frame.Op {
			t.Errorf("%+v: frame = %+v, want error %s", tt.frame, f, tt.code)
		}
	}
}

func staticLoader(name string) view.Loader {
	return func(context.Context) (*view.View, error) {
		return &view.View{Name: name, Body: []byte(name)}, nil
	}
}

// letterTable routes "/" to home and "/a", "/b" to a and b. loadA, when
// set, replaces the loader of "/a".
func letterTable(loadA view.Loader) *routes.Table {
	if loadA == nil {
		loadA = staticLoader("a")
	}
	t := routes.NewTable(
		routes.Descriptor{Path: "/", Aliases: []string{""}, Name: "home", Load: staticLoader("home")},
		routes.Descriptor{Path: "/a", Name: "a", Load: loadA},
		routes.Descriptor{Path: "/b", Name: "b", Load: staticLoader("b")},
	)
	return &t
}

func TestSessionFramesRunInArrivalOrder(t *testing.T) {
	_, ts, _ := newTestServer(t, func(c *Config) { c.Table = letterTable(nil) })
	conn := dial(t, ts, "/app/_nav")
	if f := readFrame(t, conn); f.Route != "home" {
		t.Fatalf("initial frame = %+v", f)
	}

	for i := 0; i < 30; i++ {
		conn.WriteJSON(ClientFrame{Op: OpPush, Path: "/a"})
		conn.WriteJSON(ClientFrame{Op: OpPush, Path: "/b"})

		f := readFrame(t, conn)
		if f.Route == "a" {
			if f.From != "/" {
				t.Fatalf("round %d: a frame = %+v", i, f)
			}
			f = readFrame(t, conn)
		}
		if f.Type != FrameMatched || f.Route != "b" {
			t.Fatalf("round %d: last frame = %+v, want route b", i, f)
		}

		conn.WriteJSON(ClientFrame{Op: OpPush, Path: "/"})
		if f := readFrame(t, conn); f.Route != "home" || f.From != "/b" {
			t.Fatalf("round %d: frame after b = %+v", i, f)
		}
	}
}

func TestSessionNewerFrameCancelsLoadingView(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	slow := func(context.Context) (*view.View, error) {
		close(started)
		<-release
		return &view.View{Name: "a"}, nil
	}

	_, ts, _ := newTestServer(t, func(c *Config) { c.Table = letterTable(slow) })
	t.Cleanup(func() { once.Do(func() { close(release) }) })
	conn := dial(t, ts, "/app/_nav")
	readFrame(t, conn)

	conn.WriteJSON(ClientFrame{Op: OpPush, Path: "/a"})
	<-started
	conn.WriteJSON(ClientFrame{Op: OpPush, Path: "/b"})

	f := readFrame(t, conn)
	if f.Route != "b" || f.From != "/" {
		t.Fatalf("frame = %+v, want b from /", f)
	}
	once.Do(func() { close(release) })

	conn.WriteJSON(ClientFrame{Op: OpBack})
	if f := readFrame(t, conn); f.Route != "home" || f.Kind != string(nav.KindPop) {
		t.Errorf("back frame = %+v, want home", f)
	}
}

func TestSessionOutOfRangeMoveReportsDelta(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)
	conn := dial(t, ts, "/app/_nav")
	readFrame(t, conn)

	tests := []struct {
		frame ClientFrame
		delta int
	}{
		{ClientFrame{Op: OpBack}, -1},
		{ClientFrame{Op: OpForward}, 1},
		{ClientFrame{Op: OpGo, Delta: -3}, -3},
	}
	for _, tt := range tests {
		conn.WriteJSON(tt.frame)
		f := readFrame(t, conn)
		if f.Type != FrameError || f.Code != "N007" || f.Delta != tt.delta {
			t.Errorf("%+v: frame = %+v, want N007 with delta %d", tt.frame, f, tt.delta)
		}
	}
}

func TestNavigationSessionUnknownInitialLocation(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)
	conn := dial(t, ts, "/app/_nav?location=/app/gallery")

	f := readFrame(t, conn)
	if f.Type != FrameError || f.Op != "start" || f.Code != "N001" {
		t.Fatalf("frame = %+v", f)
	}

	// The session stays usable.
	conn.WriteJSON(ClientFrame{Op: OpPush, Path: "/fractals"})
	if f := readFrame(t, conn); f.Route != routes.Fractals {
		t.Errorf("frame = %+v", f)
	}
}

func TestMemoryModeDoesNotSyncURL(t *testing.T) {
	_, ts, _ := newTestServer(t, func(c *Config) { c.Mode = history.ModeMemory })
	conn := dial(t, ts, "/app/_nav?location=/app/fractals")

	// Memory history ignores the browser URL.
	f := readFrame(t, conn)
	if f.Route != routes.MainPage || f.SyncURL {
		t.Errorf("frame = %+v", f)
	}
}

func TestHashModeHref(t *testing.T) {
	_, ts, _ := newTestServer(t, func(c *Config) { c.Mode = history.ModeHash })
	conn := dial(t, ts, "/app/_nav?location="+"%2Fapp%2F%23%2Ffractals")

	f := readFrame(t, conn)
	if f.Route != routes.Fractals || f.Href != "/app#/fractals" {
		t.Errorf("frame = %+v", f)
	}
}

func TestOriginCheck(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/app/_nav"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	if err == nil {
		t.Fatal("cross-origin dial should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v", resp)
	}
}

func TestAllowOrigins(t *testing.T) {
	check := AllowOrigins("https://Fractals.example/")

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://server.local", true},
		{"https://fractals.example", true},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "http://server.local/_nav", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := check(r); got != tt.want {
			t.Errorf("origin %q = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestMaxSessions(t *testing.T) {
	_, ts, _ := newTestServer(t, func(c *Config) { c.MaxSessions = 1 })

	first := dial(t, ts, "/app/_nav")
	readFrame(t, first)

	second := dial(t, ts, "/app/_nav")
	f := readFrame(t, second)
	if f.Type != FrameError || f.Op != "connect" {
		t.Errorf("frame = %+v", f)
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	s, ts, _ := newTestServer(t, nil)
	conn := dial(t, ts, "/app/_nav")
	readFrame(t, conn)

	if n := s.Sessions().Count(); n != 1 {
		t.Fatalf("Count() = %d, want 1", n)
	}
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := s.Sessions().Count(); n != 0 {
		t.Errorf("Count() after shutdown = %d", n)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to be closed")
	}
	if stats := s.Sessions().Stats(); stats.TotalCreated != 1 || stats.TotalClosed != 1 || stats.Peak != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)
	conn := dial(t, ts, "/app/_nav?location=/app/fractals")
	readFrame(t, conn)

	resp := get(t, ts.URL+"/metrics", nil)
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		"fractals_server_nav_sessions_total 1",
		`fractals_navigations_total{result="ok",route="fractals"} 1`,
		`fractals_server_nav_frames_total{direction="out",type="matched"} 1`,
		`fractals_http_requests_total{code="101",method="GET",route="/app/_nav"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestNewRejectsInvalidTable(t *testing.T) {
	bad := routes.NewTable(routes.Descriptor{Path: "/", Name: "a"})
	if _, err := New(&Config{Table: &bad}); err == nil {
		t.Error("expected validation error")
	}
}
