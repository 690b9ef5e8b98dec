package server

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
)

// clientPath is the navigation client script path, relative to the base.
const clientPath = "/_fractals/nav.js"

//go:embed assets/shell.html assets/nav.js
var assets embed.FS

var (
	shellTemplate = template.Must(template.ParseFS(assets, "assets/shell.html"))
	clientJS      = mustRead("assets/nav.js")
	clientETag    = etagOf(clientJS)
)

func mustRead(name string) []byte {
	data, err := assets.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return data
}

func etagOf(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:]))
}

type shellData struct {
	Base   string
	Client string
	Socket string
	Mode   string
}

// serveShell writes the history fallback page. It never matches routes:
// the navigation session resolves the location once the client connects.
func (s *Server) serveShell(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := shellTemplate.Execute(&buf, shellData{
		Base:   s.mount,
		Client: clientPath,
		Socket: NavPath,
		Mode:   string(s.config.Mode),
	})
	if err != nil {
		s.logger.Error("shell render failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) serveClient(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", clientETag)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")

	if etagMatches(r.Header.Get("If-None-Match"), clientETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(clientJS)
}

func etagMatches(ifNoneMatchHeader, etag string) bool {
	if ifNoneMatchHeader == "" || etag == "" {
		return false
	}
	// If-None-Match: "abc", W/"def"
	for _, part := range strings.Split(ifNoneMatchHeader, ",") {
		candidate := strings.TrimSpace(part)
		if candidate == etag || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
