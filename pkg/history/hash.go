package history

import "strings"

// HashHistory keeps the location after a "#": base#location.
type HashHistory struct {
	stack
	base string
}

// NewHash creates a hash history. The base always carries a "#".
func NewHash(base, initialURL string) *HashHistory {
	base = NormalizeBase(base)
	if !strings.Contains(base, "#") {
		base += "#"
	}
	h := &HashHistory{base: base}
	initial := "/"
	if initialURL != "" {
		initial = h.Strip(initialURL)
	}
	h.init(initial)
	return h
}

// Mode implements History.
func (h *HashHistory) Mode() Mode { return ModeHash }

// Base implements History.
func (h *HashHistory) Base() string { return h.base }

// SyncsURL implements History.
func (h *HashHistory) SyncsURL() bool { return true }

// Href implements History.
func (h *HashHistory) Href(location string) string {
	if location == "" {
		location = "/"
	}
	return h.base + location
}

// Strip implements History. Only the part after "#" is significant.
func (h *HashHistory) Strip(rawURL string) string {
	_, after, ok := strings.Cut(pathOf(rawURL), "#")
	if !ok || after == "" {
		return "/"
	}
	if after[0] != '/' {
		after = "/" + after
	}
	return after
}

// Location implements History.
func (h *HashHistory) Location() string { return h.location() }

// Push implements History.
func (h *HashHistory) Push(location string) { h.push(location) }

// Replace implements History.
func (h *HashHistory) Replace(location string) { h.replace(location) }

// Go implements History.
func (h *HashHistory) Go(delta int) (string, bool) { return h.move(delta) }

// Listen implements History.
func (h *HashHistory) Listen(fn Listener) func() { return h.listen(fn) }

// Position implements History.
func (h *HashHistory) Position() int { return h.position() }

// Len implements History.
func (h *HashHistory) Len() int { return h.length() }
