package history

// WebHistory mirrors locations in the browser path: base + location.
type WebHistory struct {
	stack
	base string
}

// NewWeb creates a web history. initialURL is the browser URL on load
// (e.g. "/app/fractals?zoom=2"); empty starts at the root.
func NewWeb(base, initialURL string) *WebHistory {
	h := &WebHistory{base: NormalizeBase(base)}
	initial := "/"
	if initialURL != "" {
		initial = h.Strip(initialURL)
	}
	h.init(initial)
	return h
}

// Mode implements History.
func (h *WebHistory) Mode() Mode { return ModeWeb }

// Base implements History.
func (h *WebHistory) Base() string { return h.base }

// SyncsURL implements History.
func (h *WebHistory) SyncsURL() bool { return true }

// Href implements History.
func (h *WebHistory) Href(location string) string {
	if location == "" {
		location = "/"
	}
	if h.base == "" {
		return location
	}
	return h.base + location
}

// Strip implements History.
func (h *WebHistory) Strip(rawURL string) string {
	return stripBase(pathOf(rawURL), h.base)
}

// Location implements History.
func (h *WebHistory) Location() string { return h.location() }

// Push implements History.
func (h *WebHistory) Push(location string) { h.push(location) }

// Replace implements History.
func (h *WebHistory) Replace(location string) { h.replace(location) }

// Go implements History.
func (h *WebHistory) Go(delta int) (string, bool) { return h.move(delta) }

// Listen implements History.
func (h *WebHistory) Listen(fn Listener) func() { return h.listen(fn) }

// Position implements History.
func (h *WebHistory) Position() int { return h.position() }

// Len implements History.
func (h *WebHistory) Len() int { return h.length() }
