package history

// MemoryHistory is an in-memory stack that never touches the URL bar.
type MemoryHistory struct {
	stack
	base string
}

// NewMemory creates a memory history starting at the root.
func NewMemory(base string) *MemoryHistory {
	h := &MemoryHistory{base: NormalizeBase(base)}
	h.init("/")
	return h
}

// Mode implements History.
func (h *MemoryHistory) Mode() Mode { return ModeMemory }

// Base implements History.
func (h *MemoryHistory) Base() string { return h.base }

// SyncsURL implements History.
func (h *MemoryHistory) SyncsURL() bool { return false }

// Href implements History.
func (h *MemoryHistory) Href(location string) string {
	if location == "" {
		location = "/"
	}
	return h.base + location
}

// Strip implements History.
func (h *MemoryHistory) Strip(rawURL string) string {
	return stripBase(pathOf(rawURL), h.base)
}

// Location implements History.
func (h *MemoryHistory) Location() string { return h.location() }

// Push implements History.
func (h *MemoryHistory) Push(location string) { h.push(location) }

// Replace implements History.
func (h *MemoryHistory) Replace(location string) { h.replace(location) }

// Go implements History.
func (h *MemoryHistory) Go(delta int) (string, bool) { return h.move(delta) }

// Listen implements History.
func (h *MemoryHistory) Listen(fn Listener) func() { return h.listen(fn) }

// Position implements History.
func (h *MemoryHistory) Position() int { return h.position() }

// Len implements History.
func (h *MemoryHistory) Len() int { return h.length() }
