package history

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Mode selects how locations are reflected in the URL bar.
type Mode string

const (
	ModeWeb    Mode = "web"
	ModeHash   Mode = "hash"
	ModeMemory Mode = "memory"
)

// ErrUnknownMode is returned by ParseMode for unsupported modes.
var ErrUnknownMode = errors.New("unknown history mode")

// ParseMode parses a history mode name. "html5" and "" mean web.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "web", "html5":
		return ModeWeb, nil
	case "hash":
		return ModeHash, nil
	case "memory", "abstract":
		return ModeMemory, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// EventType describes how the location changed.
type EventType string

const (
	EventPush    EventType = "push"
	EventReplace EventType = "replace"
	EventPop     EventType = "pop"
)

// Event is delivered to listeners when the cursor moves.
type Event struct {
	Type  EventType
	From  string
	To    string
	Delta int
}

// Listener observes history traversal.
type Listener func(Event)

// History is a navigation history backend.
type History interface {
	// Mode returns the history mode.
	Mode() Mode

	// Base returns the normalized base ("" for the root).
	Base() string

	// Location returns the current location relative to the base.
	Location() string

	// Href returns the URL the browser shows for a location.
	Href(location string) string

	// Strip converts a browser URL into a location relative to the base.
	Strip(rawURL string) string

	// SyncsURL reports whether locations are mirrored in the URL bar.
	SyncsURL() bool

	// Push appends a location after the cursor, discarding forward entries.
	Push(location string)

	// Replace rewrites the current entry.
	Replace(location string)

	// Go moves the cursor by delta and notifies listeners. It reports
	// false, without moving, when the target is out of range.
	Go(delta int) (string, bool)

	// Listen registers fn for traversal events and returns a function
	// that removes it.
	Listen(fn Listener) func()

	// Position returns the cursor index.
	Position() int

	// Len returns the number of entries.
	Len() int
}

// New creates a history of the given mode. initialURL is the URL the
// browser reported on load; it is ignored in memory mode.
func New(mode Mode, base, initialURL string) (History, error) {
	switch mode {
	case ModeWeb, "":
		return NewWeb(base, initialURL), nil
	case ModeHash:
		return NewHash(base, initialURL), nil
	case ModeMemory:
		return NewMemory(base), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

// NormalizeBase normalizes a deploy-time base path: a scheme and host
// prefix is dropped, a leading slash is ensured and trailing slashes are
// removed. The root base normalizes to "".
func NormalizeBase(base string) string {
	if i := strings.Index(base, "://"); i >= 0 {
		rest := base[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			base = rest[j:]
		} else {
			base = ""
		}
	}
	if base != "" && base[0] != '/' && base[0] != '#' {
		base = "/" + base
	}
	return strings.TrimRight(base, "/")
}

// stack is the entry list shared by every mode.
type stack struct {
	mu        sync.Mutex
	entries   []string
	pos       int
	listeners map[int]Listener
	nextID    int
}

func (s *stack) init(initial string) {
	s.entries = []string{initial}
	s.pos = 0
}

func (s *stack) location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[s.pos]
}

func (s *stack) push(location string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries[:s.pos+1], location)
	s.pos++
}

func (s *stack) replace(location string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[s.pos] = location
}

func (s *stack) move(delta int) (string, bool) {
	s.mu.Lock()
	target := s.pos + delta
	if delta == 0 || target < 0 || target >= len(s.entries) {
		loc := s.entries[s.pos]
		s.mu.Unlock()
		return loc, false
	}
	from := s.entries[s.pos]
	s.pos = target
	to := s.entries[target]
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	ev := Event{Type: EventPop, From: from, To: to, Delta: delta}
	for _, fn := range listeners {
		fn(ev)
	}
	return to, true
}

func (s *stack) listen(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listeners == nil {
		s.listeners = make(map[int]Listener)
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *stack) position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

func (s *stack) length() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// stripBase removes base from path when it is a whole-segment prefix.
// Comparison is case-insensitive.
func stripBase(path, base string) string {
	if base == "" {
		return path
	}
	if len(path) < len(base) || !strings.EqualFold(path[:len(base)], base) {
		return path
	}
	rest := path[len(base):]
	if rest == "" {
		return "/"
	}
	if rest[0] != '/' && rest[0] != '?' && rest[0] != '#' {
		return path
	}
	if rest[0] != '/' {
		return "/" + rest
	}
	return rest
}

// pathOf drops scheme and host from a URL.
func pathOf(rawURL string) string {
	if i := strings.Index(rawURL, "://"); i >= 0 {
		rest := rawURL[i+3:]
		if j := strings.IndexAny(rest, "/?#"); j >= 0 {
			return rest[j:]
		}
		return "/"
	}
	return rawURL
}
