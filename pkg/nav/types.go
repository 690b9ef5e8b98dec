package nav

import (
	"net/url"
	"time"

	"github.com/vango-dev/fractals/pkg/routepath"
	"github.com/vango-dev/fractals/pkg/view"
)

// Route is a route as the engine sees it.
type Route struct {
	// Path is the URL path pattern (static segments only).
	Path string

	// Name identifies the route for programmatic navigation.
	Name string

	// Aliases are extra paths resolving to this route.
	Aliases []string

	// Load produces the route's view on demand.
	Load view.Loader
}

// Target is a navigation destination. Exactly one of Path, Name or URL
// should be set; an empty Target means the root.
type Target struct {
	// Path is a location relative to the history base.
	Path string

	// Name is a route name.
	Name string

	// URL is a full browser URL, including the base.
	URL string

	// Query is merged into the resolved location's query string.
	Query url.Values

	// Fragment replaces the resolved location's fragment when set.
	Fragment string
}

// ToPath targets a location relative to the history base.
func ToPath(path string) Target { return Target{Path: path} }

// ToName targets a route by name.
func ToName(name string) Target { return Target{Name: name} }

// ToURL targets a full browser URL.
func ToURL(rawURL string) Target { return Target{URL: rawURL} }

// String returns a human-readable form of the target for logs.
func (t Target) String() string {
	switch {
	case t.Name != "":
		return "name:" + t.Name
	case t.URL != "":
		return "url:" + t.URL
	}
	return "path:" + t.Path
}

// Resolved is a target matched against the route table.
type Resolved struct {
	// Route is the matched route.
	Route *Route

	// Index is the route's position in the table.
	Index int

	// Location is the canonical location relative to the base.
	Location routepath.Location

	// Href is the URL the browser shows for Location.
	Href string
}

// FullPath returns the location with query and fragment.
func (r *Resolved) FullPath() string {
	return r.Location.String()
}

// Kind describes how a navigation was triggered.
type Kind string

const (
	KindInitial Kind = "initial"
	KindPush    Kind = "push"
	KindReplace Kind = "replace"
	KindPop     Kind = "pop"
)

// Navigation is a completed navigation: the resolved route and its view.
type Navigation struct {
	Resolved

	// Kind is how the navigation was triggered.
	Kind Kind

	// From is the previous location, empty for the initial navigation.
	From string

	// View is the loaded view of the matched route.
	View *view.View

	// At is when the navigation completed.
	At time.Time
}

// MatchedFunc receives route-matched events.
type MatchedFunc func(*Navigation)
