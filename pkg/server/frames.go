package server

import (
	stderrors "errors"

	"github.com/vango-dev/fractals/internal/errors"
	"github.com/vango-dev/fractals/pkg/nav"
)

// Client operations.
const (
	OpPush    = "push"
	OpReplace = "replace"
	OpBack    = "back"
	OpForward = "forward"
	OpGo      = "go"
)

// Server frame types.
const (
	FrameMatched = "matched"
	FrameError   = "error"
)

// ClientFrame is a navigation request sent by the browser.
type ClientFrame struct {
	Op    string `json:"op"`
	Path  string `json:"path,omitempty"`
	Name  string `json:"name,omitempty"`
	URL   string `json:"url,omitempty"`
	Delta int    `json:"delta,omitempty"`
}

// target returns the navigation target of a push or replace.
func (f ClientFrame) target() (nav.Target, error) {
	switch {
	case f.Name != "":
		return nav.ToName(f.Name), nil
	case f.URL != "":
		return nav.ToURL(f.URL), nil
	case f.Path != "":
		return nav.ToPath(f.Path), nil
	}
	return nav.Target{}, errors.New("N004").WithDetailf("op %q", f.Op)
}

// navigates reports whether the frame asks for a navigation the engine
// can attempt.
func (f ClientFrame) navigates() bool {
	switch f.Op {
	case OpPush, OpReplace:
		return f.Name != "" || f.URL != "" || f.Path != ""
	case OpBack, OpForward, OpGo:
		return true
	}
	return false
}

// ServerFrame is a route-matched event or an error.
type ServerFrame struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`

	// Matched frames.
	Kind        string `json:"kind,omitempty"`
	Route       string `json:"route,omitempty"`
	Path        string `json:"path,omitempty"`
	Href        string `json:"href,omitempty"`
	From        string `json:"from,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	View        string `json:"view,omitempty"`
	SyncURL     bool   `json:"syncUrl,omitempty"`

	// Error frames.
	Op      string `json:"op,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Delta   int    `json:"delta,omitempty"`
}

func matchedFrame(session string, n *nav.Navigation, syncURL bool) ServerFrame {
	f := ServerFrame{
		Type:    FrameMatched,
		Session: session,
		Kind:    string(n.Kind),
		Route:   n.Route.Name,
		Path:    n.FullPath(),
		Href:    n.Href,
		From:    n.From,
		SyncURL: syncURL,
	}
	if n.View != nil {
		f.ContentType = n.View.ContentType
		f.View = string(n.View.Body)
	}
	return f
}

func errorFrame(session, op string, err error) ServerFrame {
	f := ServerFrame{
		Type:    FrameError,
		Session: session,
		Op:      op,
		Code:    errors.Code(err),
		Message: err.Error(),
	}
	var fe *errors.FractalsError
	if stderrors.As(err, &fe) {
		f.Message = fe.Message
		if fe.Detail != "" {
			f.Message += ": " + fe.Detail
		}
	}
	return f
}
