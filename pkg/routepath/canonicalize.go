// Package routepath parses and canonicalizes navigation locations.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Location is a parsed navigation target relative to the history base.
type Location struct {
	// Path is the canonical path, always starting with "/".
	Path string

	// Query is the raw query string (without leading "?").
	Query string

	// Fragment is the raw fragment (without leading "#").
	Fragment string

	// Changed indicates the path was modified during canonicalization.
	Changed bool
}

// String reassembles the location.
func (l Location) String() string {
	s := l.Path
	if l.Query != "" {
		s += "?" + l.Query
	}
	if l.Fragment != "" {
		s += "#" + l.Fragment
	}
	return s
}

// Path canonicalization errors.
var (
	ErrAbsoluteURL           = errors.New("absolute URL not allowed as navigation target")
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in path segment")
)

// Parse splits input into path, query and fragment and canonicalizes the path.
//
// The path is canonicalized as follows:
//   - "" becomes "/"; a missing leading slash is added
//   - repeated slashes collapse (/a//b → /a/b)
//   - "." segments are removed and ".." segments resolved
//   - a trailing slash is removed (except for the root)
//   - percent escapes are decoded
//
// Inputs are rejected when they are absolute URLs ("http://", "//"),
// contain a backslash or NUL byte, carry malformed percent escapes or
// encoded slashes, or use ".." to climb above the root.
func Parse(input string) (Location, error) {
	rest, fragment, _ := strings.Cut(input, "#")
	path, query, _ := strings.Cut(rest, "?")

	// Only the path can carry a scheme or authority.
	if strings.HasPrefix(path, "//") || strings.Contains(strings.SplitN(path, "/", 2)[0], ":") {
		return Location{}, ErrAbsoluteURL
	}

	canon, err := Canonicalize(path)
	if err != nil {
		return Location{}, err
	}

	return Location{
		Path:     canon,
		Query:    query,
		Fragment: fragment,
		Changed:  canon != path,
	}, nil
}

// Canonicalize normalizes a bare path (no query or fragment).
func Canonicalize(path string) (string, error) {
	if strings.Contains(path, "\\") {
		return "", ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return "", ErrNullByteInPath
	}

	segments := strings.Split(path, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if strings.Contains(seg, "%") {
			decoded, err := url.PathUnescape(seg)
			if err != nil {
				return "", ErrInvalidPercentEscape
			}
			if strings.Contains(decoded, "/") {
				return "", ErrEncodedSlashInSegment
			}
			seg = decoded
		}

		switch seg {
		case "", ".":
		case "..":
			if len(out) == 0 {
				return "", ErrPathEscapesRoot
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}

	return "/" + strings.Join(out, "/"), nil
}

// Segments splits a canonical path into its segments. The root has none.
func Segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
