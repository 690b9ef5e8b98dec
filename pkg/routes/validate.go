package routes

import (
	stderrors "errors"
	"strings"

	"github.com/vango-dev/fractals/internal/errors"
	"github.com/vango-dev/fractals/pkg/routepath"
)

// Validate checks a table for the mistakes navigation cannot recover
// from: missing names or loaders, malformed or dynamic paths, and names
// or paths claimed by more than one descriptor. An alias that repeats
// its own descriptor's path (such as "" for "/") is allowed.
//
// All problems are reported, joined into one error.
func Validate(t Table) error {
	var errs []error
	names := make(map[string]int, t.Len())
	paths := make(map[string]int, t.Len())

	for i, d := range t.descriptors {
		if d.Name == "" {
			errs = append(errs, errors.New("R001").WithDetailf("route %q", d.Path))
		} else if first, dup := names[d.Name]; dup {
			errs = append(errs, errors.New("R002").
				WithDetailf("name %q is used by %q and %q", d.Name, t.descriptors[first].Path, d.Path).
				WithSuggestion("Give each route a unique name, or declare the second path as an alias"))
		} else {
			names[d.Name] = i
		}

		if d.Load == nil {
			errs = append(errs, errors.New("R004").WithDetailf("route %q", d.Name))
		}

		for _, p := range append([]string{d.Path}, d.Aliases...) {
			canon, err := checkPath(p)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if owner, taken := paths[canon]; taken && owner != i {
				errs = append(errs, errors.New("R003").
					WithDetailf("path %q of %q is already routed to %q", p, d.Name, t.descriptors[owner].Name))
				continue
			}
			paths[canon] = i
		}
	}

	return stderrors.Join(errs...)
}

// checkPath validates one route path and returns its canonical form.
func checkPath(p string) (string, error) {
	if p != "" && !strings.HasPrefix(p, "/") {
		return "", errors.New("R005").WithDetailf("path %q", p)
	}
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "*") ||
			(strings.HasPrefix(seg, "[") && strings.HasSuffix(seg, "]")) {
			return "", errors.New("R006").WithDetailf("path %q", p)
		}
	}
	canon, err := routepath.Canonicalize(p)
	if err != nil {
		return "", errors.New("R005").WithDetailf("path %q", p).Wrap(err)
	}
	return canon, nil
}
