package nav

import "fmt"

// NavigateOptions configures a navigation.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing.
	Replace bool

	// Query are query parameters to add to the location.
	Query map[string]any

	// Force navigates even when the target equals the current location.
	Force bool
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithQuery adds query parameters to the navigation location.
func WithQuery(query map[string]any) NavigateOption {
	return func(o *NavigateOptions) {
		o.Query = query
	}
}

// WithForce re-runs a navigation to the current location.
func WithForce() NavigateOption {
	return func(o *NavigateOptions) {
		o.Force = true
	}
}

// apply merges the query options into the target.
func (o NavigateOptions) apply(to Target) Target {
	if len(o.Query) == 0 {
		return to
	}
	q := make(map[string][]string, len(to.Query)+len(o.Query))
	for k, v := range to.Query {
		q[k] = append([]string(nil), v...)
	}
	for k, v := range o.Query {
		q[k] = []string{fmt.Sprintf("%v", v)}
	}
	to.Query = q
	return to
}
