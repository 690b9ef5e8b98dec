// Package nav implements the navigation engine: it resolves locations
// against a route table, lazily loads the matched view and keeps a
// history in sync.
//
// The engine owns one history and one view cache, so it is scoped to a
// single user session. Create it once at the session entry point and
// pass it down; the route table it reads is shared and immutable.
//
// # Resolution
//
// A Target names a route by path, by name or by full browser URL:
//
//	nav.ToPath("/fractals")          // relative to the history base
//	nav.ToName("fractals")           // programmatic navigation
//	nav.ToURL("/app/fractals?z=2")   // as reported by the browser
//
// Paths are canonicalized before matching (see package routepath) and
// the empty path aliases the root. Routes are matched first-wins in table
// order.
//
// # Loading
//
// A route's view loader runs on the first navigation to that route. The
// result is cached for the engine's lifetime; concurrent navigations to
// the same route share one load. Failed loads are not cached.
//
// # Cancellation
//
// Starting a navigation supersedes any navigation still waiting for its
// view. The superseded call returns ErrCancelled, leaves the history
// untouched and emits no event.
//
// # Usage
//
//	h := history.NewWeb(os.Getenv("BASE_URL"), requestURL)
//	engine, err := nav.New(routes, h, nav.WithLogger(logger))
//	engine.OnMatched(func(n *nav.Navigation) { render(n.View) })
//	engine.Start(ctx)
//	engine.Push(ctx, nav.ToName("fractals"))
package nav
