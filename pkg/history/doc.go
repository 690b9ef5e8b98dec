// Package history implements the navigation history backends used by the
// navigation engine.
//
// Three modes are provided:
//
//	web     the browser URL bar mirrors the location (/app/fractals),
//	        with back/forward support
//	hash    the location lives after a "#" (/app#/fractals), so the
//	        server only ever sees the base path
//	memory  an in-memory stack; the URL bar is never touched
//
// Every mode keeps an ordered stack of entries and a cursor. Push drops
// the entries ahead of the cursor, Replace rewrites the current entry and
// Go moves the cursor. Only Go notifies listeners, mirroring how browsers
// fire popstate for traversal but not for pushState.
//
// # Usage
//
//	h, err := history.New(history.ModeWeb, os.Getenv("BASE_URL"), "/app/fractals")
//	h.Location()          // "/fractals"
//	h.Href("/fractals")   // "/app/fractals"
package history
