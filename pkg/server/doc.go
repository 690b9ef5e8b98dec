// Package server is the HTTP surface of the fractals front-end.
//
// The server never matches routes. Every GET under the base path returns
// the same HTML shell (the history fallback), and the shell's client opens
// a navigation session over a WebSocket at {base}/_nav.
//
// # Architecture
//
//   - Server: chi router with the shell, the client script, the
//     navigation socket, /healthz and /metrics
//   - SessionManager: tracks open sessions and closes them on shutdown
//   - Session: one WebSocket connection with its own nav.Engine and
//     history, seeded from the ?location= query parameter
//
// # Protocol
//
// The client sends JSON operations:
//
//	{"op": "push", "path": "/fractals"}
//	{"op": "replace", "name": "mainPage"}
//	{"op": "back"} / {"op": "forward"} / {"op": "go", "delta": -2}
//
// The server answers with route-matched events or errors:
//
//	{"type": "matched", "kind": "push", "route": "fractals", "href": "/app/fractals", "view": "..."}
//	{"type": "error", "op": "push", "code": "N001", "message": "..."}
//	{"type": "error", "op": "go", "code": "N007", "message": "...", "delta": -2}
//
// Operations run one at a time in the order they arrive. Each navigation
// frame cancels the one still loading its view, and a cancelled
// navigation is dropped silently. Errors for history moves carry the
// delta so the client can step its own history back.
package server
