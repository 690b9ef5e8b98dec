// Package routes declares the fractals route table and builds the
// navigation engine over it.
//
// The table is an ordered list of descriptors, each pairing a URL path
// and a route name with a deferred view loader:
//
//	/          mainPage   MainPage.html      (alias: "")
//	/fractals  fractals   FractalsPage.html
//
// The table is built once at startup and never mutated. The engine is
// created from it at the application entry point (one per session) and
// passed down explicitly:
//
//	engine, err := routes.CreateRouter(routes.RouterConfig{
//	    Mode: history.ModeWeb,
//	    Base: os.Getenv("BASE_URL"),
//	})
package routes
