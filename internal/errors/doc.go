// Package errors provides structured, coded errors for the fractals
// route table, navigation engine, view sources and configuration.
//
// # Error Categories
//
//   - route: route table construction and validation
//   - navigation: resolving and performing a navigation
//   - view: loading a view bundle
//   - config: configuration files and environment overrides
//
// # Error Codes
//
// Each error has a unique code (e.g., "R001") that maps to a short
// message, a longer explanation and a documentation URL. Codes are
// grouped by prefix: R for route, N for navigation, V for view and C for
// config.
//
// # Usage
//
//	err := errors.New("R002").
//	    WithDetail(`name "mainPage" is used by "/" and ""`).
//	    WithSuggestion("Give each route a unique name or declare an alias")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R002: Duplicate route name
//	//
//	//   name "mainPage" is used by "/" and ""
//	//
//	//   Hint: Give each route a unique name or declare an alias
package errors
