// Package middleware provides HTTP observability middleware for the
// fractals server.
//
// # OpenTelemetry Middleware
//
// OpenTelemetry starts a server span for every request, named after the
// chi route pattern, and records the response status:
//
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("fractals"),
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given.
//
// # Prometheus Metrics
//
// Prometheus records:
//   - fractals_http_requests_total: requests by route pattern, method and status code
//   - fractals_http_request_duration_seconds: request duration by route pattern
//   - fractals_http_requests_in_flight: requests being served
//
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
//
// Route patterns rather than raw paths are used as labels, so the history
// fallback does not create one series per browser URL.
package middleware
