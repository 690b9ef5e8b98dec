package errors

import (
	"sort"
	"sync"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

var (
	registryMu sync.RWMutex

	// registry maps error codes to their templates.
	registry = map[string]ErrorTemplate{
		// ============================================
		// Route Table Errors (R001-R019)
		// ============================================

		"R001": {
			Category: CategoryRoute,
			Message:  "Route name missing",
			Detail:   "Every route descriptor needs a name so it can be reached by programmatic navigation.",
			DocURL:   docURL("R001"),
		},
		"R002": {
			Category: CategoryRoute,
			Message:  "Duplicate route name",
			Detail:   "Two descriptors share a name. Navigation by name would be ambiguous.",
			DocURL:   docURL("R002"),
		},
		"R003": {
			Category: CategoryRoute,
			Message:  "Duplicate route path",
			Detail:   "Two descriptors (or an alias and a descriptor) share a path. Only the first would ever match.",
			DocURL:   docURL("R003"),
		},
		"R004": {
			Category: CategoryRoute,
			Message:  "Route view loader missing",
			Detail:   "A descriptor has no view loader, so navigating to it could never mount a view.",
			DocURL:   docURL("R004"),
		},
		"R005": {
			Category: CategoryRoute,
			Message:  "Invalid route path",
			Detail:   "Route paths must start with \"/\". The empty path is only allowed as an alias of the root.",
			DocURL:   docURL("R005"),
		},
		"R006": {
			Category: CategoryRoute,
			Message:  "Dynamic route segment not supported",
			Detail:   "Route paths are static. Parameter (:id) and catch-all (*rest) segments are rejected.",
			DocURL:   docURL("R006"),
		},

		// ============================================
		// Navigation Errors (N001-N019)
		// ============================================

		"N001": {
			Category: CategoryNavigation,
			Message:  "No route matches path",
			DocURL:   docURL("N001"),
		},
		"N002": {
			Category: CategoryNavigation,
			Message:  "Unknown route name",
			DocURL:   docURL("N002"),
		},
		"N003": {
			Category: CategoryNavigation,
			Message:  "Navigation cancelled",
			Detail:   "A newer navigation started before this one finished loading its view.",
			DocURL:   docURL("N003"),
		},
		"N004": {
			Category: CategoryNavigation,
			Message:  "Empty navigation target",
			DocURL:   docURL("N004"),
		},
		"N005": {
			Category: CategoryNavigation,
			Message:  "Invalid navigation path",
			DocURL:   docURL("N005"),
		},
		"N006": {
			Category: CategoryNavigation,
			Message:  "Unsupported history mode",
			DocURL:   docURL("N006"),
		},
		"N007": {
			Category: CategoryNavigation,
			Message:  "History position out of range",
			DocURL:   docURL("N007"),
		},

		// ============================================
		// View Errors (V001-V019)
		// ============================================

		"V001": {
			Category: CategoryView,
			Message:  "View load failed",
			DocURL:   docURL("V001"),
		},
		"V002": {
			Category: CategoryView,
			Message:  "View bundle not found",
			DocURL:   docURL("V002"),
		},

		// ============================================
		// Config Errors (C001-C019)
		// ============================================

		"C001": {
			Category: CategoryConfig,
			Message:  "Configuration file unreadable",
			DocURL:   docURL("C001"),
		},
		"C002": {
			Category: CategoryConfig,
			Message:  "Configuration file invalid",
			DocURL:   docURL("C002"),
		},
		"C003": {
			Category: CategoryConfig,
			Message:  "Configuration value invalid",
			DocURL:   docURL("C003"),
		},
	}
)

func docURL(code string) string {
	return "https://fractals.vango.dev/docs/errors/" + code
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	t, ok := registry[code]
	return t, ok
}

// Register adds a custom error template.
func Register(code string, template ErrorTemplate) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[code] = template
}
