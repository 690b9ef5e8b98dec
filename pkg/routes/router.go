package routes

import (
	"github.com/vango-dev/fractals/internal/errors"
	"github.com/vango-dev/fractals/pkg/history"
	"github.com/vango-dev/fractals/pkg/nav"
)

// RouterConfig configures CreateRouter.
type RouterConfig struct {
	// Mode is the history mode. Default: web.
	Mode history.Mode

	// Base is the deployed base path, forwarded unmodified to the history.
	Base string

	// InitialURL is the browser URL on load (web and hash modes).
	InitialURL string

	// Table is the route table. Default: BuildRoutes().
	Table *Table

	// Options are passed to the engine.
	Options []nav.Option
}

// CreateRouter validates the route table, creates the history for the
// configured mode and returns the navigation engine.
func CreateRouter(cfg RouterConfig) (*nav.Engine, error) {
	table := cfg.Table
	if table == nil {
		t := BuildRoutes()
		table = &t
	}
	if err := Validate(*table); err != nil {
		return nil, err
	}

	mode := cfg.Mode
	if mode == "" {
		mode = history.ModeWeb
	}
	h, err := history.New(mode, cfg.Base, cfg.InitialURL)
	if err != nil {
		return nil, errors.New("N006").WithDetailf("mode %q", mode).Wrap(err)
	}

	return nav.New(table.NavRoutes(), h, cfg.Options...)
}
