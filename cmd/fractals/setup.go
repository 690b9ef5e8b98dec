package main

import (
	"os"

	"github.com/vango-dev/fractals/internal/config"
	"github.com/vango-dev/fractals/pkg/routes"
	"github.com/vango-dev/fractals/pkg/view"
)

// loadConfig reads the configuration in dir, falling back to defaults
// when there is no file, then applies environment overrides.
func loadConfig(dir string, getenv func(string) string) (*config.Config, error) {
	cfg := config.New()
	if config.Exists(dir) {
		var err error
		if cfg, err = config.Load(dir); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// viewSource returns the view bundle source selected by cfg.
func viewSource(cfg *config.Config, getenv func(string) string) view.Source {
	switch {
	case cfg.Views.Dir != "":
		return view.NewDirSource(cfg.Views.Dir)
	case cfg.Views.S3.Bucket != "":
		client := view.NewS3Client(cfg.Views.S3.Region, cfg.Views.S3.Endpoint, getenv)
		return view.NewS3Source(client, cfg.Views.S3.Bucket, cfg.Views.S3.Prefix)
	}
	return nil
}

// routeTable builds the route table over the configured view source.
func routeTable(cfg *config.Config, getenv func(string) string) routes.Table {
	if src := viewSource(cfg, getenv); src != nil {
		return routes.Build(src)
	}
	return routes.BuildRoutes()
}

var getenv = os.Getenv
