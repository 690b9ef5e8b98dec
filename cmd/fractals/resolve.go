package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/fractals/pkg/nav"
	"github.com/vango-dev/fractals/pkg/routes"
)

func resolveCmd(dir *string) *cobra.Command {
	var (
		byName bool
		load   bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Resolve a URL against the route table",
		Long: `Resolve a browser URL (including the base path) to a route, the way a
navigation session would.

Examples:
  BASE_URL=/app fractals resolve /app/fractals
  fractals resolve --name fractals
  fractals resolve --load /`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*dir, getenv)
			if err != nil {
				return err
			}
			table := routeTable(cfg, getenv)
			engine, err := routes.CreateRouter(routes.RouterConfig{
				Mode:  cfg.HistoryMode(),
				Base:  cfg.Base,
				Table: &table,
			})
			if err != nil {
				return err
			}
			defer engine.Close()

			to := nav.ToURL(args[0])
			if byName {
				to = nav.ToName(args[0])
			}
			res, err := engine.Resolve(to)
			if err != nil {
				return err
			}
			success(cmd, "%s", res.Route.Name)
			info(cmd, "location: %s", res.FullPath())
			info(cmd, "href:     %s", res.Href)

			if load {
				n, err := engine.Push(cmd.Context(), to)
				if err != nil {
					return err
				}
				info(cmd, "view:     %s (%s, %d bytes)", n.View.Name, n.View.ContentType, len(n.View.Body))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&byName, "name", "n", false, "Treat the argument as a route name")
	cmd.Flags().BoolVarP(&load, "load", "l", false, "Load the route's view")

	return cmd
}
