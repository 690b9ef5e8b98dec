package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fractals/pkg/routes"
)

func routesCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List and validate the route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*dir, getenv)
			if err != nil {
				return err
			}
			table := routeTable(cfg, getenv)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPATH\tALIASES")
			for _, d := range table.All() {
				aliases := make([]string, len(d.Aliases))
				for i, a := range d.Aliases {
					aliases[i] = fmt.Sprintf("%q", a)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.Path, strings.Join(aliases, ", "))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if err := routes.Validate(table); err != nil {
				return err
			}
			success(cmd, "%d routes valid", table.Len())
			return nil
		},
	}
}
