package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fractals/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		var fe *errors.FractalsError
		if stderrors.As(err, &fe) {
			fmt.Fprintln(os.Stderr, fe.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var dir string

	root := &cobra.Command{
		Use:   "fractals",
		Short: "Serve the fractals front-end",
		Long: `fractals serves the fractals web front-end under a deploy-time base
path and drives its navigation.

Configuration is read from fractals.json or fractals.toml in the
working directory (or --dir) and overridden by BASE_URL and the
FRACTALS_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&dir, "dir", "C", ".", "Directory holding the configuration file")

	root.AddCommand(
		serveCmd(&dir),
		routesCmd(&dir),
		resolveCmd(&dir),
		configCmd(&dir),
		versionCmd(),
	)
	return root
}

// success prints a success message.
func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", fmt.Sprintf(format, args...))
}
