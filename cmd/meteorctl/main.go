// Command meteorctl queries NeoWs and runs deflection calculations from the terminal.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/neows"
)

type rootOptions struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	verbose bool

	logger *slog.Logger
}

func (o *rootOptions) client() *neows.Client {
	return neows.NewClient(neows.Config{
		BaseURL: o.baseURL,
		APIKey:  o.apiKey,
		Timeout: o.timeout,
	}, o.logger)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "meteorctl",
		Short:         "Inspect near-Earth objects and compute perihelion-raising burns",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", envOr("METEORS_NASA_API_KEY", neows.DefaultAPIKey), "NASA API key")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", envOr("METEORS_NASA_BASE_URL", neows.DefaultBaseURL), "NeoWs base URL")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newLookupCmd(opts))
	cmd.AddCommand(newDeflectCmd(opts))

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	root := newRootCmd()
	root.SetOut(os.Stdout)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
