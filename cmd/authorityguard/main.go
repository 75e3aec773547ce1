// Package main provides the authorityguard binary entry point.
// Authority Guard generates the files that make a site readable and
// attributable for AI crawlers: robots.txt, sitemap.xml, JSON-LD entity
// schema and HTML meta tags.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/authorityguard/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "authorityguard"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logger     *slog.Logger
}

// loadConfig runs the layered loader with the --config override.
func (g *globalFlags) loadConfig() (*config.Config, string, error) {
	cfg, source, err := config.NewLoader(g.logger).Load(g.configPath)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	return cfg, source, nil
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "AI crawler readiness toolkit",
		Long: `Authority Guard builds the files that let AI crawlers find, read and
attribute a website:

- robots.txt that explicitly allows GPTBot, CCBot, PerplexityBot and Google-Extended
- sitemap.xml from an automatic same-domain scan or a manual list
- schema.org JSON-LD for a Person or Organization
- an HTML <head> block with title, description and robots directives

Run "authorityguard serve" for the web dashboard, or use the subcommands
to print a single artifact.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			g.logger = newLogger(cmd.ErrOrStderr(), g.logLevel)
			slog.SetDefault(g.logger)
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(g),
		scanCmd(g),
		inspectCmd(g),
		robotsCmd(g),
		sitemapCmd(g),
		schemaCmd(),
		metaCmd(),
		hashKeyCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
