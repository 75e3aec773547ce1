package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/authorityguard/artifact"
	"github.com/c360studio/authorityguard/auth"
	"github.com/c360studio/authorityguard/config"
	"github.com/c360studio/authorityguard/source/inspect"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, source, err := g.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			app, err := NewApp(cfg, g.logger)
			if err != nil {
				if errors.Is(err, config.ErrMissingAccessKey) {
					return fmt.Errorf("%w (or set %s)", err, config.EnvAccessKeyHash)
				}
				return err
			}

			reload := func() (*config.Config, error) {
				next, _, err := config.NewLoader(g.logger).Load(g.configPath)
				if err != nil {
					return nil, err
				}
				if err := next.Auth.Validate(); err != nil {
					return nil, err
				}
				if addr != "" {
					next.Server.Addr = addr
				}
				return next, nil
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			g.logger.Info("Authority Guard ready",
				"version", Version,
				"addr", cfg.Server.Addr,
				"config", source)

			if err := app.Run(ctx, source, reload); err != nil {
				return err
			}
			g.logger.Info("Authority Guard shutdown complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func scanCmd(g *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan <url>",
		Short: "List same-domain sitemap candidates found on a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.loadConfig()
			if err != nil {
				return err
			}
			d, err := newDiscoverer(cfg.Scan, nil, g.logger)
			if err != nil {
				return err
			}

			result, err := d.Discover(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			for _, c := range result.Candidates {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			if result.Insufficient {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning: auto-scan found few links; list pages manually with `authorityguard sitemap --url`.")
			}
			if result.Truncated {
				fmt.Fprintf(cmd.ErrOrStderr(), "Note: results capped at %d URLs.\n", len(result.Candidates))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func inspectCmd(g *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <url>",
		Short: "Show the metadata and readable text of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.loadConfig()
			if err != nil {
				return err
			}
			d, err := newDiscoverer(cfg.Scan, nil, g.logger)
			if err != nil {
				return err
			}

			page, err := inspect.New(d.Fetcher(), g.logger).Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), page)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "URL:         %s\n", page.URL)
			fmt.Fprintf(out, "Title:       %s\n", page.Title)
			fmt.Fprintf(out, "Description: %s\n", page.Description)
			fmt.Fprintf(out, "Keywords:    %s\n", page.Keywords)
			fmt.Fprintf(out, "Author:      %s\n", page.Author)
			fmt.Fprintf(out, "Site:        %s\n", page.SiteName)
			fmt.Fprintf(out, "Canonical:   %s\n", page.Canonical)
			fmt.Fprintf(out, "\n%s\n", page.Markdown)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func robotsCmd(g *globalFlags) *cobra.Command {
	var (
		allow  []string
		output string
	)

	cmd := &cobra.Command{
		Use:   "robots",
		Short: "Generate robots.txt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.loadConfig()
			if err != nil {
				return err
			}
			catalog := botCatalog(cfg.Robots)
			if !cmd.Flags().Changed("allow") {
				for _, b := range catalog {
					allow = append(allow, b.Name)
				}
			}
			return writeArtifact(cmd, output, artifact.Robots(catalog, allow))
		},
	}

	cmd.Flags().StringSliceVar(&allow, "allow", nil, "Bots to allow explicitly (default: all known bots)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func sitemapCmd(g *globalFlags) *cobra.Command {
	var (
		urls   []string
		seed   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Generate sitemap.xml from a scan or a manual URL list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (seed == "") == (len(urls) == 0) {
				return errors.New("use exactly one of --scan or --url")
			}

			list := artifact.ManualURLs(urls)
			if seed != "" {
				cfg, _, err := g.loadConfig()
				if err != nil {
					return err
				}
				d, err := newDiscoverer(cfg.Scan, nil, g.logger)
				if err != nil {
					return err
				}
				result, err := d.Discover(cmd.Context(), seed)
				if err != nil {
					return err
				}
				if result.Insufficient {
					return errors.New("auto-scan found few links; list pages with --url instead")
				}
				list = result.Candidates
			}

			doc, err := artifact.Sitemap(list, time.Now())
			if err != nil {
				return err
			}
			return writeArtifact(cmd, output, doc)
		},
	}

	cmd.Flags().StringSliceVar(&urls, "url", nil, "Page URL to include (repeatable, up to 5)")
	cmd.Flags().StringVar(&seed, "scan", "", "Homepage to scan for same-domain links")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func schemaCmd() *cobra.Command {
	var (
		in     artifact.SchemaInput
		output string
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Generate a schema.org JSON-LD block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := artifact.Schema(in)
			if err != nil {
				return err
			}
			return writeArtifact(cmd, output, out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Type, "type", artifact.SchemaPerson, "Entity type (Person or Organization)")
	f.StringVar(&in.Name, "name", "", "Name of the person or organization")
	f.StringVar(&in.Role, "role", "", "Job title (Person) or industry (Organization)")
	f.StringVar(&in.Website, "website", "", "Website URL")
	f.StringVar(&in.Bio, "bio", "", "Short description")
	f.StringVar(&in.LinkedIn, "linkedin", "", "LinkedIn profile URL")
	f.StringVar(&in.Twitter, "twitter", "", "Twitter/X profile URL")
	f.StringVar(&in.Other, "other", "", "Other profile URL")
	f.StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func metaCmd() *cobra.Command {
	var (
		in                             artifact.MetaInput
		noIndex, noFollow, noCanonical bool
		output                         string
	)

	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Generate the HTML <head> meta block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Index = !noIndex
			in.Follow = !noFollow
			in.Canonical = !noCanonical
			return writeArtifact(cmd, output, artifact.Meta(in))
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "Page title (60 characters max)")
	f.StringVar(&in.Description, "description", "", "Meta description (300 characters max)")
	f.StringVar(&in.Keywords, "keywords", "", "Comma-separated keywords")
	f.StringVar(&in.Author, "author", "", "Author name")
	f.StringVar(&in.URL, "url", "", "Canonical page URL")
	f.BoolVar(&noIndex, "noindex", false, "Ask crawlers not to index the page")
	f.BoolVar(&noFollow, "nofollow", false, "Ask crawlers not to follow links")
	f.BoolVar(&noCanonical, "no-canonical", false, "Omit the canonical link")
	f.StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func hashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key [key]",
		Short: "Hash an access key for auth.access_key_hash",
		Long: `Hash an access key for auth.access_key_hash.

The key is read from the first argument, or from the first line of stdin
when no argument is given, so it can stay out of shell history.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read key: %w", err)
				}
				key = strings.TrimRight(line, "\r\n")
			}

			hash, err := auth.HashKey(key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// writeArtifact prints content, or writes it to path when one is given.
func writeArtifact(cmd *cobra.Command, path, content string) error {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
