// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdflinks/internal/download"
	"github.com/pdiddy/pdflinks/internal/extract"
	"github.com/pdiddy/pdflinks/internal/fetch"
	"github.com/pdiddy/pdflinks/internal/history"
	"github.com/pdiddy/pdflinks/internal/resolve"
	"github.com/pdiddy/pdflinks/internal/scan"
	"github.com/pdiddy/pdflinks/pkg/types"
)

const (
	defaultOutput  = "pdflinks.txt"
	defaultDir     = "pdf_downloads"
	defaultRetries = 2
	envPrefix      = "PDFLINKS"
)

// cli carries state shared by the command tree for one execution.
type cli struct {
	v   *viper.Viper
	log *log.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "pdflinks URL",
		Short: "List and download the PDF links on a web page",
		Long: `pdflinks fetches one web page, finds every link to a PDF document,
resolves the links to absolute URLs, and writes them to a file, one per
line, sorted and without duplicates. With --download it also saves each
PDF into a directory, numbering names that are already taken.

A URL without http:// or https:// is fetched over https.`,
		Example: `  pdflinks https://example.com/papers
  pdflinks -d -D reports example.com/annual
  pdflinks -q -o links.txt https://example.com/docs`,
		Args:              urlArg,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              c.runScan,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default: ./pdflinks.yaml or ~/.config/pdflinks/pdflinks.yaml)")
	pf.BoolP("quiet", "q", false, "suppress informational and success messages")
	pf.String("history-db", "", "SQLite database recording each run (disabled when empty)")

	f := root.Flags()
	f.BoolP("download", "d", false, "download every PDF found")
	f.StringP("output", "o", defaultOutput, "file receiving the list of links")
	f.StringP("dir", "D", defaultDir, "destination directory for downloads")
	f.String("parser", extract.ParserRegex, "link extractor: regex or html")
	f.Int("concurrency", 1, "number of simultaneous downloads")
	f.Duration("timeout", fetch.DefaultTimeout, "timeout for each HTTP request")
	f.Duration("connect-timeout", fetch.DefaultConnectTimeout, "timeout for establishing a connection")
	f.String("user-agent", "", "User-Agent header (default \"pdflinks/<version>\")")
	f.Int("retries", defaultRetries, "retries on HTTP 429 and 503 responses")
	f.Bool("strict-status", false, "treat non-2xx responses as failures")
	f.String("manifest", "", "write a YAML record of the downloads to this file")

	root.AddCommand(newVersionCmd(), c.newHistoryCmd())
	return root
}

// urlArg requires exactly one positional URL.
func urlArg(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 1:
		return nil
	case 0:
		return errors.New("missing URL: pass the page to scan, for example: pdflinks https://example.com/papers")
	default:
		return fmt.Errorf("expected one URL, got %d: %s", len(args), strings.Join(args, " "))
	}
}

// setup loads configuration and builds the logger. Flags win over
// environment variables, which win over the config file.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	bindFlags(c.v, cmd.Flags())

	cfgFile := c.v.GetString("config")
	if cfgFile != "" {
		c.v.SetConfigFile(cfgFile)
	} else {
		c.v.SetConfigName("pdflinks")
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			c.v.AddConfigPath(filepath.Join(home, ".config", "pdflinks"))
		}
	}

	c.v.SetEnvPrefix(envPrefix)
	c.v.AutomaticEnv()

	readErr := c.v.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(readErr, &notFound) {
			return fmt.Errorf("reading config: %w", readErr)
		}
	}

	c.log = newLogger(cmd.ErrOrStderr(), c.v.GetBool("quiet"))
	if readErr == nil {
		c.log.Info("using config file", "path", c.v.ConfigFileUsed())
	}
	return nil
}

// bindFlags registers every flag with v under its name with dashes
// replaced by underscores, so "connect-timeout" reads as connect_timeout
// in the config file and PDFLINKS_CONNECT_TIMEOUT in the environment.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

// loadConfig assembles the run configuration from the bound sources.
func (c *cli) loadConfig() types.Config {
	userAgent := c.v.GetString("user_agent")
	if userAgent == "" {
		userAgent = defaultUserAgent()
	}
	return types.Config{
		HTTP: types.HTTPConfig{
			Timeout:        c.v.GetDuration("timeout"),
			ConnectTimeout: c.v.GetDuration("connect_timeout"),
			UserAgent:      userAgent,
			MaxRetries:     c.v.GetInt("retries"),
			StrictStatus:   c.v.GetBool("strict_status"),
		},
		Download: types.DownloadConfig{
			Enabled:      c.v.GetBool("download"),
			Dir:          c.v.GetString("dir"),
			Concurrency:  c.v.GetInt("concurrency"),
			ManifestPath: c.v.GetString("manifest"),
		},
		OutputPath:  c.v.GetString("output"),
		Parser:      c.v.GetString("parser"),
		Quiet:       c.v.GetBool("quiet"),
		HistoryPath: c.v.GetString("history_db"),
	}
}

func (c *cli) runScan(cmd *cobra.Command, args []string) error {
	cfg := c.loadConfig()
	started := time.Now()

	base, defaulted, err := resolve.NormalizeBase(args[0])
	if err != nil {
		return err
	}
	if defaulted {
		c.log.Warn("URL has no http:// or https:// prefix, using https", "url", base)
	}

	extractor, err := extract.New(cfg.Parser)
	if err != nil {
		return err
	}
	if cfg.OutputPath == "" {
		return errors.New("output file must not be empty")
	}

	// Arguments are valid from here on; later failures are not usage errors.
	cmd.SilenceUsage = true

	ctx := cmd.Context()
	fetcher := fetch.New(cfg.HTTP)

	c.log.Info("fetching page", "url", base)
	links, err := scan.Scanner{Fetcher: fetcher, Extractor: extractor}.Scan(ctx, base)
	if err != nil {
		return err
	}

	rec := types.RunRecord{PageURL: base, StartedAt: started, Links: len(links)}

	if len(links) == 0 {
		c.log.Warn("no PDF links found", "url", base)
		c.recordHistory(cmd, cfg, rec)
		return nil
	}

	c.log.Info(fmt.Sprintf("found %d PDF link(s)", len(links)))
	if !cfg.Quiet {
		out := cmd.OutOrStdout()
		for _, link := range links {
			fmt.Fprintln(out, link)
		}
	}

	if err := scan.WriteLinkFile(cfg.OutputPath, links); err != nil {
		return fmt.Errorf("saving links: %w", err)
	}
	c.log.Info("links saved", "file", cfg.OutputPath)

	if cfg.Download.Enabled {
		rec.Summary = c.download(cmd, cfg, fetcher, base, links)
	}

	c.recordHistory(cmd, cfg, rec)
	return nil
}

// download runs the download phase. Per-file failures are logged and
// counted; they never fail the command.
func (c *cli) download(cmd *cobra.Command, cfg types.Config, fetcher *fetch.Fetcher, base string, links types.LinkSet) types.DownloadSummary {
	c.log.Info("downloading", "count", len(links), "dir", cfg.Download.Dir)

	m := download.NewManager(fetcher, cfg.Download.Dir, cfg.Download.Concurrency, c.progress)
	summary := m.Download(cmd.Context(), links)

	if summary.HasFailures() {
		c.log.Warn("downloads finished with failures",
			"succeeded", summary.Succeeded, "failed", summary.Failed, "total", summary.Total)
	} else {
		c.log.Info("downloads finished",
			"succeeded", summary.Succeeded, "failed", summary.Failed, "total", summary.Total)
	}

	if cfg.Download.ManifestPath != "" {
		manifest := download.Manifest{
			PageURL:     base,
			Dir:         cfg.Download.Dir,
			CompletedAt: time.Now().UTC(),
			Summary:     summary,
		}
		if err := download.WriteManifest(cfg.Download.ManifestPath, manifest); err != nil {
			c.log.Warn("manifest not written", "err", err)
		} else {
			c.log.Info("manifest saved", "file", cfg.Download.ManifestPath)
		}
	}
	return summary
}

func (c *cli) progress(p types.Progress) {
	prefix := fmt.Sprintf("[%d/%d] %s", p.Done, p.Total, p.Name)
	if p.Outcome.Succeeded() {
		c.log.Info(prefix, "bytes", p.Outcome.Bytes)
		return
	}
	c.log.Error(prefix, "url", p.Outcome.URL, "reason", p.Outcome.Reason)
}

// recordHistory stores rec when a history database is configured. A
// ledger failure is reported but does not fail the run.
func (c *cli) recordHistory(cmd *cobra.Command, cfg types.Config, rec types.RunRecord) {
	if cfg.HistoryPath == "" {
		return
	}
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		c.log.Warn("history not recorded", "err", err)
		return
	}
	defer store.Close()
	if _, err := store.Record(cmd.Context(), rec); err != nil {
		c.log.Warn("history not recorded", "err", err)
	}
}
