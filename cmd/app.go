package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rbnhln/kckScraper/internal/cache"
	"github.com/rbnhln/kckScraper/internal/config"
	"github.com/rbnhln/kckScraper/internal/entry"
	"github.com/rbnhln/kckScraper/internal/scraper"
	"github.com/spf13/cobra"
)

type application struct {
	logger  *slog.Logger
	config  config.Config
	store   *cache.Store
	fetcher *scraper.Fetcher

	out    io.Writer
	errOut io.Writer

	flags struct {
		configPath string
		cacheFile  string
		logLevel   string
	}
}

func (app *application) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "kck-scraper",
		Short:             "Teaching schedules of the department, scraped and cached",
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: app.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&app.flags.configPath, "config", config.DefaultConfigPath(), "config file (.json, .yaml or .yml)")
	pf.StringVar(&app.flags.cacheFile, "cache-file", "", "cache file (overrides cache.file)")
	pf.StringVar(&app.flags.logLevel, "log-level", "info", "Log level: debug|info|warn|error")

	root.AddCommand(
		app.teachersCmd(),
		app.scheduleCmd(),
		app.warmCmd(),
		app.serveCmd(),
		app.versionCmd(),
	)
	return root
}

// setup loads the config and opens the cache for every subcommand that
// talks to the source site.
func (app *application) setup(cmd *cobra.Command, _ []string) error {
	app.logger = newLogger(app.errOut, app.flags.logLevel).With("run", uuid.NewString())

	var (
		cfg *config.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(app.flags.configPath)
	} else {
		cfg, err = config.LoadOrDefault(app.flags.configPath)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if app.flags.cacheFile != "" {
		cfg.Cache.File = app.flags.cacheFile
	}
	if cfg.Source.UserAgent == "" {
		cfg.Source.UserAgent = "kckScraper/" + version
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	durations, err := cfg.Durations()
	if err != nil {
		return err
	}
	app.config = *cfg

	app.store = cache.Open(cfg.Cache.File, app.logger)

	opts := scraper.Options{
		ListURL:    cfg.Source.ListURL,
		ListTTL:    durations.TeacherListTTL,
		TeacherTTL: durations.TeacherTTL,
		Coalesce:   cfg.Fetch.Coalesce,
		Parser:     entry.Parser{},
		Logger:     app.logger,
	}
	client := scraper.NewClient(durations.Timeout, cfg.Source.UserAgent, app.logger)
	app.fetcher = scraper.NewFetcher(scraper.NewDirectory(client, app.store, opts), opts)

	app.logger.Debug("ready", "config", app.flags.configPath, "cache", cfg.Cache.File, "version", version)
	return nil
}

// close persists the cache. Safe to call when setup never ran.
func (app *application) close() error {
	if app.store == nil {
		return nil
	}
	return app.store.Close()
}
