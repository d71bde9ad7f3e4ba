package main

import (
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/csheth/cardscout/internal/artwork"
	"github.com/csheth/cardscout/internal/config"
	"github.com/csheth/cardscout/internal/logging"
	"github.com/csheth/cardscout/internal/margins"
	"github.com/csheth/cardscout/internal/stock"
	"github.com/csheth/cardscout/internal/tui"
)

// app bundles the services shared by the TUI and the lookup command.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	closer    io.Closer
	client    *margins.Client
	directory *margins.ScraperDirectory
	stock     *stock.Orchestrator
	artwork   *artwork.Loader
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cardscout",
		Short:         "Search Canadian Magic: The Gathering sellers from the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return runTUI(cmd, a)
		},
	}
	config.RegisterFlags(cmd.PersistentFlags())
	cmd.AddCommand(newLookupCmd())
	return cmd
}

func bootstrap(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger, closer, err := logging.New(cfg.Log.File, logging.ParseLevel(cfg.Log.Level))
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger.Info("[cardscout] starting", "base_url", cfg.API.BaseURL, "command", cmd.Name())

	client := margins.New(margins.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
	})
	directory := margins.NewScraperDirectory(client, cfg.Scrapers.CacheTTL)
	return &app{
		cfg:       cfg,
		logger:    logger,
		closer:    closer,
		client:    client,
		directory: directory,
		stock:     stock.New(client, directory, logger),
		artwork:   artwork.NewLoader(client, artwork.Options{Width: cfg.Preview.Width, Height: cfg.Preview.Height, Logger: logger}),
	}, nil
}

func runTUI(cmd *cobra.Command, a *app) error {
	opts := []tea.ProgramOption{tea.WithContext(cmd.Context())}
	if a.cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if a.cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseAllMotion())
	}
	program := tea.NewProgram(tui.New(tui.Config{
		Catalog:        a.client,
		Stock:          a.stock,
		Artwork:        a.artwork,
		Scrapers:       a.directory,
		PreviewColumns: a.cfg.Preview.Columns,
		Logger:         a.logger,
	}), opts...)

	if _, err := program.Run(); err != nil {
		a.logger.Error("[cardscout] program error", "err", err)
		return fmt.Errorf("program error: %w", err)
	}
	a.logger.Info("[cardscout] exiting")
	return nil
}
