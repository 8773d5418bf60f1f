package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"replayfetch/pkg/config"
	"replayfetch/pkg/fetcher"
	"replayfetch/pkg/logger"
	"replayfetch/pkg/metrics"
	"replayfetch/pkg/ratelimit"
	"replayfetch/pkg/showdown"
	"replayfetch/pkg/storage"
	"replayfetch/pkg/ui"
)

func runFetch(cmd *cobra.Command, flags map[string]interface{}) error {
	cfg, err := config.Load("", flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = fetch(ctx, cfg, logger.GetLogger(), cmd.OutOrStdout())
	return err
}

// fetch wires the components for one run and prints the summary. Only setup
// failures are returned; a canceled run still reports its summary.
func fetch(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer) (fetcher.Summary, error) {
	prevOut := ui.SetOutput(out)
	defer ui.SetOutput(prevOut)

	ui.PrintBanner()
	ui.PrintInfo("Format", cfg.Showdown.Format)
	ui.PrintInfo("Output", cfg.Download.OutputDir)

	store, err := storage.NewManager(cfg.Download.OutputDir)
	if err != nil {
		return fetcher.Summary{}, err
	}

	if cfg.Metrics.Listen != "" {
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if _, err := metrics.Serve(metricsCtx, cfg.Metrics.Listen); err != nil {
			return fetcher.Summary{}, fmt.Errorf("failed to start metrics endpoint: %w", err)
		}
		log.InfoWithFields("Metrics endpoint listening", map[string]interface{}{
			"addr": cfg.Metrics.Listen,
			"path": "/metrics",
		})
	}

	client := showdown.NewClient(cfg.Showdown.BaseURL, cfg.Download.Timeout, log)
	client.SetHeader("User-Agent", cfg.Showdown.UserAgent)

	pacer := ratelimit.NewPacer(cfg.Download.DelayMin, cfg.Download.DelayMax)
	progress := ui.NewProgressDisplay(out, cfg.Showdown.Format)

	f := fetcher.New(cfg, client, store, pacer, log, progress)
	summary, err := f.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return summary, err
	}

	ui.PrintSummary(ui.RunStats{
		Format:     cfg.Showdown.Format,
		OutputDir:  cfg.Download.OutputDir,
		Pages:      summary.Pages,
		Listed:     summary.Listed,
		Downloaded: summary.Downloaded,
		Existing:   summary.Existing,
		MissingID:  summary.MissingID,
		Failed:     summary.Failed,
		StopReason: string(summary.StopReason),
		Elapsed:    summary.Elapsed,
	})

	return summary, nil
}
