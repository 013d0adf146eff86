package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ychia112/DSCI560-Lab5/internal/collector"
	"github.com/ychia112/DSCI560-Lab5/internal/config"
	"github.com/ychia112/DSCI560-Lab5/internal/dashboard"
	"github.com/ychia112/DSCI560-Lab5/internal/domain"
	"github.com/ychia112/DSCI560-Lab5/internal/ingest"
	"github.com/ychia112/DSCI560-Lab5/internal/ratebudget"
	"github.com/ychia112/DSCI560-Lab5/internal/storage"
	"github.com/ychia112/DSCI560-Lab5/internal/stream"
)

var (
	subredditFlag  string
	targetsFile    string
	limitFlag      int
	batchTimeout   int
	overallTimeout int
	pageSize       int
	configFile     string
	serveDashboard bool
)

var rootCmd = &cobra.Command{
	Use:   "harvester",
	Short: "Rate-adaptive Reddit content harvester",
	Long: `harvester pulls posts from one or more subreddits across several
retrieval orderings, normalizes and filters them, and upserts the resulting
records into the configured sink.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&subredditFlag, "subreddit", "", "community to harvest (e.g. tech)")
	rootCmd.Flags().StringVar(&targetsFile, "targets", "", "CSV file of subreddit names (alternative to --subreddit)")
	rootCmd.Flags().IntVar(&limitFlag, "limit", 0, "total records to collect per community (required)")
	rootCmd.Flags().IntVar(&batchTimeout, "batch-timeout", 0, "per-batch time budget in seconds (default from config: 60)")
	rootCmd.Flags().IntVar(&overallTimeout, "overall-timeout", 0, "overall time budget in seconds (default from config: 400)")
	rootCmd.Flags().IntVar(&pageSize, "page-size", 0, "posts per page request, max 100 (default from config: 100)")
	rootCmd.Flags().StringVar(&configFile, "config", "", "optional config file")
	rootCmd.Flags().BoolVar(&serveDashboard, "dashboard", false, "serve the summary dashboard after the run")
}

func main() {
	// 1. Setup
	godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("harvester failed", "error", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if limitFlag <= 0 {
		return fmt.Errorf("--limit must be a positive integer")
	}

	targets, err := loadTargets()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := collector.NewCollector()
	if err != nil {
		return fmt.Errorf("initialize collector: %w", err)
	}
	slog.Info("collector initialized", "mode", os.Getenv("COLLECTOR_MODE"))

	sink, err := storage.NewSink(ctx, cfg.Sink.Mode, cfg.Sink.DSN, cfg.Sink.Path)
	if err != nil {
		return fmt.Errorf("initialize sink: %w", err)
	}
	defer sink.Close()

	if serveDashboard {
		go func() {
			slog.Info("starting dashboard", "port", cfg.Dashboard.Port)
			if err := dashboard.StartServer(cfg.Sink.Path, cfg.Dashboard.Port); err != nil {
				slog.Error("dashboard failed", "error", err)
			}
		}()
	}

	// One budget for the whole run: the remote window does not care how
	// many communities we harvest.
	budget := ratebudget.New(cfg.Rate.SoftCap, cfg.RateWindow())

	var totalAccepted, totalPromo, totalSinkErrs int
	for _, target := range targets {
		if ctx.Err() != nil {
			break
		}
		accepted, promo, sinkErrs := harvestOne(ctx, client, budget, sink, cfg, target)
		totalAccepted += accepted
		totalPromo += promo
		totalSinkErrs += sinkErrs
	}

	slog.Info("run summary",
		"records_accepted", totalAccepted,
		"promo_skipped", totalPromo,
		"sink_errors", totalSinkErrs,
	)

	if serveDashboard && ctx.Err() == nil {
		slog.Info("run complete, dashboard still serving (ctrl-c to exit)")
		<-ctx.Done()
	}
	return nil
}

func harvestOne(
	ctx context.Context,
	client domain.Collector,
	budget *ratebudget.Budget,
	sink domain.Sink,
	cfg config.Config,
	target domain.Target,
) (accepted, promo, sinkErrs int) {
	streamCfg := stream.Config{
		Subreddit:         target.Subreddit,
		TargetCount:       limitFlag,
		BatchBudget:       secondsOr(batchTimeout, cfg.Crawl.BatchTimeoutSeconds),
		OverallBudget:     secondsOr(overallTimeout, cfg.Crawl.OverallTimeoutSeconds),
		PageSize:          intOr(pageSize, cfg.Crawl.PageSize),
		RateLimitCooldown: cfg.RateCooldown(),
		StrategyCooldown:  cfg.StrategyPause(),
	}

	slog.Info("harvest starting", "subreddit", target.Subreddit, "limit", limitFlag)
	s := stream.New(client, budget, streamCfg, slog.Default())

	for {
		rec, ok := s.Next(ctx)
		if !ok {
			break
		}
		if err := sink.Upsert(ctx, rec); err != nil {
			sinkErrs++
			slog.Error("sink upsert failed", "platform_id", rec.PlatformID, "error", err)
			continue
		}
		accepted++
		if accepted%100 == 0 {
			slog.Info("progress", "subreddit", target.Subreddit, "upserted", accepted)
		}
	}

	sum := s.Summary()
	slog.Info("harvest finished",
		"subreddit", target.Subreddit,
		"accepted", sum.Accepted,
		"promo_skipped", sum.PromoSkipped,
		"too_short", sum.TooShort,
		"requests", sum.Requests,
		"sink_errors", sinkErrs,
	)
	return accepted, sum.PromoSkipped, sinkErrs
}

func loadTargets() ([]domain.Target, error) {
	if targetsFile != "" {
		targets, err := ingest.LoadTargets(targetsFile)
		if err != nil {
			return nil, fmt.Errorf("load targets: %w", err)
		}
		if len(targets) == 0 {
			return nil, fmt.Errorf("no valid subreddits in %s", targetsFile)
		}
		return targets, nil
	}
	if subredditFlag == "" {
		return nil, fmt.Errorf("either --subreddit or --targets is required")
	}
	return []domain.Target{{Subreddit: subredditFlag}}, nil
}

func secondsOr(flagValue, configValue int) time.Duration {
	if flagValue > 0 {
		return time.Duration(flagValue) * time.Second
	}
	return time.Duration(configValue) * time.Second
}

func intOr(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}
