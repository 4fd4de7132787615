package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/hive-corporation/creditrisk/internal/adapter/exporter"
	"github.com/hive-corporation/creditrisk/internal/adapter/httpclient"
	"github.com/hive-corporation/creditrisk/internal/adapter/metrics"
	"github.com/hive-corporation/creditrisk/internal/adapter/notifier"
	"github.com/hive-corporation/creditrisk/internal/adapter/source"
	"github.com/hive-corporation/creditrisk/internal/batch"
	"github.com/hive-corporation/creditrisk/internal/config"
	"github.com/hive-corporation/creditrisk/internal/core/ports"
	"github.com/hive-corporation/creditrisk/internal/observability"
)

func main() {
	csvPath := flag.String("csv", "", "CSV file of applicants (HELOC-style header)")
	envGlob := flag.String("env", "", "Glob of applicant files, one Field=value per line")
	fromDB := flag.Bool("postgres", false, "Read applicants from DATABASE_URL")
	table := flag.String("table", source.DefaultTable, "Table to read with -postgres")
	limit := flag.Int("limit", 0, "Maximum rows to read with -postgres (0 = all)")
	outPath := flag.String("out", "", "Write results to this file instead of stdout")
	notify := flag.Bool("notify", true, "Post the run summary to Slack when SLACK_BOT_TOKEN is set")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()
	// Results may go to stdout, so logs go to stderr.
	logger := observability.InitLogger(cfg.Log, os.Stderr)

	metrics.InitMetrics()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var src ports.ApplicantSource
	switch {
	case *csvPath != "":
		src = source.NewCSVSource(*csvPath)
	case *envGlob != "":
		paths, err := filepath.Glob(*envGlob)
		if err != nil || len(paths) == 0 {
			logger.Error("❌ no applicant files matched", "glob", *envGlob, "error", err)
			os.Exit(1)
		}
		src = source.NewEnvFileSource(paths...)
	case *fromDB:
		if cfg.DatabaseURL == "" {
			logger.Error("❌ DATABASE_URL is not set")
			os.Exit(1)
		}
		logger.Info("🔌 Database connection...")
		dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("❌ Error connecting to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()
		src = source.NewPostgresSource(dbPool, *table, *limit)
	default:
		logger.Error("❌ one of -csv, -env or -postgres is required")
		flag.Usage()
		os.Exit(2)
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			logger.Error("❌ cannot create output file", "path", *outPath, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	var n ports.Notifier
	if *notify && cfg.Slack.Enabled() {
		n = notifier.NewSlackNotifier(cfg.Slack, httpclient.NewResilientClient("slack", cfg.Resilience))
		logger.Info("✅ Slack notifier enabled", "channel", cfg.Slack.Channel)
	} else {
		logger.Info("⚠️  Slack notifier disabled")
	}

	runner := batch.NewRunner(src, exporter.NewCSVExporter(out), n, logger)
	if _, err := runner.Run(ctx); err != nil {
		logger.Error("❌ batch scoring failed", "error", err)
		os.Exit(1)
	}
}
