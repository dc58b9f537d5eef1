package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"condo-radar/internal/config"
	pgRepo "condo-radar/internal/infra/adapter/persistence/postgres"
	sourceAdapter "condo-radar/internal/infra/adapter/source"
	"condo-radar/internal/infra/db"
	"condo-radar/internal/infra/fetcher"
	workerPkg "condo-radar/internal/infra/worker"
	"condo-radar/internal/observability/tracing"
	pkgconfig "condo-radar/internal/pkg/config"
	"condo-radar/internal/pkg/datenorm"
	"condo-radar/internal/pkg/relevance"
	ingestUC "condo-radar/internal/usecase/ingest"
	"condo-radar/internal/usecase/notify"
)

func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM documents LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, "condo-radar-worker")
	if err != nil {
		logger.Error("failed to initialize tracing", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("failed to shut down tracing", slog.Any("error", err))
		}
	}()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Bool("run_once", workerConfig.RunOnce),
		slog.Int("notify_max_concurrent", workerConfig.NotifyMaxConcurrent),
		slog.Duration("ingest_timeout", workerConfig.IngestTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	rules := loadRules(logger, workerConfig.RulesFile)

	notifyService := setupNotifyService(logger, workerConfig.NotifyMaxConcurrent)
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancelShutdown()
		if err := notifyService.Shutdown(shutdownCtx); err != nil {
			logger.Error("notification service shutdown failed", slog.Any("error", err))
		}
	}()

	// Start metrics HTTP server
	startMetricsServer(ctx, logger, notifyService)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	svc := setupIngestService(logger, database, notifyService, rules)

	if workerConfig.RunOnce {
		logger.Info("running single ingestion pass")
		healthServer.SetReady(true)
		if ok := runIngestJob(logger, svc, workerConfig, workerMetrics); !ok {
			os.Exit(1)
		}
		return
	}

	startCronWorker(ctx, logger, svc, workerConfig, workerMetrics, healthServer)
}

// initLogger initializes a JSON structured logger, level controlled by LOG_LEVEL.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

// loadRules loads the matching rules, merging an optional YAML override
// over the built-in defaults. An unreadable override is fatal: silently
// running with different keywords than the operator intended is worse than
// not starting.
func loadRules(logger *slog.Logger, path string) config.Rules {
	rules, err := config.LoadRules(path)
	if err != nil {
		logger.Error("failed to load rules file",
			slog.String("path", path),
			slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("matching rules loaded",
		slog.Int("subreddits", len(rules.Subreddits)),
		slog.Int("forum_keywords", len(rules.ForumKeywords())),
		slog.Int("bulletin_keywords", len(rules.BulletinKeywords())),
		slog.Bool("fuzzy_enabled", rules.FuzzyEnabled))
	return rules
}

// setupIngestService wires the full pipeline: fetch client, source adapters,
// date resolver, classifier and the postgres repository.
func setupIngestService(logger *slog.Logger, database *sql.DB, notifyService notify.Service, rules config.Rules) *ingestUC.Service {
	fetchConfig, err := fetcher.LoadFetchConfigFromEnv()
	if err != nil {
		logger.Error("failed to load fetch configuration", slog.Any("error", err))
		os.Exit(1)
	}
	client := fetcher.NewClient(fetchConfig, createHTTPClient(fetchConfig.Timeout), logger)

	redditBase := pkgconfig.GetEnvString("REDDIT_BASE_URL", sourceAdapter.DefaultRedditBaseURL)
	redditLimit := pkgconfig.GetEnvInt("REDDIT_LISTING_LIMIT", sourceAdapter.DefaultRedditLimit)
	adapters := []ingestUC.SourceAdapter{
		sourceAdapter.NewRedditAdapter(client, redditBase, rules.Subreddits, redditLimit, logger),
		sourceAdapter.NewBulletinAdapter(client, rules.BulletinIndexURL, logger),
	}
	logger.Info("source adapters initialized", slog.Int("count", len(adapters)))

	resolver := datenorm.New(rules.MinYear, rules.MaxYear,
		datenorm.WithFetcher(client),
		datenorm.WithLogger(logger))

	classifier := relevance.New(rules.LocationTerms,
		relevance.WithFuzzy(rules.FuzzyEnabled, rules.FuzzyThreshold),
		relevance.WithMaxTags(rules.MaxTags))

	return &ingestUC.Service{
		Adapters:   adapters,
		Resolver:   resolver,
		Classifier: classifier,
		Repo:       pgRepo.NewDocumentRepo(database),
		Notify:     notifyService,
		Rules:      rules,
	}
}

// setupNotifyService builds the notification service from the configured
// channels. A misconfigured channel is disabled with a warning, not fatal.
func setupNotifyService(logger *slog.Logger, maxConcurrent int) notify.Service {
	var channels []notify.Channel

	emailConfig := loadEmailConfig(logger)
	emailChannel := notify.NewEmailChannel(emailConfig)
	if emailChannel.IsEnabled() {
		channels = append(channels, emailChannel)
		logger.Info("email channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("email channel disabled")
	}

	slackConfig := loadSlackConfig(logger)
	slackChannel := notify.NewSlackChannel(slackConfig, nil)
	if slackChannel.IsEnabled() {
		channels = append(channels, slackChannel)
		logger.Info("slack channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("slack channel disabled")
	}

	svc := notify.NewService(channels, maxConcurrent)
	logger.Info("notification service initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", maxConcurrent))
	return svc
}

// createHTTPClient creates an HTTP client with timeouts, pooling and TLS 1.2+.
func createHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// loadEmailConfig loads SMTP settings from environment variables.
//
// Environment variables:
//   - EMAIL_ENABLED: "true" to enable (default: false)
//   - SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD
//   - EMAIL_FROM: sender address
//   - EMAIL_TO: comma-separated recipient list
func loadEmailConfig(logger *slog.Logger) notify.EmailConfig {
	if os.Getenv("EMAIL_ENABLED") != "true" {
		return notify.EmailConfig{Enabled: false}
	}

	cfg := notify.EmailConfig{
		Enabled:  true,
		Host:     os.Getenv("SMTP_HOST"),
		Port:     pkgconfig.GetEnvInt("SMTP_PORT", 587),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("EMAIL_FROM"),
		To:       pkgconfig.GetEnvStringList("EMAIL_TO", nil),
	}
	if cfg.Host == "" || cfg.From == "" || len(cfg.To) == 0 {
		logger.Warn("email notifications enabled but SMTP_HOST, EMAIL_FROM or EMAIL_TO missing, disabling")
		return notify.EmailConfig{Enabled: false}
	}
	return cfg
}

// loadSlackConfig loads and validates Slack webhook settings.
//
// Environment variables:
//   - SLACK_ENABLED: "true" to enable (default: false)
//   - SLACK_WEBHOOK_URL: webhook URL (must be https://hooks.slack.com/services/...)
func loadSlackConfig(logger *slog.Logger) notify.SlackConfig {
	if os.Getenv("SLACK_ENABLED") != "true" {
		return notify.SlackConfig{Enabled: false}
	}
	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")
	if webhookURL == "" {
		logger.Warn("slack webhook URL is empty, disabling notifications")
		return notify.SlackConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("invalid slack webhook URL format, disabling notifications", slog.Any("error", err))
		return notify.SlackConfig{Enabled: false}
	}
	if u.Scheme != "https" {
		logger.Warn("slack webhook URL must use HTTPS, disabling notifications")
		return notify.SlackConfig{Enabled: false}
	}
	if u.Host != "hooks.slack.com" {
		logger.Warn("invalid slack webhook host, disabling notifications", slog.String("host", u.Host))
		return notify.SlackConfig{Enabled: false}
	}
	if !strings.HasPrefix(u.Path, "/services/") {
		logger.Warn("invalid slack webhook path, disabling notifications", slog.String("path", u.Path))
		return notify.SlackConfig{Enabled: false}
	}

	return notify.SlackConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

// startCronWorker starts the cron scheduler and blocks until shutdown.
func startCronWorker(ctx context.Context, logger *slog.Logger, svc *ingestUC.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runIngestJob(logger, svc, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutdown signal received")
	healthServer.SetReady(false)

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
		logger.Info("cron scheduler stopped")
	case <-time.After(cfg.IngestTimeout):
		logger.Warn("cron scheduler stop timed out")
	}
}

// runIngestJob executes one ingestion run with timeout and metric recording.
// Returns true when the run persisted at least one document.
func runIngestJob(logger *slog.Logger, svc *ingestUC.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) bool {
	startTime := time.Now()
	logger.Info("ingestion run started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.IngestTimeout)
	defer cancel()

	stats, err := svc.Run(ctx)
	metrics.RecordJobDuration(time.Since(startTime).Seconds())
	if err != nil {
		logger.Error("ingestion run failed", slog.Any("error", err))
		metrics.RecordJobRun("failure")
		return false
	}

	metrics.RecordJobRun("success")
	metrics.RecordDocumentsPersisted(stats.TotalInserted())
	metrics.RecordLastSuccess()

	logger.Info("ingestion run succeeded",
		slog.Int("sources", len(stats.Sources)),
		slog.Int64("inserted", stats.TotalInserted()),
		slog.Duration("duration", time.Since(startTime)),
	)
	return true
}
