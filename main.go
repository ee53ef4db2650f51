package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/PavelZaytsev/notion-task-alerts/pkg/clock"
	"github.com/PavelZaytsev/notion-task-alerts/pkg/config"
	"github.com/PavelZaytsev/notion-task-alerts/pkg/notify"
	"github.com/PavelZaytsev/notion-task-alerts/pkg/notion"
	"github.com/PavelZaytsev/notion-task-alerts/pkg/scheduler"
	"github.com/PavelZaytsev/notion-task-alerts/pkg/task"
)

func main() {
	check := flag.Bool("check", false, "Verify Notion credentials and database access, then exit")
	once := flag.Bool("once", false, "Run a single fetch and evaluation pass, then exit")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	status := flag.String("status", "", "Status filter override (overrides NOTION_STATUS_FILTER)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("startup configuration error", "err", err)
	}

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	logger := newLogger(level)

	if *status != "" {
		cfg.StatusFilter = *status
	}

	client := notion.NewClient(cfg.NotionToken, cfg.DatabaseID, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *check {
		if err := runCheck(ctx, client); err != nil {
			logger.Fatal("connection check failed", "err", err)
		}
		return
	}

	notifier, err := notifierFor(cfg, logger)
	if err != nil {
		logger.Fatal("startup configuration error", "err", err)
	}

	fetch := func(ctx context.Context, day time.Time) ([]*task.Task, error) {
		return client.QueryDay(ctx, day, cfg.StatusFilter)
	}

	sched := scheduler.New(fetch, notifier, clock.Real{}, scheduler.Options{
		ChecksPerCycle: cfg.ChecksPerCycle,
		CheckInterval:  cfg.CheckInterval,
		BackoffDelay:   cfg.BackoffDelay,
	}, logger)

	if *once {
		if err := sched.RunOnce(ctx); err != nil {
			logger.Fatal("run failed", "err", err)
		}
		return
	}

	if err := sched.Run(ctx); err != nil {
		logger.Fatal("run failed", "err", err)
	}
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

func notifierFor(cfg *config.Config, logger *log.Logger) (notify.Notifier, error) {
	switch cfg.Sink {
	case config.SinkDiscord:
		return notify.NewDiscord(cfg.DiscordWebhookURL), nil
	case config.SinkDesktop:
		return notify.NewDesktop(), nil
	case config.SinkLog:
		return notify.NewLog(logger), nil
	}
	return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
}

// runCheck retrieves the database and runs an unfiltered query so setup
// problems surface before the poll loop ever starts.
func runCheck(ctx context.Context, client *notion.Client) error {
	info, err := client.CheckConnection(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Database found: %s\n", info.Title)
	fmt.Printf("Query successful: %d pages found\n", info.PageCount)
	fmt.Println("\nDatabase properties:")
	for name, kind := range info.Properties {
		fmt.Printf("  - %s: %s\n", name, kind)
	}
	fmt.Println("\nConnection check passed.")
	return nil
}
