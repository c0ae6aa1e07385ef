package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/news-bot/app/api"
	"github.com/lysyi3m/news-bot/app/bot"
	"github.com/lysyi3m/news-bot/app/cfg"
	"github.com/lysyi3m/news-bot/app/config"
	"github.com/lysyi3m/news-bot/app/database"
	"github.com/lysyi3m/news-bot/app/dispatch"
	"github.com/lysyi3m/news-bot/app/feed"
	"github.com/lysyi3m/news-bot/app/i18n"
	"github.com/lysyi3m/news-bot/app/search"
	"github.com/lysyi3m/news-bot/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fatal("Failed to load configuration", "error", err)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting News Bot", "version", appCfg.Version)

	loader := config.NewLoader(appCfg.SourcesFile, appCfg.LocalesFile)
	sources, err := loader.LoadSources()
	if err != nil {
		fatal("Failed to load sources", "error", err)
	}
	locales, err := loader.LoadLocales()
	if err != nil {
		fatal("Failed to load locales", "error", err)
	}

	fallback, err := i18n.ParseLanguage(appCfg.DefaultLanguage)
	if err != nil {
		fatal("Invalid default language", "language", appCfg.DefaultLanguage, "error", err)
	}

	catalog := locales.Catalog()
	registry := feed.NewRegistry(sources)
	preferences := i18n.NewPreferences(fallback)

	db, err := database.Open(appCfg.DBPath)
	if err != nil {
		fatal("Failed to open database", "path", appCfg.DBPath, "error", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		fatal("Failed to run migrations", "error", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	deliveries := database.NewDeliveryLog(db)

	httpClient := &http.Client{}
	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent, appCfg.GetFetchTimeout())
	searcher := search.NewClient(httpClient, appCfg.NewsAPIURL, appCfg.NewsAPIKey, appCfg.UserAgent, appCfg.GetSearchTimeout())
	formatter := feed.NewFormatter(catalog, fallback, appCfg.DescriptionLimit)

	botAPI, err := tgbotapi.NewBotAPI(appCfg.TelegramToken)
	if err != nil {
		fatal("Failed to connect to Telegram", "error", err)
	}
	slog.Info("Authorized on Telegram", "account", botAPI.Self.UserName)

	limits := dispatch.DefaultLimits()
	limits.Category = appCfg.DefaultLimit

	resolver := dispatch.NewResolver(registry, catalog, fallback, limits)
	service := dispatch.NewService(resolver, fetcher, feed.NewParser(), formatter, searcher,
		bot.NewSender(botAPI), preferences, catalog, fallback, deliveries, appCfg.GetFetchTimeout())

	scheduler := tasks.NewScheduler(appCfg.WorkerCount)
	scheduler.Start()

	jobs := tasks.NewJobs(scheduler, service)
	newsBot := bot.New(botAPI, service, jobs, registry, preferences, catalog, fallback, appCfg.GetAutoPostFirstDelay())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go newsBot.Run(ctx)

	apiHandler := api.NewHandler(deliveries, registry, catalog, preferences, jobs, scheduler, appCfg.Version)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(apiHandler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("News Bot started successfully")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	cancel()
	newsBot.Stop()
	jobs.Stop()
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("News Bot shutdown complete")
}

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
