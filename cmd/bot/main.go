// Package main contains the entrypoint for the soulbot Telegram companion.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/soulbot/internal/bot"
	"github.com/edgard/soulbot/internal/bot/handlers"
	"github.com/edgard/soulbot/internal/bot/tasks"
	"github.com/edgard/soulbot/internal/companion"
	"github.com/edgard/soulbot/internal/completion"
	"github.com/edgard/soulbot/internal/config"
	"github.com/edgard/soulbot/internal/database"
	"github.com/edgard/soulbot/internal/logger"
	"github.com/edgard/soulbot/internal/server"
	"github.com/edgard/soulbot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component, blocks until shutdown and returns the exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	store, closeStore, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to open memory store", "driver", cfg.Database.Driver, "error", err)
		return 1
	}
	defer closeStore()

	provider, err := completion.NewProvider(ctx, cfg.Completion, log)
	if err != nil {
		log.Error("Failed to initialize completion provider", "provider", cfg.Completion.Provider, "error", err)
		return 1
	}
	generator := completion.NewClient(provider, cfg.Completion, log)
	soulmate := companion.NewService(store, generator, cfg.Soul.Persona, cfg.Soul.HistoryLimit, log, nil)

	hDeps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Companion: soulmate,
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log), handlers.RateLimit(hDeps)),
		tgbot.WithDefaultHandler(handlers.NewChatHandler(hDeps)),
	}
	if cfg.Webhook() && cfg.Telegram.WebhookSecret != "" {
		botOpts = append(botOpts, tgbot.WithWebhookSecretToken(cfg.Telegram.WebhookSecret))
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	cfg.Telegram.BotInfo = *me
	log.Info("Retrieved bot info", "bot_id", me.ID, "bot_username", me.Username)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	if err := telegram.StartTransport(ctx, tg, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret, log); err != nil {
		log.Error("Failed to configure Telegram transport", "error", err)
		return 1
	}

	var srv *server.Server
	if cfg.Webhook() {
		router := server.NewRouter(webhookPath(cfg.Telegram.WebhookURL), tg.WebhookHandler(), store, log)
		srv = server.New(cfg.Telegram.WebhookPort, router, log)
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, tg, sched, srv)

	log.Info("Starting bot...", "persona", cfg.Soul.Persona, "webhook", cfg.Webhook())
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}

// webhookPath is the route Telegram posts to, taken from the public URL.
func webhookPath(webhookURL string) string {
	u, err := url.Parse(webhookURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}
