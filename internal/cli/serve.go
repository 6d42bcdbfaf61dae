package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ledgerbot/internal/bot"
	"ledgerbot/internal/events"
	"ledgerbot/internal/form"
	"ledgerbot/internal/httpserver"
	"ledgerbot/internal/menu"
	"ledgerbot/internal/repository"
	"ledgerbot/internal/telegram"
	"ledgerbot/pkg/config"
	"ledgerbot/pkg/logger"
	"ledgerbot/pkg/mq"
	redisclient "ledgerbot/pkg/redis"
	"ledgerbot/pkg/util"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot",
	Long: `Run the Telegram bot together with the ops HTTP server (/healthz,
/readyz, /metrics). Redis update dedup and RabbitMQ event publishing are
enabled when redis.addr and mq.url are set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

const shutdownTimeout = 30 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting ledgerbot...",
		zap.String("storage", cfg.Storage.Driver),
		zap.Int("workers", cfg.Bot.Workers),
		zap.Bool("dedup", cfg.Redis.Addr != ""),
		zap.Bool("events", cfg.MQ.URL != ""),
	)

	// Store
	store, err := repository.Open(cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	checks := []httpserver.Check{{Name: "store", Ping: store.Ping}}

	// Optional infrastructure
	opts, extra, cleanup, err := optionalDeps(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()
	checks = append(checks, extra...)

	// Telegram
	api, err := telegram.Connect(cfg.Bot, log)
	if err != nil {
		return err
	}
	router := bot.NewRouter(
		store,
		form.NewEngine(log),
		menu.NewRenderer(cfg.Bot.Currency),
		telegram.NewSender(api, log),
		log,
		opts...,
	)

	// HTTP server (health checks, metrics)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           httpserver.NewRouter(log, checks...),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	poller := telegram.NewPoller(api, telegram.NewPool(router, cfg.Bot.Workers, log), cfg.Bot.PollTimeout, log)
	log.Info("ledgerbot is fully initialized and running")
	runErr := poller.Run(ctx)

	log.Info("Shutting down ledgerbot gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("ledgerbot shutdown complete")
	return runErr
}

// optionalDeps wires redis dedup and event publishing when configured.
func optionalDeps(cfg *config.Config, log *zap.Logger) ([]bot.Option, []httpserver.Check, func(), error) {
	var (
		opts    []bot.Option
		checks  []httpserver.Check
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redisclient.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, nil, cleanup, fmt.Errorf("init redis: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })

		deduper := util.NewDeduper(rdb, cfg.Redis.DedupTTL, log)
		opts = append(opts, bot.WithDeduper(deduper))
		checks = append(checks, httpserver.Check{Name: "redis", Ping: deduper.Ping})
		log.Info("Update dedup enabled", zap.String("redis_addr", cfg.Redis.Addr))
	}

	if cfg.MQ.URL != "" {
		publisher, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			cleanup()
			return nil, nil, func() {}, fmt.Errorf("init mq publisher: %w", err)
		}
		closers = append(closers, publisher.Close)

		opts = append(opts, bot.WithPublisher(events.NewAMQPPublisher(publisher, log)))
		checks = append(checks, httpserver.Check{Name: "mq", Ping: func(context.Context) error {
			if !publisher.IsConnected() {
				return errors.New("amqp connection closed")
			}
			return nil
		}})
		log.Info("Event publishing enabled", zap.String("exchange", mq.ExchangeName))
	}

	return opts, checks, cleanup, nil
}
