package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ledgerbot/pkg/config"
)

// Connect authorizes against the Bot API and routes the library's own log
// output through logger.
func Connect(cfg config.BotConfig, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("bot token is empty")
	}
	if err := tgbotapi.SetLogger(zap.NewStdLog(logger.Named("tgbotapi"))); err != nil {
		return nil, fmt.Errorf("set bot api logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connect to bot api: %w", err)
	}
	api.Debug = cfg.Debug
	logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))
	return api, nil
}

// Poller long-polls for updates and feeds them to a Pool.
type Poller struct {
	api     *tgbotapi.BotAPI
	pool    *Pool
	timeout int
	logger  *zap.Logger
}

func NewPoller(api *tgbotapi.BotAPI, pool *Pool, timeout int, logger *zap.Logger) *Poller {
	return &Poller{api: api, pool: pool, timeout: timeout, logger: logger}
}

// Run blocks until ctx is done, then stops polling and drains the pool.
func (p *Poller) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.timeout
	u.AllowedUpdates = []string{"message", "callback_query"}
	updates := p.api.GetUpdatesChan(u)

	p.pool.Start(ctx)
	defer p.pool.Stop()

	p.logger.Info("Polling for updates", zap.Int("timeout_seconds", p.timeout))
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Stopping update polling")
			p.api.StopReceivingUpdates()
			return nil
		case raw, ok := <-updates:
			if !ok {
				return fmt.Errorf("update channel closed")
			}
			update, ok := Convert(raw)
			if !ok {
				p.logger.Debug("Skipping unsupported update", zap.Int("update_id", raw.UpdateID))
				continue
			}
			p.pool.Submit(update)
		}
	}
}
