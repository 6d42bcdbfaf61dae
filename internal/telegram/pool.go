package telegram

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"ledgerbot/internal/bot"
)

// Handler processes one update.
type Handler interface {
	Handle(ctx context.Context, u bot.Update) error
}

// Pool runs updates on a fixed set of workers. Updates of one user always go
// to the same worker, so a user's turns run in arrival order.
type Pool struct {
	handler Handler
	logger  *zap.Logger
	queues  []chan bot.Update
	wg      sync.WaitGroup
}

const queueDepth = 64

func NewPool(handler Handler, workers int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{handler: handler, logger: logger, queues: make([]chan bot.Update, workers)}
	for i := range p.queues {
		p.queues[i] = make(chan bot.Update, queueDepth)
	}
	return p
}

// Start launches the workers. In-flight turns finish even after ctx is done.
func (p *Pool) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i, q := range p.queues {
		p.wg.Add(1)
		go func(worker int, q <-chan bot.Update) {
			defer p.wg.Done()
			for u := range q {
				p.handle(ctx, worker, u)
			}
		}(i, q)
	}
	p.logger.Info("Update workers started", zap.Int("workers", len(p.queues)))
}

// Submit queues u on its user's worker. It blocks while that queue is full.
func (p *Pool) Submit(u bot.Update) {
	p.queues[shard(u.UserID, len(p.queues))] <- u
}

// Stop closes the queues and waits for the workers to drain them.
func (p *Pool) Stop() {
	for _, q := range p.queues {
		close(q)
	}
	p.wg.Wait()
	p.logger.Info("Update workers stopped")
}

func shard(userID int64, n int) int {
	return int(uint64(userID) % uint64(n))
}

func (p *Pool) handle(ctx context.Context, worker int, u bot.Update) {
	// panic 防御
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("Panic recovered while handling update",
				zap.Int("worker", worker),
				zap.Int64("update_id", u.ID),
				zap.Int64("user_id", u.UserID),
				zap.String("panic", fmt.Sprint(rec)),
			)
		}
	}()

	if err := p.handler.Handle(ctx, u); err != nil {
		p.logger.Warn("Update failed",
			zap.Int("worker", worker),
			zap.Int64("update_id", u.ID),
			zap.Int64("user_id", u.UserID),
			zap.Error(err),
		)
	}
}
