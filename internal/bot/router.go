package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"ledgerbot/internal/events"
	"ledgerbot/internal/form"
	"ledgerbot/internal/menu"
	"ledgerbot/internal/repository"
	"ledgerbot/internal/service"
	"ledgerbot/pkg/logger"
	"ledgerbot/pkg/metrics"
	"ledgerbot/pkg/trace"
	"ledgerbot/pkg/util"
)

type handlerFunc func(t *turn, a menu.Action) error

// Router dispatches updates by form position and action id. Every update
// runs in its own store transaction.
type Router struct {
	store     repository.Store
	forms     *form.Engine
	render    *menu.Renderer
	stats     *service.StatsService
	sender    Sender
	publisher events.Publisher
	deduper   Deduper
	now       func() time.Time
	logger    *zap.Logger

	routes map[menu.Op]handlerFunc
}

type Option func(*Router)

func WithPublisher(p events.Publisher) Option {
	return func(r *Router) { r.publisher = p }
}

func WithDeduper(d Deduper) Option {
	return func(r *Router) { r.deduper = d }
}

func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

func NewRouter(
	store repository.Store,
	forms *form.Engine,
	render *menu.Renderer,
	sender Sender,
	logger *zap.Logger,
	opts ...Option,
) *Router {
	r := &Router{
		store:     store,
		forms:     forms,
		render:    render,
		stats:     service.NewStatsService(logger),
		sender:    sender,
		publisher: events.Noop{},
		now:       time.Now,
		logger:    logger,
		routes:    make(map[menu.Op]handlerFunc),
	}
	for _, opt := range opts {
		opt(r)
	}
	forms.SetClock(r.now)

	r.registerMain()
	r.registerProjects()
	r.registerTasks()
	r.registerExpenses()
	r.registerForms()
	return r
}

func (r *Router) Register(op menu.Op, h handlerFunc) {
	r.routes[op] = h
}

// Handle processes one update: begin, route, commit, publish, render.
// Any error other than the handled notice cases rolls the turn back.
func (r *Router) Handle(ctx context.Context, u Update) (err error) {
	start := time.Now()
	kind := u.kind()

	if r.deduper != nil && u.ID != 0 && !r.deduper.AcquireOnce(ctx, "update", u.ID) {
		metrics.RecordTurn(kind, "duplicate", time.Since(start))
		return nil
	}

	ctx = trace.Start(ctx)
	log := logger.WithTrace(ctx, r.logger).With(
		zap.Int64("user_id", u.UserID),
		zap.Int64("update_id", u.ID),
	)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "failed"
		}
		metrics.RecordTurn(kind, outcome, time.Since(start))
	}()

	sess, err := r.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin turn: %w", err)
	}
	defer sess.Rollback(ctx)

	t := &turn{ctx: ctx, u: u, sess: sess, log: log, now: r.now()}
	if err := r.dispatch(t); err != nil {
		log.Error("Turn failed, rolled back",
			zap.String("error_class", util.ClassifyError(err)),
			zap.Error(err),
		)
		return err
	}

	if err := sess.Commit(ctx); err != nil {
		log.Error("Failed to commit turn", zap.Error(err))
		return fmt.Errorf("commit turn: %w", err)
	}
	if len(t.events) > 0 {
		r.publisher.Publish(ctx, t.events)
	}

	if err := t.flush(ctx, r.sender); err != nil {
		log.Error("Failed to render turn", zap.String("error_class", util.ClassifyError(err)), zap.Error(err))
		return err
	}
	log.Debug("Turn handled", zap.Duration("took", time.Since(start)))
	return nil
}

func (r *Router) dispatch(t *turn) error {
	if t.u.IsCallback() {
		a, err := menu.Decode(t.u.Data)
		if err != nil {
			t.log.Warn("Ignoring unknown action", zap.String("data", t.u.Data))
			return nil
		}
		t.log = t.log.With(zap.String("action", t.u.Data))
		return r.route(t, a)
	}

	text := strings.TrimSpace(t.u.Text)
	if text == "" {
		return nil
	}
	if text == "/start" {
		return r.route(t, menu.Do(menu.OpMainMenu))
	}
	if r.forms.Awaits(t.u.UserID, form.InputText) {
		return r.handled(t, r.advance(t, form.Text(t.u.Text)))
	}
	if a, ok := menu.Keyword(text); ok {
		return r.route(t, a)
	}
	t.log.Debug("Ignoring text outside any form")
	return nil
}

func (r *Router) route(t *turn, a menu.Action) error {
	h, ok := r.routes[a.Op]
	if !ok {
		t.log.Debug("No handler for action")
		return nil
	}
	return r.handled(t, h(t, a))
}

// handled turns the known transient failures into notices.
func (r *Router) handled(t *turn, err error) error {
	var nf *notFoundError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &nf):
		t.tell(nf.what + " not found!")
		return nil
	case errors.Is(err, form.ErrNoActiveForm), errors.Is(err, form.ErrUnexpectedInput):
		t.log.Debug("Input ignored by form engine", zap.Error(err))
		return nil
	}
	return err
}
