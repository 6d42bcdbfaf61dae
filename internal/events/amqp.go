package events

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"ledgerbot/pkg/circuitbreaker"
	"ledgerbot/pkg/metrics"
)

// broker is the slice of *mq.Publisher the AMQP publisher needs.
type broker interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// AMQPPublisher publishes each event through a circuit breaker.
type AMQPPublisher struct {
	broker  broker
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
	logger  *zap.Logger
}

func NewAMQPPublisher(b broker, logger *zap.Logger) *AMQPPublisher {
	cfg := circuitbreaker.DefaultConfig()
	cfg.OnStateChange = func(from, to circuitbreaker.State) {
		logger.Warn("Broker circuit state changed", zap.Stringer("from", from), zap.Stringer("to", to))
	}
	return &AMQPPublisher{
		broker:  b,
		breaker: circuitbreaker.NewCircuitBreaker(cfg),
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

func (p *AMQPPublisher) Publish(ctx context.Context, evs []Event) {
	for _, ev := range evs {
		err := p.breaker.Execute(func() error {
			pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()
			return p.broker.Publish(pubCtx, ev.Type, ev)
		})

		switch {
		case err == nil:
			metrics.IncrementEventPublished(ev.Type, "success")
			p.logger.Debug("Event published", zap.String("routing_key", ev.Type), zap.Int64("record_id", ev.RecordID))
		case errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen):
			metrics.IncrementEventPublished(ev.Type, "dropped")
			p.logger.Warn("Event dropped, broker circuit open", zap.String("routing_key", ev.Type))
		default:
			metrics.IncrementEventPublished(ev.Type, "failed")
			p.logger.Error("Failed to publish event",
				zap.String("routing_key", ev.Type),
				zap.Int64("record_id", ev.RecordID),
				zap.String("breaker", p.breaker.GetState().String()),
				zap.Error(err),
			)
		}
	}
}
