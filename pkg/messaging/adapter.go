package messaging

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/user-admin/pkg/circuitbreaker"
	"github.com/jwalitptl/user-admin/pkg/metrics"
)

// BrokerPublisher publishes events to one broker channel. A circuit breaker
// stops calling a broker that keeps failing.
type BrokerPublisher struct {
	broker  Broker
	channel string
	cb      *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewBrokerPublisher(broker Broker, channel string, m *metrics.Metrics, logger zerolog.Logger) *BrokerPublisher {
	return &BrokerPublisher{
		broker:  broker,
		channel: channel,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "notifications",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		}),
		metrics: m,
		logger:  logger,
	}
}

func (p *BrokerPublisher) Publish(ctx context.Context, event Event) error {
	err := p.cb.Execute(func() error {
		return p.broker.Publish(ctx, p.channel, event)
	})
	p.metrics.ObserveNotification(event.Type, err)
	if err != nil {
		p.logger.Warn().
			Err(err).
			Str("type", event.Type).
			Str("id", event.ID).
			Msg("failed to publish change notification")
	}
	return err
}

func (p *BrokerPublisher) Close() error {
	return p.broker.Close()
}
