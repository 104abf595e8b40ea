package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// HandlerFunc handles one decoded change notification
type HandlerFunc func(ctx context.Context, event Event) error

// Consume subscribes to channel and hands every event to handle until ctx is
// done or the subscription closes. Undecodable messages and handler errors
// are logged and skipped.
func Consume(ctx context.Context, broker Broker, channel string, handle HandlerFunc, logger zerolog.Logger) error {
	messages, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			var event Event
			if err := json.Unmarshal(msg, &event); err != nil {
				logger.Warn().Err(err).Str("channel", channel).Msg("dropping malformed notification")
				continue
			}
			if err := handle(ctx, event); err != nil {
				logger.Error().
					Err(err).
					Str("type", event.Type).
					Str("id", event.ID).
					Msg("failed to handle notification")
			}
		}
	}
}
