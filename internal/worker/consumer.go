package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/service/notification"
	"github.com/jwalitptl/mediqueue/pkg/logger"
	"github.com/jwalitptl/mediqueue/pkg/messaging"
)

// CacheInvalidator drops cached state that an event made stale.
type CacheInvalidator interface {
	Invalidate()
}

// NotificationConsumer delivers patient notifications for published events.
// It also invalidates the local settings cache on settings.updated, since the
// API may run in another process.
type NotificationConsumer struct {
	broker   messaging.Broker
	notifier notification.Service
	settings CacheInvalidator
	logger   *logger.Logger
}

func NewNotificationConsumer(broker messaging.Broker, notifier notification.Service, settings CacheInvalidator, logger *logger.Logger) *NotificationConsumer {
	return &NotificationConsumer{broker: broker, notifier: notifier, settings: settings, logger: logger}
}

// Run consumes until ctx is cancelled or the subscription closes.
func (c *NotificationConsumer) Run(ctx context.Context) error {
	messages, err := c.broker.Subscribe(ctx, model.EventsChannel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to events: %w", err)
	}

	c.logger.Info("Starting notification consumer", "channel", model.EventsChannel)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Shutting down notification consumer")
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *NotificationConsumer) handle(ctx context.Context, msg []byte) {
	var event model.Event
	if err := json.Unmarshal(msg, &event); err != nil {
		c.logger.Error(err, "Dropping malformed event")
		return
	}

	if event.Type == model.EventSettingsUpdated && c.settings != nil {
		c.settings.Invalidate()
	}

	if err := c.notifier.HandleEvent(ctx, &event); err != nil {
		c.logger.Error(err, "Failed to deliver notification",
			"event_id", event.ID.String(),
			"event_type", event.Type)
	}
}
