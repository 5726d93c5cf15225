package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// StartCacheInvalidator subscribes to ticket mutation events and drops the
// cached dashboard aggregation so reads never serve stale counts.
func StartCacheInvalidator(dispatcher events.Dispatcher, cache *persistence.StatsCache, logger *zap.Logger) {
	if dispatcher == nil || cache == nil {
		return
	}
	invalidate := func(ctx context.Context, event events.Event) error {
		logger.Debug("invalidating stats cache",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID))
		cache.Invalidate(ctx)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketCreated, invalidate)
	dispatcher.Subscribe(events.EventTicketUpdated, invalidate)
	dispatcher.Subscribe(events.EventTicketDeleted, invalidate)
}
