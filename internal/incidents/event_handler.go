package incidents

import (
	"context"

	"github.com/richxcame/scamwatch/pkg/eventbus"
	"github.com/richxcame/scamwatch/pkg/logger"
	"go.uber.org/zap"
)

const cacheInvalidationQueue = "risk-cache-invalidation"

// EventHandler drops cached batches when reports change
type EventHandler struct {
	cache BatchCache
}

// NewEventHandler creates a new incident event handler
func NewEventHandler(cache BatchCache) *EventHandler {
	return &EventHandler{cache: cache}
}

// Register subscribes the handler to incident events
func (h *EventHandler) Register(ctx context.Context, sub eventbus.Subscriber) error {
	return sub.Subscribe(ctx, SubjectIncidents, cacheInvalidationQueue, h.HandleIncidentEvent)
}

// HandleIncidentEvent invalidates the batch cache
func (h *EventHandler) HandleIncidentEvent(ctx context.Context, event *eventbus.Event) error {
	removed, err := h.cache.Invalidate(ctx)
	if err != nil {
		return err
	}

	logger.Debug("Risk cache invalidated",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.Int("removed", removed),
	)
	return nil
}
