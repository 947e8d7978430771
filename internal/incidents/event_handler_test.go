package incidents

import (
	"context"
	"testing"

	"github.com/richxcame/scamwatch/pkg/eventbus"
	"github.com/stretchr/testify/require"
)

type recordingSubscriber struct {
	subject string
	queue   string
	handler eventbus.Handler
}

func (s *recordingSubscriber) Subscribe(_ context.Context, subject, queue string, handler eventbus.Handler) error {
	s.subject = subject
	s.queue = queue
	s.handler = handler
	return nil
}

func newIncidentEvent(t *testing.T) *eventbus.Event {
	t.Helper()
	event, err := eventbus.NewEvent("reports-service", "incidents.created", map[string]string{"id": "r5"})
	require.NoError(t, err)
	return event
}
