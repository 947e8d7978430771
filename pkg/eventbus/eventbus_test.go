package eventbus

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	event, err := NewEvent("risk-backfill", "risk.scores.updated", map[string]int{"processed": 3})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "risk.scores.updated", event.Type)
	assert.Equal(t, "risk-backfill", event.Source)
	assert.False(t, event.Timestamp.IsZero())

	var data map[string]int
	require.NoError(t, json.Unmarshal(event.Data, &data))
	assert.Equal(t, 3, data["processed"])
}

func TestNewEvent_UnmarshalablePayload(t *testing.T) {
	_, err := NewEvent("risk-backfill", "bad", make(chan int))
	assert.Error(t, err)
}

func TestClose_NilConn(t *testing.T) {
	bus := &Bus{}
	assert.NotPanics(t, bus.Close)
}
