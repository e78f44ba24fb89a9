package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altiplano-labs/frost-risk-service/internal/store"
)

func TestSerializeToMessage(t *testing.T) {
	loadedAt := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	event := store.ReloadEvent{
		Source:            "/srv/datasets",
		Rows:              1873,
		HighRiskDistricts: 188,
		RiskThreshold:     1.52,
		LoadedAt:          loadedAt,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("/srv/datasets"), msg.Key)
	assert.Contains(t, string(msg.Value), `"rows":1873`)
	assert.Contains(t, string(msg.Value), `"risk_threshold":1.52`)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "loaded_at", msg.Headers[0].Key)
	assert.Equal(t, []byte("2026-06-15T12:00:00Z"), msg.Headers[0].Value)
}
