package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "session:abc-123", sessionKey("abc-123"))
}

func TestSessionRoundTrip(t *testing.T) {
	in := Session{
		UserID:   "user-1",
		Role:     RoleTechnician,
		IssuedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(in)
	require.NoError(t, err)

	var out Session
	require.NoError(t, json.Unmarshal(payload, &out))
	assert.Equal(t, in.UserID, out.UserID)
	assert.Equal(t, in.Role, out.Role)
	assert.True(t, in.IssuedAt.Equal(out.IssuedAt))
}
