package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carrier-im/carrier/internal/wire"
)

func TestDecodeAnyMalformedPayloadLeavesZeroValue(t *testing.T) {
	var req wire.TypingRequest

	// A payload of the wrong shape reports the error and leaves the request
	// at its zero value, so handlers see an empty request and drop it.
	err := decodeAny("not-an-object", &req)
	require.Error(t, err)
	require.Zero(t, req)

	err = decodeAny(map[string]any{"conversationId": "c1", "username": "alice"}, &req)
	require.NoError(t, err)
	require.Equal(t, "c1", req.ConversationID)
	require.Equal(t, "alice", req.Username)
}

func TestFirstArg(t *testing.T) {
	require.Nil(t, firstArg(nil))
	require.Nil(t, firstArg([]any{}))
	require.Equal(t, "x", firstArg([]any{"x", "y"}))
}
