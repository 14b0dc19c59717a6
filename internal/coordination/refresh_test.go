package coordination

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHandleMessageSkipsOwnNotifications(t *testing.T) {
	ownID := uuid.New()
	peerID := uuid.New()

	calls := 0
	listener := NewRefreshListener(nil, ownID, func(context.Context) { calls++ })

	listener.handleMessage(context.Background(), ownID.String())
	assert.Zero(t, calls, "own notifications must be ignored")

	listener.handleMessage(context.Background(), peerID.String())
	assert.Equal(t, 1, calls)
}

func TestHandleMessageIgnoresGarbagePayloads(t *testing.T) {
	calls := 0
	listener := NewRefreshListener(nil, uuid.New(), func(context.Context) { calls++ })

	listener.handleMessage(context.Background(), "not-a-uuid")
	assert.Zero(t, calls)
}
