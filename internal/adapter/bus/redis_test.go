package bus

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/diillson/gateway-admin-go/internal/domain/model"
	pkgerrors "github.com/diillson/gateway-admin-go/pkg/errors"
)

func newLoopSubscription(t *testing.T, buffer int) *redisSubscription {
	t.Helper()
	return &redisSubscription{
		events: make(chan model.ChangeEvent, buffer),
		done:   make(chan struct{}),
		logger: zaptest.NewLogger(t),
	}
}

func encodeEvent(t *testing.T, event model.ChangeEvent) *redis.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return &redis.Message{Payload: string(payload)}
}

func TestRedisSubscriptionLoopDeliversAndSkipsMalformed(t *testing.T) {
	sub := newLoopSubscription(t, 4)
	messages := make(chan *redis.Message)

	loopDone := make(chan struct{})
	go func() {
		sub.loop(messages)
		close(loopDone)
	}()

	messages <- &redis.Message{Payload: "not-json"}
	messages <- encodeEvent(t, model.NewChangeEvent("Production", model.VersionPublished, "v2"))
	close(messages)

	select {
	case <-loopDone:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after the message channel closed")
	}

	// The malformed payload was skipped; the valid event arrived and the
	// closed channel reads as a lost connection.
	event, ok := <-sub.events
	require.True(t, ok)
	assert.Equal(t, model.VersionPublished, event.Kind)
	_, ok = <-sub.events
	assert.False(t, ok)
	assert.ErrorIs(t, sub.Err(), pkgerrors.ErrBusDisconnected)
}

func TestRedisSubscriptionLoopUnblocksOnDoneWithFullBuffer(t *testing.T) {
	sub := newLoopSubscription(t, 1)
	messages := make(chan *redis.Message)

	loopDone := make(chan struct{})
	go func() {
		sub.loop(messages)
		close(loopDone)
	}()

	event := model.NewChangeEvent("Development", model.RouteUpdated, "route-1")
	// Nobody drains: the first send fills the buffer, the second leaves the
	// loop blocked mid-send.
	messages <- encodeEvent(t, event)
	messages <- encodeEvent(t, event)

	// What Close does, minus the Redis connection teardown.
	sub.mu.Lock()
	sub.closed = true
	close(sub.done)
	sub.mu.Unlock()

	select {
	case <-loopDone:
	case <-time.After(2 * time.Second):
		t.Fatal("loop stayed blocked on a full buffer after done was closed")
	}

	assert.NoError(t, sub.Err(), "an orderly close carries no transport error")
}
