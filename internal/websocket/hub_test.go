package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"prime-research/internal/dto"
	"prime-research/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, sessionId string) *Client {
	return &Client{Hub: h, SessionId: sessionId, Send: make(chan []byte, 1)}
}

func TestHubDeliversBySession(t *testing.T) {
	h := NewHub(logger.NewNopLogger())
	events := make(chan dto.ProgressEvent)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx, events)
		close(done)
	}()

	all := newTestClient(h, "")
	mine := newTestClient(h, "s-1")
	other := newTestClient(h, "s-2")
	for _, c := range []*Client{all, mine, other} {
		h.register <- c
	}
	require.Eventually(t, func() bool { return h.ClientCount() == 3 }, time.Second, 5*time.Millisecond)

	events <- dto.ProgressEvent{SessionId: "s-1", Stage: "research", Step: 2, Total: 7}

	var msg struct {
		Type string            `json:"type"`
		Data dto.ProgressEvent `json:"data"`
	}
	select {
	case raw := <-mine.Send:
		require.NoError(t, json.Unmarshal(raw, &msg))
	case <-time.After(time.Second):
		t.Fatal("subscribed client got nothing")
	}
	assert.Equal(t, "progress", msg.Type)
	assert.Equal(t, "research", msg.Data.Stage)

	select {
	case <-all.Send:
	case <-time.After(time.Second):
		t.Fatal("wildcard client got nothing")
	}
	assert.Empty(t, other.Send)

	cancel()
	<-done
	_, open := <-mine.Send
	assert.False(t, open, "send channels are closed on shutdown")
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	h := NewHub(logger.NewNopLogger())
	c := newTestClient(h, "")
	h.clients[c] = true

	h.Deliver(dto.ProgressEvent{Stage: "a"})
	h.Deliver(dto.ProgressEvent{Stage: "b"})

	assert.Len(t, c.Send, 1)
	h.remove(c)
	assert.Zero(t, h.ClientCount())
}
