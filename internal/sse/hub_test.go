package sse

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/learnfinity/learnfinity-backend/internal/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubBroadcastOrderingAndReconnect(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := uuid.New().String()

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventGenerationQueued, Data: map[string]any{"seq": 1}})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventGenerationProgress, Data: map[string]any{"seq": 2}})

	gotFirst := recvMessage(t, clientA.Outbound, time.Second)
	gotSecond := recvMessage(t, clientA.Outbound, time.Second)
	if gotFirst.Event != SSEEventGenerationQueued {
		t.Fatalf("first event: want=%s got=%s", SSEEventGenerationQueued, gotFirst.Event)
	}
	if gotSecond.Event != SSEEventGenerationProgress {
		t.Fatalf("second event: want=%s got=%s", SSEEventGenerationProgress, gotSecond.Event)
	}

	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}

	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventGenerationCompleted, Data: map[string]any{"seq": 3}})
	gotReconnect := recvMessage(t, clientB.Outbound, time.Second)
	if gotReconnect.Event != SSEEventGenerationCompleted {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventGenerationCompleted, gotReconnect.Event)
	}
}

func TestSSEHubChannelIsolation(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))

	employeeA := uuid.New().String()
	employeeB := uuid.New().String()

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, employeeA)
	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, employeeB)

	hub.Broadcast(SSEMessage{Channel: employeeA, Event: SSEEventGenerationFailed})

	recvMessage(t, clientA.Outbound, time.Second)
	select {
	case msg := <-clientB.Outbound:
		t.Fatalf("clientB must not receive employeeA events, got %s", msg.Event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSSEHubRemoveChannelStopsDelivery(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := uuid.New().String()

	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, channel)
	hub.RemoveChannel(client, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventGenerationProgress})
	select {
	case msg := <-client.Outbound:
		t.Fatalf("unsubscribed client received %s", msg.Event)
	case <-time.After(100 * time.Millisecond):
	}
}
