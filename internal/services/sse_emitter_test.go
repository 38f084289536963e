package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/learnfinity/learnfinity-backend/internal/sse"
)

type fakeBus struct {
	published []sse.SSEMessage
}

func (b *fakeBus) Publish(ctx context.Context, msg sse.SSEMessage) error {
	b.published = append(b.published, msg)
	return nil
}

func TestHubEmitterDeliversExactlyOnce(t *testing.T) {
	hub := sse.NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, "emp-1")

	emitter := &HubEmitter{Hub: hub}
	emitter.Emit(context.Background(), sse.SSEMessage{Channel: "emp-1", Event: sse.SSEEventGenerationProgress})

	if got := len(client.Outbound); got != 1 {
		t.Fatalf("delivered messages: want=1 got=%d", got)
	}
}

func TestRedisEmitterSkipsLocalHub(t *testing.T) {
	hub := sse.NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, "emp-1")

	bus := &fakeBus{}
	emitter := &RedisEmitter{Bus: bus}
	emitter.Emit(context.Background(), sse.SSEMessage{Channel: "emp-1", Event: sse.SSEEventGenerationCompleted})

	if got := len(bus.published); got != 1 {
		t.Fatalf("published messages: want=1 got=%d", got)
	}
	if got := len(client.Outbound); got != 0 {
		t.Fatalf("hub deliveries before the bus forwarder runs: want=0 got=%d", got)
	}

	// The forwarder's re-broadcast is the only local delivery path, so each
	// client sees the event exactly once.
	hub.Broadcast(bus.published[0])
	if got := len(client.Outbound); got != 1 {
		t.Fatalf("delivered messages after forwarding: want=1 got=%d", got)
	}
}
