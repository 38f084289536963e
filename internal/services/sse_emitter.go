package services

import (
	"context"

	"github.com/learnfinity/learnfinity-backend/internal/sse"
)

// SSEEmitter is the single outbound path for realtime events. Each process
// wires exactly one implementation: the hub emitter when this instance serves
// its own SSE clients directly, or the Redis emitter when events must travel
// through the bus so every instance's forwarder can deliver them. Wiring both
// would hand local clients each event twice.
type SSEEmitter interface {
	Emit(ctx context.Context, msg sse.SSEMessage)
}

type HubEmitter struct{ Hub *sse.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg sse.SSEMessage) {
	e.Hub.Broadcast(msg)
}

// EventPublisher is the bus surface the Redis client satisfies.
type EventPublisher interface {
	Publish(ctx context.Context, msg sse.SSEMessage) error
}

type RedisEmitter struct {
	Bus EventPublisher
}

func (e *RedisEmitter) Emit(ctx context.Context, msg sse.SSEMessage) {
	_ = e.Bus.Publish(ctx, msg)
}
