package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesi0621/storefront-gateway/internal/core/ports"
)

type recordingDeliverer struct {
	mu     sync.Mutex
	events []ports.Interaction
	done   chan struct{}
	expect int
}

func (d *recordingDeliverer) Deliver(_ context.Context, event ports.Interaction) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	if len(d.events) == d.expect {
		close(d.done)
	}
	return nil
}

func TestDispatcher_DeliversAllEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend := &recordingDeliverer{done: make(chan struct{}), expect: 10}
	d := NewDispatcher(3, backend, zerolog.Nop())
	d.Start(ctx)

	for i := 0; i < 10; i++ {
		d.Record(ctx, ports.Interaction{ProductID: "P" + string(rune('0'+i)), UserID: "u1", Type: "cart_add"})
	}

	select {
	case <-backend.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for deliveries, got %d", len(backend.events))
	}
}

func TestDispatcher_RecordNeverBlocksWhenWorkersAreStopped(t *testing.T) {
	// No Start call: workers never drain, so the buffer eventually fills and
	// further events are dropped instead of blocking the caller.
	d := NewDispatcher(1, &recordingDeliverer{done: make(chan struct{}), expect: 1}, zerolog.Nop())

	finished := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+50; i++ {
			d.Record(context.Background(), ports.Interaction{ProductID: "P1", UserID: "u1", Type: "cart_add"})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("Record blocked on a full queue")
	}
}
