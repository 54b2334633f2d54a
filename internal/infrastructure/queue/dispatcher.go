package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/mesi0621/storefront-gateway/internal/api/metrics"
	"github.com/mesi0621/storefront-gateway/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Deliverer is the synchronous delivery backend (the HTTP interactions client).
type Deliverer interface {
	Deliver(ctx context.Context, event ports.Interaction) error
}

// Dispatcher implements ports.InteractionSink by routing events to a fixed
// set of workers via consistent hashing on the product id. Record never
// blocks: when a worker's buffer is full the event is dropped and counted,
// since analytics must never slow down a cart mutation.
type Dispatcher struct {
	workers []chan ports.Interaction
	backend Deliverer
	log     zerolog.Logger
}

var _ ports.InteractionSink = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, backend Deliverer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Interaction, numWorkers),
		backend: backend,
		log:     log.With().Str("component", "interactions").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Interaction, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues an event for asynchronous delivery. Fire-and-forget: a full
// queue drops the event rather than blocking the caller.
func (d *Dispatcher) Record(_ context.Context, event ports.Interaction) {
	idx := d.shardIndex(event.ProductID)
	select {
	case d.workers[idx] <- event:
		metrics.InteractionsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.InteractionsDroppedTotal.Inc()
		d.log.Debug().Str("product_id", event.ProductID).Msg("interaction dropped, queue full")
	}
}

// shardIndex maps a product id deterministically to a worker index.
func (d *Dispatcher) shardIndex(productID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(productID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Interaction) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.InteractionsQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			if err := d.backend.Deliver(ctx, event); err != nil {
				d.log.Debug().Err(err).
					Str("product_id", event.ProductID).
					Str("user_id", event.UserID).
					Msg("interaction delivery failed")
			}
		}
	}
}
