package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/botshop/internal/core/domain"
)

const deliveryTimeout = 5 * time.Second

type Sink interface {
	Deliver(ctx context.Context, event Event) error
}

// Dispatcher queues order events and hands them to a sink from a fixed
// pool of workers. Enqueueing never blocks: when the queue is full the
// event is dropped and logged.
type Dispatcher struct {
	sink   Sink
	queue  chan Event
	logger *zap.Logger

	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

func NewDispatcher(sink Sink, workers, queueSize int, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		sink:   sink,
		queue:  make(chan Event, queueSize),
		logger: logger,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func(id int) {
			defer d.wg.Done()
			d.workerLoop(id)
		}(i)
	}
	return d
}

func (d *Dispatcher) OrderCreated(ctx context.Context, order domain.Order) {
	d.enqueue(NewOrderCreatedEvent(order))
}

func (d *Dispatcher) StatusChanged(ctx context.Context, order domain.Order) {
	d.enqueue(NewStatusChangedEvent(order))
}

// Dropped is the number of events discarded because the queue was full or
// the dispatcher was closed.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

func (d *Dispatcher) enqueue(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(event, "dispatcher closed")
		return
	}
	select {
	case d.queue <- event:
	default:
		d.drop(event, "queue full")
	}
}

func (d *Dispatcher) drop(event Event, reason string) {
	d.dropped.Add(1)
	d.logger.Warn("notification dropped",
		zap.String("reason", reason),
		zap.String("kind", string(event.Kind)),
		zap.String("order_id", event.OrderID))
}

// Close stops accepting events, delivers what is queued and waits for the
// workers to exit.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) workerLoop(id int) {
	for event := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)

		if err := d.sink.Deliver(ctx, event); err != nil {
			d.logger.Error("failed to deliver notification",
				zap.Int("worker", id),
				zap.String("kind", string(event.Kind)),
				zap.String("order_id", event.OrderID),
				zap.String("user_id", event.UserID),
				zap.Error(err))
		} else {
			d.logger.Debug("notification delivered",
				zap.Int("worker", id),
				zap.String("order_id", event.OrderID))
		}

		cancel()
	}
}
