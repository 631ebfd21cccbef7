package queue

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sponsormatch/matchbot/internal/pkg/metrics"
	"github.com/sponsormatch/matchbot/internal/core/domain"
	"github.com/sponsormatch/matchbot/internal/core/ports"
)

const defaultBuffer = 64

// Dispatcher hands notifications to a single worker goroutine that delivers
// them, in order, to every sink. Notify never blocks: when the buffer is
// full the notification is dropped and counted.
type Dispatcher struct {
	ch    chan domain.Notification
	sinks []ports.Notifier
	log   zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ ports.Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher. If buffer <= 0, defaultBuffer is used.
func NewDispatcher(buffer int, log zerolog.Logger, sinks ...ports.Notifier) *Dispatcher {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Dispatcher{
		ch:    make(chan domain.Notification, buffer),
		sinks: sinks,
		log:   log,
	}
}

// Start launches the worker. It stops when ctx is cancelled or Close is
// called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go d.run(ctx)
}

// Notify enqueues n for delivery.
func (d *Dispatcher) Notify(_ context.Context, n domain.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.ch <- n:
		metrics.NotificationsQueueDepth.Set(float64(len(d.ch)))
	default:
		metrics.NotificationsDroppedTotal.Inc()
		d.log.Warn().Str("title", n.Title).Msg("notification buffer full, dropping")
	}
}

// Close stops accepting notifications and waits for the worker to deliver
// what is already queued.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.ch)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-d.ch:
			if !ok {
				return
			}
			metrics.NotificationsQueueDepth.Set(float64(len(d.ch)))
			for _, sink := range d.sinks {
				sink.Notify(ctx, n)
			}
		}
	}
}
