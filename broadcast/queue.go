package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrQueueFull   = errors.New("event queue full")
	ErrQueueClosed = errors.New("event queue closed")
)

type queuedEvent struct {
	channel string
	event   string
	payload any
}

// Queue decouples state changes from delivery. Publish only enqueues; a single
// worker hands events to the downstream publisher in order. Failed deliveries
// are logged and dropped.
type Queue struct {
	next    Publisher
	logger  *slog.Logger
	events  chan queuedEvent
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

var _ Publisher = (*Queue)(nil)

func NewQueue(next Publisher, size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{
		next:    next,
		logger:  logger,
		events:  make(chan queuedEvent, size),
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}
}

// Run drains the queue until Close is called and the backlog is flushed.
func (q *Queue) Run() {
	defer close(q.done)
	for ev := range q.events {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		if err := q.next.Publish(ctx, ev.channel, ev.event, ev.payload); err != nil {
			q.logger.Warn("event delivery failed",
				slog.String("channel", ev.channel),
				slog.String("event", ev.event),
				slog.String("error", err.Error()))
		}
		cancel()
	}
}

func (q *Queue) Publish(_ context.Context, channel, event string, payload any) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.events <- queuedEvent{channel: channel, event: event, payload: payload}:
		return nil
	default:
		q.logger.Warn("event dropped, queue full",
			slog.String("channel", channel),
			slog.String("event", event))
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for the worker to flush, or for ctx.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.events)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
