package relay

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/antoniostano/luna/internal/observability"
	"github.com/antoniostano/luna/internal/webhook"
)

var (
	ErrQueueFull = errors.New("relay queue is full")
	ErrClosed    = errors.New("relay dispatcher is closed")
)

// Handler processes messages taken off the dispatcher queue.
type Handler interface {
	Handle(ctx context.Context, msg webhook.Message)
	Dropped(msg webhook.Message, err error)
}

// Dispatcher runs message handling off the webhook request path.
//
// Invariants:
//   - At most queueSize messages are pending (queued or waiting in a lane).
//   - Messages from the same user are handled one at a time, in arrival order.
//   - Messages from different users run concurrently on up to workers goroutines.
type Dispatcher struct {
	handler   Handler
	metrics   *observability.Metrics
	log       zerolog.Logger
	queueSize int

	ready chan webhook.Message
	wg    sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	closed  bool
	pending int

	// lanes holds, per user with a message in flight, the messages that
	// arrived after it.
	lanes map[string][]webhook.Message
}

func NewDispatcher(handler Handler, workers, queueSize int, metrics *observability.Metrics, log zerolog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		handler:   handler,
		metrics:   metrics,
		log:       log.With().Str("component", "dispatcher").Logger(),
		queueSize: queueSize,
		ready:     make(chan webhook.Message, queueSize),
		ctx:       ctx,
		cancel:    cancel,
		lanes:     make(map[string][]webhook.Message),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Submit enqueues msg without blocking. A rejected message is reported to
// the handler's Dropped and the error is returned.
func (d *Dispatcher) Submit(msg webhook.Message) error {
	err := d.enqueue(msg)
	if err != nil {
		d.handler.Dropped(msg, err)
	}
	return err
}

func (d *Dispatcher) enqueue(msg webhook.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.pending >= d.queueSize {
		return ErrQueueFull
	}

	if waiting, busy := d.lanes[msg.SenderID]; busy {
		d.lanes[msg.SenderID] = append(waiting, msg)
	} else {
		d.lanes[msg.SenderID] = nil
		// pending < queueSize == cap(ready), so this send cannot block.
		d.ready <- msg
	}
	d.pending++
	d.metrics.SetQueueDepth(d.pending)
	return nil
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.ready {
		for {
			d.handler.Handle(d.ctx, msg)

			next, ok := d.next(msg.SenderID)
			if !ok {
				break
			}
			msg = next
		}
	}
}

// next marks the current message of userID done and pops the user's next
// waiting message, releasing the lane when there is none.
func (d *Dispatcher) next(userID string) (webhook.Message, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending--
	d.metrics.SetQueueDepth(d.pending)

	waiting := d.lanes[userID]
	if len(waiting) == 0 {
		delete(d.lanes, userID)
		return webhook.Message{}, false
	}
	d.lanes[userID] = waiting[1:]
	return waiting[0], true
}

// Pending reports messages accepted but not yet fully handled.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Close stops intake and waits for accepted messages to finish. When ctx
// expires first, in-flight handlers are cancelled and ctx.Err is returned.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.ready)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		d.log.Warn().Int("pending", d.Pending()).Msg("dispatcher drain timed out, cancelling in-flight messages")
		<-done
		return ctx.Err()
	}
}
