package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"givehub-backend/internal/domain"
	"givehub-backend/internal/pkg/healthkeys"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultQueueSize = 256
	sendTimeout      = 20 * time.Second
)

// FailureLogKey is the Redis list that collects delivery failures; the health
// errors endpoint reads it.
const FailureLogKey = healthkeys.ErrorLog

// Dispatcher queues messages on a bounded channel and delivers them on one worker
// goroutine. Notify never blocks: when the queue is full the message is dropped and
// recorded as a delivery failure.
type Dispatcher struct {
	sender Sender
	rdb    *redis.Client
	queue  chan Message

	startOnce sync.Once
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
	done      chan struct{}
}

// NewDispatcher creates a dispatcher. rdb is optional and only used for the failure log.
func NewDispatcher(sender Sender, rdb *redis.Client, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Dispatcher{
		sender: sender,
		rdb:    rdb,
		queue:  make(chan Message, queueSize),
		done:   make(chan struct{}),
	}
}

// Start launches the worker. It drains the queue until Close is called.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		go d.run()
	})
}

// Notify enqueues msg. The caller's context is not carried to the worker: the message
// must still go out after the request that produced it has finished.
func (d *Dispatcher) Notify(_ context.Context, msg Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.recordFailure(msg, fmt.Errorf("dispatcher closed"))
		return
	}
	select {
	case d.queue <- msg:
	default:
		d.recordFailure(msg, fmt.Errorf("queue full"))
	}
}

// Close stops accepting messages and waits until queued ones are delivered or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	d.Start()
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := d.sender.Send(ctx, msg.To, msg.Subject, msg.Body); err != nil {
		d.recordFailure(msg, err)
		return
	}
	log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("notify: message delivered")
}

func (d *Dispatcher) recordFailure(msg Message, cause error) {
	err := fmt.Errorf("%w: %v", domain.ErrDelivery, cause)
	log.Error().Err(err).Str("to", msg.To).Str("subject", msg.Subject).Msg("notify: delivery failed")
	if d.rdb == nil {
		return
	}
	entry, _ := json.Marshal(map[string]interface{}{
		"time":    time.Now().UTC(),
		"kind":    "notification",
		"to":      msg.To,
		"subject": msg.Subject,
		"message": err.Error(),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	pipe := d.rdb.TxPipeline()
	pipe.LPush(ctx, FailureLogKey, entry)
	pipe.LTrim(ctx, FailureLogKey, 0, healthkeys.ErrorLogMax-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Msg("notify: could not record delivery failure")
	}
}
