package alert

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 30 * time.Second

// Result is the outcome of one delivery attempt.
type Result struct {
	Alert    Alert
	Err      error
	Duration time.Duration
}

// Dispatcher runs alert delivery on its own goroutine.
// Dispatch never blocks; failures are logged and reported via the result
// callback but never retried.
type Dispatcher struct {
	sender   Sender
	timeout  time.Duration
	onResult func(Result)

	mu     sync.Mutex
	closed bool
	queue  chan Alert
	done   chan struct{}
}

// NewDispatcher starts the delivery goroutine. onResult may be nil; it is
// called from the delivery goroutine.
func NewDispatcher(sender Sender, timeout time.Duration, onResult func(Result)) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := &Dispatcher{
		sender:   sender,
		timeout:  timeout,
		onResult: onResult,
		queue:    make(chan Alert, 1),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// Dispatch queues a for delivery. Returns false if the dispatcher is closed
// or an earlier alert is still waiting to be sent.
func (d *Dispatcher) Dispatch(a Alert) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}

	select {
	case d.queue <- a:
		return true
	default:
		log.Printf("alert: dropping %s, previous alert still pending", a.ID)
		return false
	}
}

// Close stops accepting alerts and waits for queued and in-flight attempts,
// each bounded by the send timeout.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for a := range d.queue {
		d.deliver(a)
	}
}

func (d *Dispatcher) deliver(a Alert) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	err := d.sender.Send(ctx, a)
	res := Result{Alert: a, Err: err, Duration: time.Since(start)}

	if err != nil {
		log.Printf("alert: send %s failed after %v: %v", a.ID, res.Duration.Round(time.Millisecond), err)
	} else {
		log.Printf("alert: sent %s in %v", a.ID, res.Duration.Round(time.Millisecond))
	}

	if d.onResult != nil {
		d.onResult(res)
	}
}
