package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/stove-sensor/internal/logic"
)

var testReading = logic.DerivedReading{Light: 300, TempC: 25, TempF: 77, Dark: true, Warning: true, Danger: true}

func TestNewAlert(t *testing.T) {
	ts := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	a := New(ts, testReading)
	b := New(ts, testReading)

	if a.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if a.ID == b.ID {
		t.Error("expected unique IDs")
	}
	if !a.Timestamp.Equal(ts) || a.Reading != testReading {
		t.Errorf("unexpected alert: %+v", a)
	}
}

func TestMultiAttemptsAll(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	mk := func(name string, err error) Sender {
		return SenderFunc(func(ctx context.Context, a Alert) error {
			mu.Lock()
			calls = append(calls, name)
			mu.Unlock()
			return err
		})
	}

	errA := errors.New("gateway down")
	errC := errors.New("broker down")
	m := Multi{mk("a", errA), mk("b", nil), mk("c", errC)}

	err := m.Send(context.Background(), New(time.Now(), testReading))
	if len(calls) != 3 {
		t.Fatalf("expected 3 senders attempted, got %v", calls)
	}
	if !errors.Is(err, errA) || !errors.Is(err, errC) {
		t.Errorf("expected joined errors, got %v", err)
	}
}

func TestMultiHungSenderDoesNotStarveOthers(t *testing.T) {
	hung := SenderFunc(func(ctx context.Context, a Alert) error {
		<-ctx.Done()
		return ctx.Err()
	})
	delivered := make(chan string, 1)
	local := SenderFunc(func(ctx context.Context, a Alert) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		delivered <- a.ID
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	a := New(time.Now(), testReading)
	err := (Multi{hung, local}).Send(ctx, a)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error from the hung sender, got %v", err)
	}
	select {
	case id := <-delivered:
		if id != a.ID {
			t.Errorf("delivered %s, want %s", id, a.ID)
		}
	default:
		t.Fatal("second sender was starved by the hung first sender")
	}
}

func TestDispatcherHungSenderStillPublishesLocally(t *testing.T) {
	hung := SenderFunc(func(ctx context.Context, a Alert) error {
		<-ctx.Done()
		return ctx.Err()
	})
	var mu sync.Mutex
	published := 0
	local := SenderFunc(func(ctx context.Context, a Alert) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		mu.Lock()
		published++
		mu.Unlock()
		return nil
	})

	var res Result
	d := NewDispatcher(Multi{hung, local}, 200*time.Millisecond, func(r Result) { res = r })
	if !d.Dispatch(New(time.Now(), testReading)) {
		t.Fatal("Dispatch returned false")
	}
	d.Close()

	mu.Lock()
	defer mu.Unlock()
	if published != 1 {
		t.Errorf("expected 1 local delivery, got %d", published)
	}
	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Errorf("expected the hung sender's timeout in the result, got %v", res.Err)
	}
}

func TestMultiSuccess(t *testing.T) {
	ok := SenderFunc(func(ctx context.Context, a Alert) error { return nil })
	if err := (Multi{ok, ok}).Send(context.Background(), Alert{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (Multi{}).Send(context.Background(), Alert{}); err != nil {
		t.Errorf("empty Multi: unexpected error: %v", err)
	}
}

// blockingSender blocks each Send until release is closed.
type blockingSender struct {
	started chan string
	release chan struct{}
}

func (b *blockingSender) Send(ctx context.Context, a Alert) error {
	b.started <- a.ID
	<-b.release
	return nil
}

func TestDispatcherDelivers(t *testing.T) {
	var mu sync.Mutex
	var results []Result
	sent := make(chan Alert, 1)

	d := NewDispatcher(SenderFunc(func(ctx context.Context, a Alert) error {
		sent <- a
		return nil
	}), time.Second, func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})

	a := New(time.Now(), testReading)
	if !d.Dispatch(a) {
		t.Fatal("Dispatch returned false")
	}

	select {
	case got := <-sent:
		if got.ID != a.ID {
			t.Errorf("sent %s, want %s", got.ID, a.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("alert was not delivered")
	}

	d.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(results) != 1 || results[0].Err != nil {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestDispatcherReportsFailure(t *testing.T) {
	results := make(chan Result, 1)
	d := NewDispatcher(SenderFunc(func(ctx context.Context, a Alert) error {
		return errors.New("smtp: 421 service not available")
	}), time.Second, func(r Result) { results <- r })

	d.Dispatch(New(time.Now(), testReading))
	d.Close()

	r := <-results
	if r.Err == nil {
		t.Error("expected failure to be reported")
	}
}

func TestDispatcherDoesNotBlock(t *testing.T) {
	s := &blockingSender{started: make(chan string, 4), release: make(chan struct{})}
	d := NewDispatcher(s, time.Second, nil)

	first := New(time.Now(), testReading)
	if !d.Dispatch(first) {
		t.Fatal("first Dispatch returned false")
	}
	<-s.started // first alert is in flight

	// One more fits in the queue; the next is dropped without blocking.
	if !d.Dispatch(New(time.Now(), testReading)) {
		t.Error("second Dispatch should be queued")
	}

	done := make(chan bool, 1)
	go func() { done <- d.Dispatch(New(time.Now(), testReading)) }()
	select {
	case ok := <-done:
		if ok {
			t.Error("third Dispatch should be dropped")
		}
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked while a send was in flight")
	}

	close(s.release)
	d.Close()
}

func TestDispatcherTimeout(t *testing.T) {
	results := make(chan Result, 1)
	d := NewDispatcher(SenderFunc(func(ctx context.Context, a Alert) error {
		<-ctx.Done()
		return ctx.Err()
	}), 20*time.Millisecond, func(r Result) { results <- r })

	d.Dispatch(New(time.Now(), testReading))
	d.Close()

	r := <-results
	if !errors.Is(r.Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", r.Err)
	}
}

func TestDispatcherClose(t *testing.T) {
	d := NewDispatcher(SenderFunc(func(ctx context.Context, a Alert) error { return nil }), time.Second, nil)
	d.Close()
	d.Close() // idempotent

	if d.Dispatch(New(time.Now(), testReading)) {
		t.Error("Dispatch after Close should return false")
	}
}
