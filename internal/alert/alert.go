// Package alert delivers "stove left on" alerts to external channels.
// Delivery runs off the monitor loop so a slow gateway never delays the LED
// and buzzer refresh.
package alert

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/stove-sensor/internal/logic"
)

// Subject and Message are the fixed alert texts.
const (
	Subject = "STOVE ALERT"
	Message = "YOUR STOVE IS ON"
)

// Alert is a single alert attempt.
type Alert struct {
	ID        string
	Timestamp time.Time
	Reading   logic.DerivedReading
}

// New creates an alert with a fresh ID.
func New(ts time.Time, reading logic.DerivedReading) Alert {
	return Alert{
		ID:        uuid.NewString(),
		Timestamp: ts,
		Reading:   reading,
	}
}

// Sender delivers an alert. Implementations must honor ctx cancellation.
type Sender interface {
	Send(ctx context.Context, a Alert) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, a Alert) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, a Alert) error {
	return f(ctx, a)
}

// Multi sends to every sender concurrently and joins the errors.
// A sender that hangs until ctx expires does not hold up the others.
type Multi []Sender

// Send delivers a to every sender and waits for all of them.
// Errors are joined in sender order.
func (m Multi) Send(ctx context.Context, a Alert) error {
	errs := make([]error, len(m))
	var wg sync.WaitGroup
	for i, s := range m {
		wg.Add(1)
		go func(i int, s Sender) {
			defer wg.Done()
			errs[i] = s.Send(ctx, a)
		}(i, s)
	}
	wg.Wait()
	return errors.Join(errs...)
}
