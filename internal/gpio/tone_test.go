package gpio

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"
)

type failingLine struct {
	mu     sync.Mutex
	writes int
	values []int
	err    error
}

func (l *failingLine) SetValue(v int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writes++
	l.values = append(l.values, v)
	return l.err
}

func (l *failingLine) Writes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writes
}

// runToneUntil runs the tone loop until line has seen n writes.
func runToneUntil(t *testing.T, line *failingLine, n int) {
	t.Helper()
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		runTone(line, time.Millisecond, stop)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for line.Writes() < n {
		if time.Now().After(deadline) {
			close(stop)
			<-done
			t.Fatalf("tone loop made %d writes, want at least %d", line.Writes(), n)
		}
		time.Sleep(time.Millisecond)
	}
	close(stop)
	<-done
}

func TestRunToneLogsFirstErrorOnly(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})

	line := &failingLine{err: errors.New("line released")}
	runToneUntil(t, line, 5)

	out := buf.String()
	if n := strings.Count(out, "buzzer tone write failed"); n != 1 {
		t.Errorf("logged %d tone errors, want 1:\n%s", n, out)
	}
	if !strings.Contains(out, "line released") {
		t.Errorf("log missing underlying error: %q", out)
	}
}

func TestRunToneKeepsTogglingAfterError(t *testing.T) {
	var buf bytes.Buffer
	prevOut := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prevOut) })

	line := &failingLine{err: errors.New("busy")}
	runToneUntil(t, line, 4)

	line.mu.Lock()
	defer line.mu.Unlock()
	for i, v := range line.values[:4] {
		want := (i + 1) % 2
		if v != want {
			t.Errorf("write %d = %d, want %d", i, v, want)
		}
	}
}

func TestRunToneNoLogOnSuccess(t *testing.T) {
	var buf bytes.Buffer
	prevOut := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prevOut) })

	line := &failingLine{}
	runToneUntil(t, line, 3)

	if buf.Len() != 0 {
		t.Errorf("unexpected log output: %q", buf.String())
	}
}
