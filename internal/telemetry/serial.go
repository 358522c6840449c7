package telemetry

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"go.bug.st/serial"
)

// maxLineLen bounds the pending buffer if the board never sends a newline.
const maxLineLen = 4096

// SerialSource reads newline-terminated lines from a serial port.
type SerialSource struct {
	port    io.ReadCloser
	timeout time.Duration
	now     func() time.Time
	pending []byte
	buf     []byte
}

// NewSerialSource opens the port and waits settle for the board to reset.
// Opening the port toggles DTR on most Arduinos, which reboots the sketch.
func NewSerialSource(name string, baud int, readTimeout, settle time.Duration) (*SerialSource, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	if settle > 0 {
		time.Sleep(settle)
	}

	// Drop whatever the bootloader printed while we waited.
	if err := port.ResetInputBuffer(); err != nil {
		log.Printf("serial: reset input buffer: %v", err)
	}

	return newSerialSource(port, readTimeout, time.Now), nil
}

func newSerialSource(port io.ReadCloser, timeout time.Duration, now func() time.Time) *SerialSource {
	return &SerialSource{
		port:    port,
		timeout: timeout,
		now:     now,
		buf:     make([]byte, 256),
	}
}

// ReadLine returns the next complete line, or "" if none arrived in time.
// Partial data is kept for the next call.
func (s *SerialSource) ReadLine() (string, error) {
	deadline := s.now().Add(s.timeout)

	for {
		if i := bytes.IndexByte(s.pending, '\n'); i >= 0 {
			line := s.pending[:i]
			s.pending = append(s.pending[:0], s.pending[i+1:]...)
			return cleanLine(line), nil
		}

		n, err := s.port.Read(s.buf)
		if n > 0 {
			s.pending = append(s.pending, s.buf[:n]...)
			if len(s.pending) > maxLineLen {
				log.Printf("serial: discarding %d bytes without newline", len(s.pending))
				s.pending = s.pending[:0]
			}
		}
		if err != nil {
			return "", fmt.Errorf("serial read: %w", err)
		}
		if n == 0 {
			// go.bug.st/serial reports a timeout as a zero-length read.
			return "", nil
		}
		if !s.now().Before(deadline) {
			return "", nil
		}
	}
}

// Close closes the port.
func (s *SerialSource) Close() error {
	return s.port.Close()
}

// cleanLine trims whitespace and drops invalid UTF-8 (line noise during reset).
func cleanLine(b []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(b), ""))
}
