//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/stove-sensor/internal/logic"
)

// RealActuator drives the LED and buzzer on actual hardware using Linux GPIO character device.
type RealActuator struct {
	chip   *gpiocdev.Chip
	red    *gpiocdev.Line
	green  *gpiocdev.Line
	blue   *gpiocdev.Line
	buzzer *gpiocdev.Line
	toneHz int

	toneOn   bool
	toneStop chan struct{}
	toneWG   sync.WaitGroup
}

// NewRealActuator requests the output lines for actual Raspberry Pi hardware.
// All outputs start low (LED off, buzzer silent).
func NewRealActuator(pins Pins, toneHz int) (*RealActuator, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	a := &RealActuator{chip: chip, toneHz: toneHz}

	request := func(name string, pin int) (*gpiocdev.Line, error) {
		l, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			return nil, fmt.Errorf("request %s pin %d: %w", name, pin, err)
		}
		return l, nil
	}

	if a.red, err = request("red", pins.Red); err != nil {
		a.Close()
		return nil, err
	}
	if a.green, err = request("green", pins.Green); err != nil {
		a.Close()
		return nil, err
	}
	if a.blue, err = request("blue", pins.Blue); err != nil {
		a.Close()
		return nil, err
	}
	if a.buzzer, err = request("buzzer", pins.Buzzer); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// Set drives the LED channels and starts or stops the tone.
// Only called from the loop goroutine.
func (a *RealActuator) Set(cmd logic.Command) error {
	r, g, b := RGB(cmd.Color)

	if err := a.red.SetValue(level(r)); err != nil {
		return fmt.Errorf("set red: %w", err)
	}
	if err := a.green.SetValue(level(g)); err != nil {
		return fmt.Errorf("set green: %w", err)
	}
	if err := a.blue.SetValue(level(b)); err != nil {
		return fmt.Errorf("set blue: %w", err)
	}

	if cmd.Tone == a.toneOn {
		return nil
	}
	if cmd.Tone {
		return a.startTone()
	}
	return a.stopTone()
}

// startTone drives the buzzer. A passive buzzer gets a 50% duty square wave
// generated in software; an active buzzer (toneHz 0) is just held high.
func (a *RealActuator) startTone() error {
	a.toneOn = true
	if a.toneHz <= 0 {
		if err := a.buzzer.SetValue(1); err != nil {
			return fmt.Errorf("set buzzer: %w", err)
		}
		return nil
	}

	half := time.Second / time.Duration(2*a.toneHz)
	stop := make(chan struct{})
	a.toneStop = stop
	a.toneWG.Add(1)
	go func() {
		defer a.toneWG.Done()
		runTone(a.buzzer, half, stop)
	}()
	return nil
}

func (a *RealActuator) stopTone() error {
	a.toneOn = false
	if a.toneStop != nil {
		close(a.toneStop)
		a.toneWG.Wait()
		a.toneStop = nil
	}
	if err := a.buzzer.SetValue(0); err != nil {
		return fmt.Errorf("set buzzer: %w", err)
	}
	return nil
}

// Close silences the buzzer and releases GPIO resources.
// Reconfigures pins to input with pull-down (matching Pi boot defaults) before
// closing to ensure clean state for system shutdown/reboot.
func (a *RealActuator) Close() error {
	var errs []error

	if a.buzzer != nil {
		if err := a.stopTone(); err != nil {
			errs = append(errs, err)
		}
	}

	for _, l := range []struct {
		name string
		line *gpiocdev.Line
	}{
		{"red", a.red},
		{"green", a.green},
		{"blue", a.blue},
		{"buzzer", a.buzzer},
	} {
		if l.line == nil {
			continue
		}
		if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", l.name, err))
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", l.name, err))
		}
	}
	if a.chip != nil {
		if err := a.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
