package gpio

import (
	"log"
	"time"
)

// valueSetter is the part of a GPIO output line the tone loop needs.
type valueSetter interface {
	SetValue(value int) error
}

// runTone toggles line every half period until stop is closed. Write errors
// don't stop the tone; only the first one is logged.
func runTone(line valueSetter, half time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(half)
	defer t.Stop()

	v := 0
	logged := false
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			v ^= 1
			if err := line.SetValue(v); err != nil && !logged {
				log.Printf("gpio: buzzer tone write failed: %v", err)
				logged = true
			}
		}
	}
}
