package logic

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Token prefixes emitted by the sensor board.
const (
	PrefixLight = "L:"
	PrefixTemp  = "T:"
)

// ParseLine extracts light and temperature from a line like "L:512 T:45.3".
// Tokens may appear in any order; unknown tokens are ignored. Invalid values
// leave the field absent. A later valid token overwrites an earlier one.
// Out-of-range values saturate rather than drop, so "L:1e10" reads as a lit
// room and "T:inf" as a hot stove.
func ParseLine(line string) RawReading {
	var r RawReading

	for _, tok := range strings.Fields(line) {
		switch {
		case strings.HasPrefix(tok, PrefixLight):
			if v, ok := parseNumber(tok[len(PrefixLight):]); ok {
				r.Light = clampLight(v)
				r.HasLight = true
			}
		case strings.HasPrefix(tok, PrefixTemp):
			if v, ok := parseNumber(tok[len(PrefixTemp):]); ok {
				r.TempC = clampTemp(v)
				r.HasTemp = true
			}
		}
	}

	return r
}

// parseNumber accepts any float including ±Inf. NaN has no ordering and is
// treated as absent.
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// clampLight truncates toward zero; the board sometimes sends "512.0".
func clampLight(v float64) int {
	switch {
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int(v)
}

// clampTemp keeps the value finite so it survives conversion and JSON.
func clampTemp(v float64) float64 {
	switch {
	case v > math.MaxFloat32:
		return math.MaxFloat32
	case v < -math.MaxFloat32:
		return -math.MaxFloat32
	}
	return v
}
