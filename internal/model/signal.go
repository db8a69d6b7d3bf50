package model

import (
	"strings"
	"time"
)

// Side is the direction of a signal, order, fill, or position.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// SignBuyPositive returns +1 for BUY, -1 for SELL. Used throughout the
// execution and portfolio math where "side_sign" appears in the spec.
func (s Side) SignBuyPositive() float64 {
	if s == Buy {
		return 1
	}
	return -1
}

// Signal is a strategy's trade intent for one symbol at one timestamp. It
// carries no guarantee of acceptance — the risk engine converts it into
// either an OrderIntent or a rejected decision.
type Signal struct {
	Ts         time.Time
	Symbol     string
	Side       Side
	SignalType string
	Confidence float64
	Metadata   map[string]any
}

// IsExit reports whether this signal should be treated as reduce/close-only,
// bypassing stop resolution. A signal is exit-like if its SignalType ends in
// "_exit", or metadata sets is_exit or reduce_only to true.
func (s Signal) IsExit() bool {
	if strings.HasSuffix(s.SignalType, "_exit") {
		return true
	}
	if v, ok := s.Metadata["is_exit"].(bool); ok && v {
		return true
	}
	if v, ok := s.Metadata["reduce_only"].(bool); ok && v {
		return true
	}
	return false
}

// StopPriceHint returns the explicit metadata.stop_price if present.
func (s Signal) StopPriceHint() (float64, bool) {
	if v, ok := s.Metadata["stop_price"].(float64); ok {
		return v, true
	}
	return 0, false
}

// StopSpecHint returns the raw metadata.stop_spec map if present, for the
// risk engine's normalizer to dispatch on "kind".
func (s Signal) StopSpecHint() (map[string]any, bool) {
	if v, ok := s.Metadata["stop_spec"].(map[string]any); ok {
		return v, true
	}
	return nil, false
}
