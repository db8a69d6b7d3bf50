// Package model defines the core value types shared by every stage of the
// simulation pipeline: bars, signals, stop specifications, order intents,
// fills, positions, trades, and portfolio state.
package model

import (
	"fmt"
	"time"
)

// Bar is a single OHLCV sample for one symbol at one UTC instant.
type Bar struct {
	Ts     time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Validate checks the per-bar invariants from the data model: OHLC sanity,
// non-negative volume, and UTC tz-awareness. It does not check monotonicity
// or duplicate timestamps, which are stream-level properties enforced by the
// feed as bars arrive in sequence.
func (b Bar) Validate() error {
	if b.Ts.Location() != time.UTC {
		return fmt.Errorf("bar %s@%s: timestamp is not UTC", b.Symbol, b.Ts)
	}
	lowerBound := b.Open
	if b.Close < lowerBound {
		lowerBound = b.Close
	}
	upperBound := b.Open
	if b.Close > upperBound {
		upperBound = b.Close
	}
	if b.Low > lowerBound {
		return fmt.Errorf("bar %s@%s: low %.8f exceeds min(open,close) %.8f", b.Symbol, b.Ts, b.Low, lowerBound)
	}
	if b.High < upperBound {
		return fmt.Errorf("bar %s@%s: high %.8f below max(open,close) %.8f", b.Symbol, b.Ts, b.High, upperBound)
	}
	if b.High < b.Low {
		return fmt.Errorf("bar %s@%s: high %.8f below low %.8f", b.Symbol, b.Ts, b.High, b.Low)
	}
	if b.Volume < 0 {
		return fmt.Errorf("bar %s@%s: negative volume %.8f", b.Symbol, b.Ts, b.Volume)
	}
	return nil
}

// HTFBar is a higher-timeframe bar emitted by the resampler. Its Ts is the
// UTC-floored bucket-start timestamp, not the timestamp of any single
// underlying bar.
type HTFBar = Bar
