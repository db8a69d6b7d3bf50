package feed

import (
	"fmt"
	"time"

	"github.com/openquant/barsim/internal/model"
)

// BaseInterval is the required bar-to-bar spacing of any base (non-HTF)
// feed per spec §4.2: "Base feed must be 1-minute UTC."
const BaseInterval = time.Minute

// maxTolerableGap bounds how large a bar-to-bar gap can be before it's
// treated as a legitimate session boundary (overnight/weekend closure)
// rather than evidence the feed isn't actually 1-minute cadence. Anything
// narrower than this must land exactly on BaseInterval.
const maxTolerableGap = 24 * time.Hour

// validatingSource wraps a Source and enforces the stream-level invariants
// that a single Bar.Validate() call cannot see on its own: strict monotonic
// timestamps, duplicate rejection, and 1-minute base cadence. OHLC/volume/UTC
// sanity is delegated to Bar.Validate on every row.
type validatingSource struct {
	inner  Source
	lastTs *int64 // unix nanos of the previous emitted bar, nil before the first
}

// Validated wraps src so every bar it yields has already passed per-bar and
// per-stream sanity checks. A violation is a fatal DataError per spec §7.
func Validated(src Source) Source {
	return &validatingSource{inner: src}
}

func (v *validatingSource) Symbol() string { return v.inner.Symbol() }

func (v *validatingSource) Next() (model.Bar, bool, error) {
	bar, ok, err := v.inner.Next()
	if err != nil || !ok {
		return bar, ok, err
	}
	if err := bar.Validate(); err != nil {
		return model.Bar{}, false, &DataError{Symbol: v.Symbol(), Reason: err.Error()}
	}
	nanos := bar.Ts.UnixNano()
	if v.lastTs != nil {
		delta := time.Duration(nanos - *v.lastTs)
		if delta == 0 {
			return model.Bar{}, false, &DataError{Symbol: v.Symbol(), Reason: fmt.Sprintf("duplicate timestamp %s", bar.Ts)}
		}
		if delta < 0 {
			return model.Bar{}, false, &DataError{Symbol: v.Symbol(), Reason: fmt.Sprintf("non-monotonic timestamp %s", bar.Ts)}
		}
		if delta <= maxTolerableGap && delta != BaseInterval {
			return model.Bar{}, false, &DataError{Symbol: v.Symbol(), Reason: fmt.Sprintf("bar interval %s is not the 1-minute base cadence", delta)}
		}
	}
	v.lastTs = &nanos
	return bar, true, nil
}

func (v *validatingSource) Reset() error {
	v.lastTs = nil
	return v.inner.Reset()
}
