package feed

import (
	"testing"
	"time"

	"github.com/openquant/barsim/internal/model"
)

func minuteBar(minute int, o, h, l, c float64) model.Bar {
	return model.Bar{
		Ts: time.Date(2024, 1, 1, 0, minute, 0, 0, time.UTC), Symbol: "AAA",
		Open: o, High: h, Low: l, Close: c, Volume: 1,
	}
}

func TestResamplerEmitsCompleteBucket(t *testing.T) {
	r := NewResampler(5*time.Minute, time.Minute, true)
	var emitted model.HTFBar
	var ok bool
	for m := 0; m < 5; m++ {
		emitted, ok = r.Observe(minuteBar(m, 1, 2, 0.5, 1.5))
		if ok {
			t.Fatalf("unexpected emission before the bucket closes, at minute %d", m)
		}
	}
	// The 6th bar (minute 5) belongs to the next bucket and closes out [0,5).
	emitted, ok = r.Observe(minuteBar(5, 1, 2, 0.5, 1.5))
	if !ok {
		t.Fatalf("expected the [0,5) bucket to close on the minute-5 bar")
	}
	if !emitted.Ts.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("emitted.Ts = %v, want bucket start 00:00", emitted.Ts)
	}
}

func TestResamplerStrictDropsIncompleteBucket(t *testing.T) {
	// 14 consecutive 1-min bars missing minute 8, aggregating to 15m: expected
	// no emission for that bucket even once minute 15 starts a new one.
	r := NewResampler(15*time.Minute, time.Minute, true)
	for m := 0; m < 15; m++ {
		if m == 8 {
			continue
		}
		_, ok := r.Observe(minuteBar(m, 1, 2, 0.5, 1.5))
		if ok {
			t.Fatalf("unexpected emission mid-bucket at minute %d", m)
		}
	}
	_, ok := r.Observe(minuteBar(15, 1, 2, 0.5, 1.5))
	if ok {
		t.Fatalf("strict mode must drop the incomplete [0,15) bucket, not emit it")
	}
}

func TestResamplerNonStrictEmitsIncompleteBucket(t *testing.T) {
	r := NewResampler(5*time.Minute, time.Minute, false)
	for m := 0; m < 5; m++ {
		if m == 2 {
			continue
		}
		r.Observe(minuteBar(m, 1, 2, 0.5, 1.5))
	}
	_, ok := r.Observe(minuteBar(5, 1, 2, 0.5, 1.5))
	if !ok {
		t.Fatalf("non-strict mode should still emit an incomplete bucket")
	}
}

func TestResamplerNoEndOfStreamFlush(t *testing.T) {
	r := NewResampler(5*time.Minute, time.Minute, false)
	for m := 0; m < 3; m++ {
		_, ok := r.Observe(minuteBar(m, 1, 2, 0.5, 1.5))
		if ok {
			t.Fatalf("unexpected emission mid-bucket at minute %d", m)
		}
	}
	// Stream ends here; the still-open bucket must never be flushed/emitted
	// by any mechanism other than a bar from the next bucket arriving.
}
