package feed

import (
	"time"

	"github.com/openquant/barsim/internal/model"
)

// htfBucket accumulates one in-progress higher-timeframe bar for one symbol.
type htfBucket struct {
	symbol  string
	start   time.Time
	open    float64
	high    float64
	low     float64
	close   float64
	volume  float64
	nBars   int
	lastTs  time.Time
	maxGap  time.Duration
	hasBars bool
}

// Resampler builds higher-timeframe bars from a base-timeframe tick stream,
// one independent bucket state per (symbol, timeframe). Bucket-start is the
// UTC floor of the base bar's timestamp to the timeframe duration. A bucket
// is "complete" when it has received the expected number of base bars with
// no intra-bucket gap exceeding one minute; in strict mode an incomplete
// bucket is dropped rather than emitted, and there is no end-of-stream
// flush of a still-open bucket.
type Resampler struct {
	timeframe     time.Duration
	baseInterval  time.Duration
	strict        bool
	buckets       map[string]*htfBucket
}

const maxIntraBucketGap = time.Minute

// NewResampler builds a resampler for one timeframe. baseInterval is the
// duration between consecutive base bars, used to compute each bucket's
// expected bar count.
func NewResampler(timeframe, baseInterval time.Duration, strict bool) *Resampler {
	return &Resampler{
		timeframe:    timeframe,
		baseInterval: baseInterval,
		strict:       strict,
		buckets:      map[string]*htfBucket{},
	}
}

func (r *Resampler) bucketStart(ts time.Time) time.Time {
	return ts.UTC().Truncate(r.timeframe)
}

func (r *Resampler) expectedBars() int {
	if r.baseInterval <= 0 {
		return 0
	}
	return int(r.timeframe / r.baseInterval)
}

// Observe feeds one base bar for a symbol into its bucket, returning the
// completed HTFBar (and ok=true) if this bar closed out the previous
// bucket — i.e. the bar belongs to a new bucket-start than the one
// currently accumulating for this symbol.
func (r *Resampler) Observe(bar model.Bar) (model.HTFBar, bool) {
	start := r.bucketStart(bar.Ts)
	b, exists := r.buckets[bar.Symbol]

	var emitted model.HTFBar
	var ok bool
	if exists && !b.start.Equal(start) {
		emitted, ok = r.finalize(b)
		exists = false
	}

	if !exists {
		b = &htfBucket{symbol: bar.Symbol, start: start}
		r.buckets[bar.Symbol] = b
	}

	if b.hasBars {
		gap := bar.Ts.Sub(b.lastTs)
		if gap > b.maxGap {
			b.maxGap = gap
		}
		b.high = maxF(b.high, bar.High)
		b.low = minF(b.low, bar.Low)
		b.close = bar.Close
		b.volume += bar.Volume
	} else {
		b.open = bar.Open
		b.high = bar.High
		b.low = bar.Low
		b.close = bar.Close
		b.volume = bar.Volume
		b.hasBars = true
	}
	b.nBars++
	b.lastTs = bar.Ts

	return emitted, ok
}

func (r *Resampler) finalize(b *htfBucket) (model.HTFBar, bool) {
	complete := b.nBars == r.expectedBars() && b.maxGap <= maxIntraBucketGap
	if r.strict && !complete {
		return model.HTFBar{}, false
	}
	return model.HTFBar{
		Ts:     b.start,
		Symbol: b.symbol,
		Open:   b.open,
		High:   b.high,
		Low:    b.low,
		Close:  b.close,
		Volume: b.volume,
	}, true
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
