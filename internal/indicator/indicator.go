// Package indicator provides the small set of rolling technical indicators
// the built-in example strategies need, computed directly off bar history
// rather than a streaming engine-managed registry.
package indicator

import "github.com/openquant/barsim/internal/model"

// SMA returns the simple moving average of closes over period, aligned
// index-for-index with closes. Entries before the window has period samples
// are NaN-free zero values and should not be read by callers.
func SMA(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) < period {
		return nil
	}
	out := make([]float64, len(closes))
	var sum float64
	for i, c := range closes {
		sum += c
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// RSI returns Wilder's relative strength index over period, aligned
// index-for-index with bars.
func RSI(bars []model.Bar, period int) []float64 {
	if period <= 0 || len(bars) < period+1 {
		return nil
	}
	out := make([]float64, len(bars))
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := bars[i].Close - bars[i-1].Close
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiFromAvg(avgGain, avgLoss)

	for i := period + 1; i < len(bars); i++ {
		delta := bars[i].Close - bars[i-1].Close
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiFromAvg(avgGain, avgLoss)
	}
	return out
}

func rsiFromAvg(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// ATR returns Wilder's average true range over period, aligned
// index-for-index with bars.
func ATR(bars []model.Bar, period int) []float64 {
	if period <= 0 || len(bars) < period+1 {
		return nil
	}
	trueRanges := make([]float64, len(bars))
	for i, b := range bars {
		if i == 0 {
			trueRanges[i] = b.High - b.Low
			continue
		}
		prevClose := bars[i-1].Close
		hl := b.High - b.Low
		hc := absF(b.High - prevClose)
		lc := absF(b.Low - prevClose)
		trueRanges[i] = maxOf3(hl, hc, lc)
	}

	out := make([]float64, len(bars))
	var sum float64
	for i := 1; i <= period; i++ {
		sum += trueRanges[i]
	}
	atr := sum / float64(period)
	out[period] = atr
	for i := period + 1; i < len(bars); i++ {
		atr = (atr*float64(period-1) + trueRanges[i]) / float64(period)
		out[i] = atr
	}
	return out
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxOf3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
