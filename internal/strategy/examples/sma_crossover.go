// Package examples holds the built-in strategies shipped with the engine,
// rewritten against the Signal/StopSpec contract in internal/strategy and
// internal/model rather than placing orders directly against a mutable
// broker-like context.
package examples

import (
	"github.com/openquant/barsim/internal/indicator"
	"github.com/openquant/barsim/internal/model"
	"github.com/openquant/barsim/internal/strategy"
)

// SMACrossover is a dual-SMA crossover strategy: long while the fast SMA is
// above the slow SMA, flat otherwise. A crossover entry carries a
// structural stop at the lookback low over the slow period.
type SMACrossover struct {
	Symbol     string
	FastPeriod int
	SlowPeriod int
}

// NewSMACrossover builds an SMA crossover strategy for one symbol.
func NewSMACrossover(symbol string, fast, slow int) *SMACrossover {
	return &SMACrossover{Symbol: symbol, FastPeriod: fast, SlowPeriod: slow}
}

func (s *SMACrossover) Name() string { return "sma_crossover" }

func (s *SMACrossover) OnBars(view strategy.ContextView) []model.Signal {
	hist := view.History(s.Symbol, s.SlowPeriod+2)
	if len(hist) < s.SlowPeriod+2 {
		return nil
	}
	closes := closesOf(hist)
	fastSMA := indicator.SMA(closes, s.FastPeriod)
	slowSMA := indicator.SMA(closes, s.SlowPeriod)
	if fastSMA == nil || slowSMA == nil {
		return nil
	}

	last := len(closes) - 1
	prev := last - 1
	fastNow, slowNow := fastSMA[last], slowSMA[last]
	fastPrev, slowPrev := fastSMA[prev], slowSMA[prev]

	_, inPosition := view.Position(s.Symbol)
	if _, ok := view.Bar(s.Symbol); !ok {
		return nil
	}

	if fastPrev <= slowPrev && fastNow > slowNow && !inPosition {
		structuralStop := lowestLow(hist[:last])
		return []model.Signal{{
			Ts:         view.Ts(),
			Symbol:     s.Symbol,
			Side:       model.Buy,
			SignalType: "sma_bullish_crossover",
			Confidence: 1,
			Metadata: map[string]any{
				"stop_spec": map[string]any{
					"kind":            string(model.StopStructural),
					"structural_stop": structuralStop,
				},
			},
		}}
	}

	if fastPrev >= slowPrev && fastNow < slowNow && inPosition {
		return []model.Signal{{
			Ts:         view.Ts(),
			Symbol:     s.Symbol,
			Side:       model.Sell,
			SignalType: "sma_bearish_crossover_exit",
			Confidence: 1,
			Metadata:   map[string]any{"reduce_only": true},
		}}
	}

	return nil
}

func closesOf(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func lowestLow(bars []model.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	low := bars[0].Low
	for _, b := range bars[1:] {
		if b.Low < low {
			low = b.Low
		}
	}
	return low
}
