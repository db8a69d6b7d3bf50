package examples

import (
	"github.com/openquant/barsim/internal/indicator"
	"github.com/openquant/barsim/internal/model"
	"github.com/openquant/barsim/internal/strategy"
)

// ATRBreakout goes long on a new N-bar high and stops out on an ATR
// multiple below entry. Unlike SMACrossover's structural stop, this
// strategy demonstrates the atr StopSpec kind end to end.
type ATRBreakout struct {
	Symbol       string
	LookbackBars int
	ATRPeriod    int
	ATRMultiple  float64
}

// NewATRBreakout builds an ATR breakout strategy for one symbol.
func NewATRBreakout(symbol string, lookback, atrPeriod int, atrMultiple float64) *ATRBreakout {
	return &ATRBreakout{Symbol: symbol, LookbackBars: lookback, ATRPeriod: atrPeriod, ATRMultiple: atrMultiple}
}

func (s *ATRBreakout) Name() string { return "atr_breakout" }

func (s *ATRBreakout) OnBars(view strategy.ContextView) []model.Signal {
	need := maxInt(s.LookbackBars, s.ATRPeriod+1) + 1
	hist := view.History(s.Symbol, need)
	if len(hist) < need {
		return nil
	}

	bar, ok := view.Bar(s.Symbol)
	if !ok {
		return nil
	}

	_, inPosition := view.Position(s.Symbol)
	if inPosition {
		return nil
	}

	priorHigh := highestHigh(hist[:len(hist)-1], s.LookbackBars)
	if bar.Close <= priorHigh {
		return nil
	}

	atrSeries := indicator.ATR(hist, s.ATRPeriod)
	if atrSeries == nil {
		return nil
	}
	atr := atrSeries[len(atrSeries)-1]
	if atr <= 0 {
		return nil
	}

	return []model.Signal{{
		Ts:         view.Ts(),
		Symbol:     s.Symbol,
		Side:       model.Buy,
		SignalType: "atr_breakout_entry",
		Confidence: 1,
		Metadata: map[string]any{
			"stop_spec": map[string]any{
				"kind":          string(model.StopATR),
				"atr_multiple":  s.ATRMultiple,
				"atr_indicator": "atr",
				"_atr_value":    atr,
			},
		},
	}}
}

func highestHigh(bars []model.Bar, lookback int) float64 {
	if len(bars) == 0 {
		return 0
	}
	start := len(bars) - lookback
	if start < 0 {
		start = 0
	}
	high := bars[start].High
	for _, b := range bars[start:] {
		if b.High > high {
			high = b.High
		}
	}
	return high
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
