package examples

import (
	"testing"
	"time"

	"github.com/openquant/barsim/internal/model"
	"github.com/openquant/barsim/internal/strategy"
)

func buildView(symbol string, closes []float64, positions map[string]model.Position) strategy.ContextView {
	hist := strategy.NewHistory()
	var lastBar model.Bar
	for _, c := range closes {
		b := model.Bar{Symbol: symbol, Open: c, High: c + 1, Low: c - 1, Close: c}
		hist.Append(b)
		lastBar = b
	}
	bars := map[string]model.Bar{symbol: lastBar}
	return strategy.NewView(time.Now().UTC(), []string{symbol}, bars, hist, nil, model.PortfolioState{}, positions)
}

func TestSMACrossoverEntersOnBullishCross(t *testing.T) {
	s := NewSMACrossover("AAA", 2, 3)
	view := buildView("AAA", []float64{10, 10, 10, 10, 12}, nil)

	signals := s.OnBars(view)
	if len(signals) != 1 {
		t.Fatalf("expected exactly one entry signal, got %+v", signals)
	}
	sig := signals[0]
	if sig.Side != model.Buy {
		t.Fatalf("Side = %v, want BUY", sig.Side)
	}
	spec, ok := sig.StopSpecHint()
	if !ok || spec["kind"] != string(model.StopStructural) {
		t.Fatalf("expected a structural stop spec, got %+v", spec)
	}
}

func TestSMACrossoverExitsOnBearishCross(t *testing.T) {
	s := NewSMACrossover("AAA", 2, 3)
	positions := map[string]model.Position{"AAA": {Symbol: "AAA", Side: model.Buy, Qty: 1}}
	// descending closes: fast crosses below slow on the last bar.
	view := buildView("AAA", []float64{12, 12, 12, 12, 10}, positions)

	signals := s.OnBars(view)
	if len(signals) != 1 {
		t.Fatalf("expected exactly one exit signal, got %+v", signals)
	}
	if !signals[0].IsExit() {
		t.Fatalf("expected an exit-flagged signal, got %+v", signals[0])
	}
}

func TestSMACrossoverNoSignalWithoutEnoughHistory(t *testing.T) {
	s := NewSMACrossover("AAA", 2, 3)
	view := buildView("AAA", []float64{10, 11}, nil)
	if signals := s.OnBars(view); signals != nil {
		t.Fatalf("expected no signal with insufficient history, got %+v", signals)
	}
}
