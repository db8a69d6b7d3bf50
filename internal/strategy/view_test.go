package strategy

import (
	"testing"
	"time"

	"github.com/openquant/barsim/internal/model"
)

func TestViewBarsReturnsACopy(t *testing.T) {
	bars := map[string]model.Bar{"AAA": {Symbol: "AAA", Close: 1}}
	v := NewView(time.Now().UTC(), []string{"AAA"}, bars, NewHistory(), nil, model.PortfolioState{}, nil)

	got := v.Bars()
	got["AAA"] = model.Bar{Symbol: "AAA", Close: 999}

	if bars["AAA"].Close != 1 {
		t.Fatalf("mutating the returned map must not affect engine-owned state, got %+v", bars["AAA"])
	}
}

func TestViewTradeableUniverseReturnsACopy(t *testing.T) {
	universe := []string{"AAA", "BBB"}
	v := NewView(time.Now().UTC(), universe, nil, NewHistory(), nil, model.PortfolioState{}, nil)
	got := v.TradeableUniverse()
	got[0] = "ZZZ"
	if universe[0] != "AAA" {
		t.Fatalf("mutating the returned slice must not affect engine-owned state, got %v", universe)
	}
}

func TestViewHTFBarLookup(t *testing.T) {
	htf := map[string]map[string]model.HTFBar{"AAA": {"15m": {Symbol: "AAA", Close: 42}}}
	v := NewView(time.Now().UTC(), nil, nil, NewHistory(), htf, model.PortfolioState{}, nil)

	b, ok := v.HTFBar("AAA", "15m")
	if !ok || b.Close != 42 {
		t.Fatalf("HTFBar() = (%+v, %v), want (close=42, true)", b, ok)
	}
	if _, ok := v.HTFBar("AAA", "1h"); ok {
		t.Fatalf("HTFBar() for an unobserved timeframe should report absent")
	}
	if _, ok := v.HTFBar("ZZZ", "15m"); ok {
		t.Fatalf("HTFBar() for an unknown symbol should report absent")
	}
}

func TestViewPositionLookup(t *testing.T) {
	positions := map[string]model.Position{"AAA": {Symbol: "AAA", Qty: 10}}
	v := NewView(time.Now().UTC(), nil, nil, NewHistory(), nil, model.PortfolioState{}, positions)

	p, ok := v.Position("AAA")
	if !ok || p.Qty != 10 {
		t.Fatalf("Position() = (%+v, %v), want (qty=10, true)", p, ok)
	}
	if _, ok := v.Position("BBB"); ok {
		t.Fatalf("Position() for a flat symbol should report absent")
	}
}
