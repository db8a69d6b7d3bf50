package strategy

import (
	"time"

	"github.com/openquant/barsim/internal/model"
)

// view is the concrete, engine-constructed ContextView for one timestep.
// It is rebuilt fresh every bar so a Strategy implementation can never hold
// a reference into engine-owned mutable state across calls.
type view struct {
	ts        time.Time
	universe  []string
	bars      map[string]model.Bar
	history   *History
	htf       map[string]map[string]model.HTFBar // symbol -> timeframe -> bar
	portfolio model.PortfolioState
	positions map[string]model.Position
}

// NewView assembles a ContextView snapshot for one timestep. Callers (the
// engine) own htf/positions and must not mutate the maps passed in after
// the view is handed to a strategy.
func NewView(
	ts time.Time,
	universe []string,
	bars map[string]model.Bar,
	history *History,
	htf map[string]map[string]model.HTFBar,
	portfolio model.PortfolioState,
	positions map[string]model.Position,
) ContextView {
	return &view{
		ts:        ts,
		universe:  universe,
		bars:      bars,
		history:   history,
		htf:       htf,
		portfolio: portfolio,
		positions: positions,
	}
}

func (v *view) Ts() time.Time { return v.ts }

func (v *view) TradeableUniverse() []string {
	out := make([]string, len(v.universe))
	copy(out, v.universe)
	return out
}

func (v *view) Bar(symbol string) (model.Bar, bool) {
	b, ok := v.bars[symbol]
	return b, ok
}

func (v *view) Bars() map[string]model.Bar {
	out := make(map[string]model.Bar, len(v.bars))
	for k, b := range v.bars {
		out[k] = b
	}
	return out
}

func (v *view) History(symbol string, n int) []model.Bar {
	return v.history.Last(symbol, n)
}

func (v *view) HTFBar(symbol, timeframe string) (model.HTFBar, bool) {
	bySymbol, ok := v.htf[symbol]
	if !ok {
		return model.HTFBar{}, false
	}
	b, ok := bySymbol[timeframe]
	return b, ok
}

func (v *view) Portfolio() model.PortfolioState { return v.portfolio }

func (v *view) Position(symbol string) (model.Position, bool) {
	p, ok := v.positions[symbol]
	return p, ok
}
