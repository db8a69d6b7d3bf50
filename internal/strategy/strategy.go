// Package strategy defines the strategy contract: a pure function from a
// read-only view of the current timestep to a set of trade signals, plus
// the conflict-resolution policy the engine applies when a strategy emits
// more than one signal for the same symbol in the same bar.
package strategy

import (
	"time"

	"github.com/openquant/barsim/internal/model"
)

// Strategy is a backtestable trading strategy. Unlike the teacher's
// mutating StrategyContext, OnBars receives a read-only ContextView and
// returns its intents explicitly — there is no order-placement side
// channel, so a strategy cannot act on data later than its own return
// value implies.
type Strategy interface {
	Name() string
	OnBars(view ContextView) []model.Signal
}

// ContextView is the strategy's entire window onto the world for one
// timestep: the current bars, recent history, the most recent HTF bars per
// timeframe, and a snapshot of portfolio/position state. Every accessor
// returns a copy or a value type; nothing it returns aliases engine state,
// so a strategy has no way to mutate the simulation from inside OnBars.
type ContextView interface {
	Ts() time.Time
	TradeableUniverse() []string
	Bar(symbol string) (model.Bar, bool)
	Bars() map[string]model.Bar
	History(symbol string, n int) []model.Bar
	HTFBar(symbol, timeframe string) (model.HTFBar, bool)
	Portfolio() model.PortfolioState
	Position(symbol string) (model.Position, bool)
}
