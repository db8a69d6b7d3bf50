package strategy

import "github.com/openquant/barsim/internal/model"

// History keeps the full append-only bar history per symbol the engine has
// observed so far, used to answer ContextView.History lookups. Kept as a
// plain growing slice rather than a ring buffer: a backtest's full bar
// count is bounded and known in advance, unlike a live feed.
type History struct {
	bars map[string][]model.Bar
}

// NewHistory builds an empty history tracker.
func NewHistory() *History {
	return &History{bars: map[string][]model.Bar{}}
}

// Append records bar as the newest observation for its symbol.
func (h *History) Append(bar model.Bar) {
	h.bars[bar.Symbol] = append(h.bars[bar.Symbol], bar)
}

// Last returns the n most recent bars for symbol, oldest first. Fewer than
// n are returned if history is shorter.
func (h *History) Last(symbol string, n int) []model.Bar {
	all := h.bars[symbol]
	if n <= 0 || len(all) == 0 {
		return nil
	}
	start := len(all) - n
	if start < 0 {
		start = 0
	}
	out := make([]model.Bar, len(all)-start)
	copy(out, all[start:])
	return out
}
