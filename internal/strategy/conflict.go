package strategy

import "github.com/openquant/barsim/internal/model"

// ResolveConflicts collapses a bar's raw signal batch down to at most one
// signal per symbol, applying the configured signal_conflict_policy to any
// symbol a strategy emitted more than once for in the same bar:
//
//   - reject:     a conflicting symbol produces no signal at all
//   - first_wins: the first signal in emission order is kept
//   - last_wins:  the last signal in emission order is kept
//   - net_out:    opposing BUY/SELL signals cancel; same-side signals
//     collapse to one, keeping the highest-confidence signal; a net of
//     exactly zero drops the symbol, same as reject
func ResolveConflicts(signals []model.Signal, policy string) []model.Signal {
	bySymbol := map[string][]model.Signal{}
	order := []string{}
	for _, s := range signals {
		if _, seen := bySymbol[s.Symbol]; !seen {
			order = append(order, s.Symbol)
		}
		bySymbol[s.Symbol] = append(bySymbol[s.Symbol], s)
	}

	out := make([]model.Signal, 0, len(order))
	for _, sym := range order {
		group := bySymbol[sym]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		resolved, ok := resolveGroup(group, policy)
		if ok {
			out = append(out, resolved)
		}
	}
	return out
}

func resolveGroup(group []model.Signal, policy string) (model.Signal, bool) {
	switch policy {
	case "first_wins":
		return group[0], true
	case "last_wins":
		return group[len(group)-1], true
	case "net_out":
		return netOut(group)
	case "reject":
		return model.Signal{}, false
	default:
		return model.Signal{}, false
	}
}

func netOut(group []model.Signal) (model.Signal, bool) {
	var net float64
	for _, s := range group {
		net += s.Side.SignBuyPositive()
	}
	if net == 0 {
		return model.Signal{}, false
	}
	side := model.Buy
	if net < 0 {
		side = model.Sell
	}
	var best model.Signal
	found := false
	for _, s := range group {
		if s.Side == side && (!found || s.Confidence > best.Confidence) {
			best = s
			found = true
		}
	}
	best.Side = side
	return best, true
}
