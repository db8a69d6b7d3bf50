package feed

import (
	"sort"
	"time"

	"github.com/openquant/barsim/internal/config"
	"github.com/openquant/barsim/internal/model"
)

// ScopeSymbols applies symbols_subset then max_symbols, in that documented
// order, to a manifest's resolved entries. Subsetting keeps the manifest's
// own symbol ordering; when max_symbols truncates, the survivors are sorted
// by symbol and the alphabetically first max_symbols are returned in that
// sorted order.
func ScopeSymbols(entries []ManifestEntry, cfg config.DataConfig) []ManifestEntry {
	out := entries
	if len(cfg.SymbolsSubset) > 0 {
		want := map[string]bool{}
		for _, s := range cfg.SymbolsSubset {
			want[s] = true
		}
		filtered := make([]ManifestEntry, 0, len(out))
		for _, e := range out {
			if want[e.Symbol] {
				filtered = append(filtered, e)
			}
		}
		out = filtered
	}
	if cfg.MaxSymbols > 0 && len(out) > cfg.MaxSymbols {
		sorted := make([]ManifestEntry, len(out))
		copy(sorted, out)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })
		out = sorted[:cfg.MaxSymbols]
	}
	return out
}

// scopedSource applies date_range_start/end and row_limit_per_symbol to an
// inner Source, in that order: range filtering happens on every candidate
// row, and the row counter only advances for rows that survive the range
// filter.
type scopedSource struct {
	inner    Source
	start    *time.Time
	end      *time.Time
	rowLimit int
	emitted  int
}

// Scoped wraps src with the data.* date-range and row-limit-per-symbol
// filters, applied after symbol-level subsetting and before the k-way merge.
func Scoped(src Source, cfg config.DataConfig) Source {
	if cfg.DateRangeStart == nil && cfg.DateRangeEnd == nil && cfg.RowLimitPerSymbol <= 0 {
		return src
	}
	return &scopedSource{inner: src, start: cfg.DateRangeStart, end: cfg.DateRangeEnd, rowLimit: cfg.RowLimitPerSymbol}
}

func (s *scopedSource) Symbol() string { return s.inner.Symbol() }

func (s *scopedSource) Next() (model.Bar, bool, error) {
	for {
		if s.rowLimit > 0 && s.emitted >= s.rowLimit {
			return model.Bar{}, false, nil
		}
		bar, ok, err := s.inner.Next()
		if err != nil || !ok {
			return bar, ok, err
		}
		if s.start != nil && bar.Ts.Before(*s.start) {
			continue
		}
		if s.end != nil && bar.Ts.After(*s.end) {
			return model.Bar{}, false, nil
		}
		s.emitted++
		return bar, true, nil
	}
}

func (s *scopedSource) Reset() error {
	s.emitted = 0
	return s.inner.Reset()
}
