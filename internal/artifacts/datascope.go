package artifacts

import "github.com/openquant/barsim/internal/config"

// DataScope is the contents of data_scope.json: a record of which symbol
// and row-level restrictions were actually applied, written only when the
// data.* config block narrowed the input at all.
type DataScope struct {
	SymbolsSubset     []string `json:"symbols_subset,omitempty"`
	MaxSymbols        int      `json:"max_symbols,omitempty"`
	RowLimitPerSymbol int      `json:"row_limit_per_symbol,omitempty"`
	DateRangeStart    string   `json:"date_range_start,omitempty"`
	DateRangeEnd      string   `json:"date_range_end,omitempty"`
}

// IsScoped reports whether any restriction was actually configured, the
// condition under which data_scope.json gets written at all.
func IsScoped(cfg config.DataConfig) bool {
	return len(cfg.SymbolsSubset) > 0 || cfg.MaxSymbols > 0 || cfg.RowLimitPerSymbol > 0 ||
		cfg.DateRangeStart != nil || cfg.DateRangeEnd != nil
}

// BuildDataScope converts a DataConfig into its artifact form.
func BuildDataScope(cfg config.DataConfig) DataScope {
	ds := DataScope{
		SymbolsSubset:     cfg.SymbolsSubset,
		MaxSymbols:        cfg.MaxSymbols,
		RowLimitPerSymbol: cfg.RowLimitPerSymbol,
	}
	if cfg.DateRangeStart != nil {
		ds.DateRangeStart = cfg.DateRangeStart.Format("2006-01-02T15:04:05Z07:00")
	}
	if cfg.DateRangeEnd != nil {
		ds.DateRangeEnd = cfg.DateRangeEnd.Format("2006-01-02T15:04:05Z07:00")
	}
	return ds
}

// WriteDataScopeJSON writes data_scope.json.
func WriteDataScopeJSON(dir string, ds DataScope) error {
	return writeJSON(dir, "data_scope.json", ds)
}
