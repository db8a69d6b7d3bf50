// Package feed implements the streaming, multi-symbol, time-aligned bar
// feed: per-symbol validated sources, scope filters, a k-way timestamp merge,
// and the higher-timeframe resampler.
package feed

import "github.com/openquant/barsim/internal/model"

// Source is a finite, restartable, lazy sequence of bars for one symbol.
// Next returns ok=false (no error) at end of stream.
type Source interface {
	Symbol() string
	Next() (model.Bar, bool, error)
	Reset() error
}

// DataError is fatal at run start per spec.md §7: malformed rows, schema
// violations, or manifest problems.
type DataError struct {
	Symbol string
	Reason string
}

func (e *DataError) Error() string {
	if e.Symbol == "" {
		return "data error: " + e.Reason
	}
	return "data error [" + e.Symbol + "]: " + e.Reason
}
