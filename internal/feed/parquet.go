package feed

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/openquant/barsim/internal/model"
)

// parquetSource streams one symbol's bars out of a Parquet file via DuckDB's
// read_parquet table function, ordered by timestamp ascending. Grounded on
// this pack's DuckDB/Arrow based Parquet reading convention: an in-process
// SQL engine queried through database/sql rather than a raw Parquet decoder.
type parquetSource struct {
	path   string
	symbol string
	db     *sql.DB
	rows   *sql.Rows
}

// NewParquetSource opens path (a single Parquet file holding one symbol's
// bars) and prepares a streaming, ordered scan over it.
func NewParquetSource(path, symbol string) (Source, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, &DataError{Symbol: symbol, Reason: fmt.Sprintf("duckdb open: %v", err)}
	}
	s := &parquetSource{path: path, symbol: symbol, db: db}
	if err := s.openScan(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *parquetSource) openScan() error {
	const q = `
		SELECT ts, open, high, low, close, volume
		FROM read_parquet(?)
		ORDER BY ts ASC`
	rows, err := s.db.Query(q, s.path)
	if err != nil {
		return &DataError{Symbol: s.symbol, Reason: fmt.Sprintf("read_parquet(%s): %v", s.path, err)}
	}
	s.rows = rows
	return nil
}

func (s *parquetSource) Symbol() string { return s.symbol }

func (s *parquetSource) Next() (model.Bar, bool, error) {
	if s.rows == nil {
		return model.Bar{}, false, nil
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return model.Bar{}, false, &DataError{Symbol: s.symbol, Reason: err.Error()}
		}
		return model.Bar{}, false, nil
	}
	var ts time.Time
	var o, h, l, c, v float64
	if err := s.rows.Scan(&ts, &o, &h, &l, &c, &v); err != nil {
		return model.Bar{}, false, &DataError{Symbol: s.symbol, Reason: fmt.Sprintf("scan: %v", err)}
	}
	bar := model.Bar{Ts: ts.UTC(), Symbol: s.symbol, Open: o, High: h, Low: l, Close: c, Volume: v}
	if err := bar.Validate(); err != nil {
		return model.Bar{}, false, &DataError{Symbol: s.symbol, Reason: err.Error()}
	}
	return bar, true, nil
}

func (s *parquetSource) Reset() error {
	if s.rows != nil {
		s.rows.Close()
	}
	return s.openScan()
}
