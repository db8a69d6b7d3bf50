package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/openquant/barsim/internal/model"
)

// csvSource reads a full CSV table into memory once and replays it, in the
// same header-driven, case-insensitive style as this codebase's original
// CSV loader (time|timestamp, open, high, low, close, volume, optional
// symbol column for single-file multi-symbol tables).
type csvSource struct {
	path          string
	defaultSymbol string
	rows          []model.Bar
	pos           int
}

// NewCSVSource opens path and loads it eagerly (spec: single-file mode
// "reads the full table into memory"). defaultSymbol is used for every row
// when the file carries no "symbol" column.
func NewCSVSource(path, defaultSymbol string) (Source, error) {
	s := &csvSource{path: path, defaultSymbol: defaultSymbol}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *csvSource) Symbol() string { return s.defaultSymbol }

func (s *csvSource) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		return &DataError{Symbol: s.defaultSymbol, Reason: err.Error()}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var headers []string
	rowIdx := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &DataError{Symbol: s.defaultSymbol, Reason: err.Error()}
		}
		if rowIdx == 0 {
			headers = rec
			rowIdx++
			continue
		}
		row := map[string]string{}
		for j, h := range headers {
			k := strings.ToLower(strings.TrimSpace(h))
			if j < len(rec) {
				row[k] = strings.TrimSpace(rec[j])
			}
		}
		bar, err := parseRow(row, s.defaultSymbol)
		if err != nil {
			return &DataError{Symbol: s.defaultSymbol, Reason: fmt.Sprintf("row %d: %v", rowIdx, err)}
		}
		s.rows = append(s.rows, bar)
		rowIdx++
	}
	return nil
}

func parseRow(row map[string]string, defaultSymbol string) (model.Bar, error) {
	tsStr := firstNonEmpty(row, "ts", "time", "timestamp")
	symbol := firstNonEmpty(row, "symbol")
	if symbol == "" {
		symbol = defaultSymbol
	}
	if tsStr == "" {
		return model.Bar{}, fmt.Errorf("missing timestamp column")
	}
	ts, err := parseTimestamp(tsStr)
	if err != nil {
		return model.Bar{}, err
	}
	o, err := parseFloat(row, "open")
	if err != nil {
		return model.Bar{}, err
	}
	h, err := parseFloat(row, "high")
	if err != nil {
		return model.Bar{}, err
	}
	l, err := parseFloat(row, "low")
	if err != nil {
		return model.Bar{}, err
	}
	c, err := parseFloat(row, "close")
	if err != nil {
		return model.Bar{}, err
	}
	v, err := parseFloat(row, "volume", "vol")
	if err != nil {
		return model.Bar{}, err
	}
	bar := model.Bar{Ts: ts, Symbol: symbol, Open: o, High: h, Low: l, Close: c, Volume: v}
	if err := bar.Validate(); err != nil {
		return model.Bar{}, err
	}
	return bar, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

func parseFloat(row map[string]string, keys ...string) (float64, error) {
	v := firstNonEmpty(row, keys...)
	if v == "" {
		return 0, fmt.Errorf("missing column %v", keys)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q for %v", v, keys)
	}
	return f, nil
}

func firstNonEmpty(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}

func (s *csvSource) Next() (model.Bar, bool, error) {
	if s.pos >= len(s.rows) {
		return model.Bar{}, false, nil
	}
	bar := s.rows[s.pos]
	s.pos++
	return bar, true, nil
}

func (s *csvSource) Reset() error {
	s.pos = 0
	return nil
}
