package artifacts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openquant/barsim/internal/engine"
	"github.com/openquant/barsim/internal/model"
)

func TestBuildBuyAndHold(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := []model.Bar{
		{Ts: base, Close: 100},
		{Ts: base.Add(time.Minute), Close: 110},
	}
	rows := BuildBuyAndHold(bars, 10000)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].Equity != 10000 {
		t.Fatalf("rows[0].Equity = %v, want 10000 at entry", rows[0].Equity)
	}
	wantFinal := (10000.0 / 100.0) * 110
	if rows[1].Equity != wantFinal {
		t.Fatalf("rows[1].Equity = %v, want %v", rows[1].Equity, wantFinal)
	}
}

func TestBuildBuyAndHoldEmptyBars(t *testing.T) {
	if got := BuildBuyAndHold(nil, 10000); got != nil {
		t.Fatalf("expected nil for an empty bar slice, got %+v", got)
	}
}

func TestWriteBenchmarkEquityCSV(t *testing.T) {
	dir := t.TempDir()
	rows := []BenchmarkEquityRow{{Ts: time.Now().UTC(), Equity: 12345}}
	if err := WriteBenchmarkEquityCSV(dir, rows); err != nil {
		t.Fatalf("WriteBenchmarkEquityCSV() error: %v", err)
	}
	got := readCSV(t, filepath.Join(dir, "benchmark_equity.csv"))
	if got[0][0] != "ts" || got[0][1] != "equity" {
		t.Fatalf("header = %v, want [ts equity]", got[0])
	}
	if got[1][1] != "12345" {
		t.Fatalf("data row = %v, want equity=12345", got[1])
	}
}

func TestWriteBenchmarkSummaryTextReportsAlpha(t *testing.T) {
	dir := t.TempDir()
	stratResult := engine.Result{Equity: []engine.EquityRow{{Equity: 12000}}}
	benchmark := []BenchmarkEquityRow{{Equity: 11000}}
	if err := WriteBenchmarkSummaryText(dir, stratResult, benchmark); err != nil {
		t.Fatalf("WriteBenchmarkSummaryText() error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "benchmark_summary.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), "alpha:                  1000.00") {
		t.Fatalf("summary missing expected alpha line, got:\n%s", string(data))
	}
}
