package artifacts

import (
	"math"
	"testing"
	"time"

	"github.com/openquant/barsim/internal/engine"
	"github.com/openquant/barsim/internal/model"
)

func eq(ts time.Time, equity float64) engine.EquityRow {
	return engine.EquityRow{Ts: ts, Equity: equity, Cash: equity}
}

func TestComputePerformanceEmptyRun(t *testing.T) {
	p := ComputePerformance(engine.Result{}, 10000, 0)
	if p.SchemaVersion != 1 {
		t.Fatalf("SchemaVersion = %d, want 1", p.SchemaVersion)
	}
	if p.FinalEquity != 0 || p.TotalTrades != 0 {
		t.Fatalf("expected a zero-value performance for an empty run, got %+v", p)
	}
}

func TestComputePerformanceNetPnLAndFinalEquity(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	res := engine.Result{
		Equity: []engine.EquityRow{eq(base, 10000), eq(base.Add(24 * time.Hour), 11000)},
	}
	p := ComputePerformance(res, 10000, 0)
	if p.FinalEquity != 11000 {
		t.Fatalf("FinalEquity = %v, want 11000", p.FinalEquity)
	}
	if p.NetPnL != 1000 {
		t.Fatalf("NetPnL = %v, want 1000", p.NetPnL)
	}
}

func TestComputePerformanceTradeStats(t *testing.T) {
	res := engine.Result{
		Equity: []engine.EquityRow{eq(time.Now(), 10000)},
		Trades: []model.Trade{
			{PnLNet: 100},
			{PnLNet: -50},
			{PnLNet: 200},
		},
	}
	p := ComputePerformance(res, 10000, 0)
	if p.TotalTrades != 3 {
		t.Fatalf("TotalTrades = %d, want 3", p.TotalTrades)
	}
	wantWinRate := 2.0 / 3.0 * 100
	if p.WinRatePct != wantWinRate {
		t.Fatalf("WinRatePct = %v, want %v", p.WinRatePct, wantWinRate)
	}
	wantPF := 300.0 / 50.0
	if p.ProfitFactor != wantPF {
		t.Fatalf("ProfitFactor = %v, want %v", p.ProfitFactor, wantPF)
	}
	wantExpectancy := (100.0 - 50.0 + 200.0) / 3.0
	if p.ExpectancyPerTrd != wantExpectancy {
		t.Fatalf("ExpectancyPerTrd = %v, want %v", p.ExpectancyPerTrd, wantExpectancy)
	}
}

func TestComputePerformanceProfitFactorAllWinsIsInfinite(t *testing.T) {
	res := engine.Result{
		Equity: []engine.EquityRow{eq(time.Now(), 10000)},
		Trades: []model.Trade{{PnLNet: 10}, {PnLNet: 5}},
	}
	p := ComputePerformance(res, 10000, 0)
	if !math.IsInf(p.ProfitFactor, 1) {
		t.Fatalf("ProfitFactor = %v, want +Inf when there are no losses", p.ProfitFactor)
	}
}

func TestComputeDrawdownTracksPeakToTrough(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	res := engine.Result{
		Equity: []engine.EquityRow{
			eq(base, 10000),
			eq(base.Add(time.Hour), 12000),
			eq(base.Add(2*time.Hour), 9000),
			eq(base.Add(3*time.Hour), 11000),
		},
	}
	p := ComputePerformance(res, 10000, 0)
	wantDD := (12000.0 - 9000.0) / 12000.0 * 100
	if p.MaxDrawdownPct != wantDD {
		t.Fatalf("MaxDrawdownPct = %v, want %v", p.MaxDrawdownPct, wantDD)
	}
}

func TestComputeCAGRRequiresAtLeastTwoPositiveDaySpan(t *testing.T) {
	res := engine.Result{Equity: []engine.EquityRow{eq(time.Now(), 10000)}}
	p := ComputePerformance(res, 10000, 0)
	if p.CAGRPct != 0 {
		t.Fatalf("CAGRPct = %v, want 0 with a single equity row", p.CAGRPct)
	}
}
