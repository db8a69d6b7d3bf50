package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/openquant/barsim/internal/engine"
	"github.com/openquant/barsim/internal/model"
)

// BenchmarkEquityRow is one row of benchmark_equity.csv: a buy-and-hold
// equity curve over the configured benchmark symbol, built off the same
// initial capital as the strategy run.
type BenchmarkEquityRow struct {
	Ts     time.Time
	Equity float64
}

// BuildBuyAndHold replays bars for one symbol into a buy-and-hold equity
// curve: buy initialCapital / first close units (a fractional quantity,
// not rounded to whole units) at the first bar's close, mark to market on
// every subsequent bar.
func BuildBuyAndHold(bars []model.Bar, initialCapital float64) []BenchmarkEquityRow {
	if len(bars) == 0 {
		return nil
	}
	entryPrice := bars[0].Close
	qty := initialCapital / entryPrice
	out := make([]BenchmarkEquityRow, len(bars))
	for i, b := range bars {
		out[i] = BenchmarkEquityRow{Ts: b.Ts, Equity: qty * b.Close}
	}
	return out
}

// WriteBenchmarkEquityCSV writes benchmark_equity.csv.
func WriteBenchmarkEquityCSV(dir string, rows []BenchmarkEquityRow) error {
	return writeCSV(dir, "benchmark_equity.csv", []string{"ts", "equity"}, len(rows), func(i int) []string {
		r := rows[i]
		return []string{r.Ts.Format(time.RFC3339), fmtFloat(r.Equity)}
	})
}

// WriteBenchmarkSummaryText writes benchmark_summary.txt comparing the
// strategy's final equity to buy-and-hold.
func WriteBenchmarkSummaryText(dir string, strategyResult engine.Result, benchmark []BenchmarkEquityRow) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating run directory %s: %w", dir, err)
	}
	var stratFinal, benchFinal float64
	if len(strategyResult.Equity) > 0 {
		stratFinal = strategyResult.Equity[len(strategyResult.Equity)-1].Equity
	}
	if len(benchmark) > 0 {
		benchFinal = benchmark[len(benchmark)-1].Equity
	}
	body := fmt.Sprintf("strategy final equity:  %.2f\nbenchmark final equity: %.2f\nalpha:                  %.2f\n",
		stratFinal, benchFinal, stratFinal-benchFinal)
	return os.WriteFile(filepath.Join(dir, "benchmark_summary.txt"), []byte(body), 0o644)
}
