package artifacts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/openquant/barsim/internal/engine"
)

// WriteSummaryText writes summary.txt, a short human-readable recap of the
// run next to the machine-readable artifacts — the same "plain text next
// to the structured output" convention this codebase follows for its other
// report formats.
func WriteSummaryText(dir string, perf Performance, res engine.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating run directory %s: %w", dir, err)
	}
	body := fmt.Sprintf(
		"final equity:  %.2f\nnet pnl:       %.2f\ntotal trades:  %d\nwin rate:      %.2f%%\nprofit factor: %.2f\nmax drawdown:  %.2f%%\nsharpe:        %.2f\nsortino:       %.2f\nfee drag:      %.2f%%\nslippage drag: %.2f%%\nspread drag:   %.2f%%\nlegacy stop proxy used: %t\n",
		perf.FinalEquity, perf.NetPnL, perf.TotalTrades, perf.WinRatePct, perf.ProfitFactor,
		perf.MaxDrawdownPct, perf.SharpeRatio, perf.SortinoRatio,
		perf.FeeDragPct, perf.SlippageDragPct, perf.SpreadDragPct, res.UsedLegacyStopProxy,
	)
	return os.WriteFile(filepath.Join(dir, "summary.txt"), []byte(body), 0o644)
}
