// Package artifacts writes every file a run produces to its output
// directory: the equity curve, trade log, fills, decisions, performance
// summary, and run status, in the exact shapes downstream tooling expects.
package artifacts

import (
	"math"

	"github.com/openquant/barsim/internal/engine"
	"github.com/openquant/barsim/internal/model"
)

// Performance is the computed contents of performance.json.
type Performance struct {
	SchemaVersion    int     `json:"schema_version"`
	FinalEquity      float64 `json:"final_equity"`
	GrossPnL         float64 `json:"gross_pnl"`
	NetPnL           float64 `json:"net_pnl"`
	FeeTotal         float64 `json:"fee_total"`
	SlippageTotal    float64 `json:"slippage_total"`
	SpreadTotal      float64 `json:"spread_total"`
	FeeDragPct       float64 `json:"fee_drag_pct"`
	SlippageDragPct  float64 `json:"slippage_drag_pct"`
	SpreadDragPct    float64 `json:"spread_drag_pct"`
	CAGRPct          float64 `json:"cagr_pct"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	MaxDrawdownPct   float64 `json:"max_drawdown_pct"`
	TotalTrades      int     `json:"total_trades"`
	WinRatePct       float64 `json:"win_rate_pct"`
	ProfitFactor     float64 `json:"profit_factor"`
	ExpectancyPerTrd float64 `json:"expectancy_per_trade"`
}

// ComputePerformance derives performance.json's contents from a run Result
// and the configured risk-free rate, following the same CAGR/Sharpe/Sortino/
// drawdown formulas this codebase has always used for its equity curve
// metrics.
func ComputePerformance(res engine.Result, initialCapital, riskFreeRate float64) Performance {
	p := Performance{SchemaVersion: 1}
	if len(res.Equity) == 0 {
		return p
	}
	p.FinalEquity = res.Equity[len(res.Equity)-1].Equity

	var feeTotal, slipTotal, spreadTotal float64
	for _, f := range res.Fills {
		feeTotal += f.FeeCost
		slipTotal += math.Abs(f.SlippageCost)
		spreadTotal += math.Abs(f.SpreadCost)
	}
	p.FeeTotal, p.SlippageTotal, p.SpreadTotal = feeTotal, slipTotal, spreadTotal

	p.GrossPnL = p.FinalEquity - initialCapital + feeTotal
	p.NetPnL = p.FinalEquity - initialCapital
	if p.GrossPnL != 0 {
		p.FeeDragPct = feeTotal / math.Abs(p.GrossPnL) * 100
		p.SlippageDragPct = slipTotal / math.Abs(p.GrossPnL) * 100
		p.SpreadDragPct = spreadTotal / math.Abs(p.GrossPnL) * 100
	}

	computeTradeStats(&p, res.Trades)
	computeCAGR(&p, res.Equity, initialCapital)
	computeDrawdown(&p, res.Equity)
	computeSharpe(&p, res.Equity, riskFreeRate)
	computeSortino(&p, res.Equity, riskFreeRate)
	return p
}

func computeTradeStats(p *Performance, trades []model.Trade) {
	p.TotalTrades = len(trades)
	if p.TotalTrades == 0 {
		return
	}
	var wins, totalWin, totalLoss float64
	var winCount int
	for _, t := range trades {
		if t.PnLNet > 0 {
			winCount++
			totalWin += t.PnLNet
		} else if t.PnLNet < 0 {
			totalLoss += -t.PnLNet
		}
		wins += t.PnLNet
	}
	p.WinRatePct = float64(winCount) / float64(p.TotalTrades) * 100
	p.ExpectancyPerTrd = wins / float64(p.TotalTrades)
	if totalLoss > 0 {
		p.ProfitFactor = totalWin / totalLoss
	} else if totalWin > 0 {
		p.ProfitFactor = math.Inf(1)
	}
}

func computeCAGR(p *Performance, equity []engine.EquityRow, initialCapital float64) {
	if initialCapital <= 0 || p.FinalEquity <= 0 || len(equity) < 2 {
		return
	}
	days := equity[len(equity)-1].Ts.Sub(equity[0].Ts).Hours() / 24
	if days <= 0 {
		return
	}
	years := days / 365.25
	p.CAGRPct = (math.Pow(p.FinalEquity/initialCapital, 1.0/years) - 1) * 100
}

func computeDrawdown(p *Performance, equity []engine.EquityRow) {
	if len(equity) == 0 {
		return
	}
	peak := equity[0].Equity
	var maxDDPct float64
	for _, e := range equity {
		if e.Equity > peak {
			peak = e.Equity
		}
		if peak <= 0 {
			continue
		}
		ddPct := (peak - e.Equity) / peak * 100
		if ddPct > maxDDPct {
			maxDDPct = ddPct
		}
	}
	p.MaxDrawdownPct = maxDDPct
}

func computeSharpe(p *Performance, equity []engine.EquityRow, riskFreeRate float64) {
	returns := stepReturns(equity)
	if len(returns) < 2 {
		return
	}
	periodRf := riskFreeRate / 252
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - periodRf
	}
	m, sd := mean(excess), stddev(excess)
	if sd > 0 {
		p.SharpeRatio = (m / sd) * math.Sqrt(252)
	}
}

func computeSortino(p *Performance, equity []engine.EquityRow, riskFreeRate float64) {
	returns := stepReturns(equity)
	if len(returns) < 2 {
		return
	}
	periodRf := riskFreeRate / 252
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - periodRf
	}
	m := mean(excess)
	var downsideSqSum float64
	for _, e := range excess {
		if e < 0 {
			downsideSqSum += e * e
		}
	}
	downsideDev := math.Sqrt(downsideSqSum / float64(len(excess)))
	if downsideDev > 0 {
		p.SortinoRatio = (m / downsideDev) * math.Sqrt(252)
	}
}

func stepReturns(equity []engine.EquityRow) []float64 {
	if len(equity) < 2 {
		return nil
	}
	out := make([]float64, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1].Equity > 0 {
			out[i-1] = (equity[i].Equity - equity[i-1].Equity) / equity[i-1].Equity
		}
	}
	return out
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func stddev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	m := mean(data)
	var sumSq float64
	for _, v := range data {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)-1))
}
