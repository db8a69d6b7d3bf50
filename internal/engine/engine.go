// Package engine runs the single-threaded, bar-by-bar simulation loop that
// ties the feed, strategies, risk engine, execution model, and portfolio
// together into one deterministic walk forward over the data.
package engine

import (
	"fmt"
	"time"

	"github.com/openquant/barsim/internal/config"
	"github.com/openquant/barsim/internal/execution"
	"github.com/openquant/barsim/internal/feed"
	"github.com/openquant/barsim/internal/model"
	"github.com/openquant/barsim/internal/portfolio"
	"github.com/openquant/barsim/internal/risk"
	"github.com/openquant/barsim/internal/strategy"
)

// EquityRow is one row of the equity curve artifact.
type EquityRow struct {
	Ts     time.Time
	Equity float64
	Cash   float64
}

// Result is everything a run produces for the artifact writers.
type Result struct {
	Equity    []EquityRow
	Trades    []model.Trade
	Fills     []model.Fill
	Decisions []model.Decision

	StopResolutionCounts map[string]int
	UsedLegacyStopProxy  bool
	RMetricsValid        bool
}

// Engine coordinates one full run over a feed.
type Engine struct {
	cfg        *config.ResolvedConfig
	feedSrc    *feed.Feed
	strategies []strategy.Strategy
	riskEngine *risk.Engine
	queue      *execution.Queue
	book       *portfolio.Portfolio
	history    *strategy.History
	resamplers map[string]*feed.Resampler
	latestHTF  map[string]map[string]model.HTFBar
	lastClose  map[string]float64
	lastBar    map[string]model.Bar
	lastTs     time.Time

	result Result
}

// New builds an Engine ready to Run over f.
func New(cfg *config.ResolvedConfig, f *feed.Feed, strategies []strategy.Strategy, baseInterval time.Duration) *Engine {
	resamplers := map[string]*feed.Resampler{}
	for _, tf := range cfg.HTFResampler.Timeframes {
		d, err := time.ParseDuration(tf)
		if err != nil {
			continue
		}
		resamplers[tf] = feed.NewResampler(d, baseInterval, cfg.HTFResampler.Strict)
	}

	return &Engine{
		cfg:        cfg,
		feedSrc:    f,
		strategies: strategies,
		riskEngine: risk.NewEngine(cfg.Risk, cfg.Execution),
		queue:      execution.NewQueue(),
		book:       portfolio.New(cfg.InitialCapital),
		history:    strategy.NewHistory(),
		resamplers: resamplers,
		latestHTF:  map[string]map[string]model.HTFBar{},
		lastClose:  map[string]float64{},
		lastBar:    map[string]model.Bar{},
		result:     Result{StopResolutionCounts: map[string]int{}},
	}
}

// Run walks the feed to exhaustion, applying the fixed per-bar order:
// settle the delay queue against this bar's prices, append history and
// resample to HTF, mark-to-market, invoke strategies, resolve conflicts,
// route exits and run risk, enqueue accepted intents, record the equity
// row, and liquidate on negative free margin. Forced end-of-run
// liquidation runs once the feed is exhausted.
func (e *Engine) Run() (Result, error) {
	for {
		tick, ok, err := e.feedSrc.Next()
		if err != nil {
			return e.result, fmt.Errorf("feed: %w", err)
		}
		if !ok {
			break
		}
		if err := e.step(tick); err != nil {
			return e.result, err
		}
	}
	e.liquidateAll("liquidation:end_of_run")
	e.result.Trades = e.book.Trades
	e.result.RMetricsValid = !e.result.UsedLegacyStopProxy
	return e.result, nil
}

func (e *Engine) step(tick feed.Tick) error {
	ready := e.queue.Tick()
	for _, intent := range ready {
		bar, ok := tick.Bars[intent.Symbol]
		if !ok {
			continue
		}
		fill, err := execution.Fill(intent, bar, e.cfg.Execution)
		if err != nil {
			return fmt.Errorf("execution: %w", err)
		}
		e.book.ApplyFill(fill)
		e.result.Fills = append(e.result.Fills, fill)
	}

	for symbol, bar := range tick.Bars {
		e.history.Append(bar)
		for tf, r := range e.resamplers {
			htfBar, ok := r.Observe(bar)
			if !ok {
				continue
			}
			if e.latestHTF[symbol] == nil {
				e.latestHTF[symbol] = map[string]model.HTFBar{}
			}
			e.latestHTF[symbol][tf] = htfBar
		}
	}

	universe := make([]string, 0, len(tick.Bars))
	for symbol := range tick.Bars {
		universe = append(universe, symbol)
	}

	positions := map[string]model.Position{}
	for symbol, pos := range e.book.Positions {
		positions[symbol] = *pos
	}

	closes := map[string]float64{}
	highs := map[string]float64{}
	lows := map[string]float64{}
	for symbol, bar := range tick.Bars {
		closes[symbol] = bar.Close
		highs[symbol] = bar.High
		lows[symbol] = bar.Low
		e.lastClose[symbol] = bar.Close
		e.lastBar[symbol] = bar
	}
	e.lastTs = tick.Ts
	portfolioState := e.book.MarkToMarket(closes, highs, lows)

	view := strategy.NewView(tick.Ts, universe, tick.Bars, e.history, e.latestHTF, portfolioState, positions)

	var rawSignals []model.Signal
	for _, strat := range e.strategies {
		rawSignals = append(rawSignals, strat.OnBars(view)...)
	}
	signals := strategy.ResolveConflicts(rawSignals, e.cfg.Strategy.SignalConflictPolicy)

	for _, sig := range signals {
		if sig.IsExit() {
			e.enqueueExit(sig, tick)
			continue
		}
		bar := tick.Bars[sig.Symbol]
		intent, decision := e.riskEngine.Evaluate(risk.EvalInput{
			Signal:        sig,
			EntryPrice:    bar.Close,
			BarHigh:       bar.High,
			BarLow:        bar.Low,
			Equity:        portfolioState.Equity,
			FreeMargin:    portfolioState.Equity - portfolioState.MarginUsed,
			OpenPositions: portfolioState.OpenPositions,
			MarginPerUnit: bar.Close,
		})
		e.result.Decisions = append(e.result.Decisions, decision)
		if intent == nil {
			continue
		}
		e.recordStopMetadata(intent)
		e.queue.Enqueue(*intent)
	}

	e.result.Equity = append(e.result.Equity, EquityRow{Ts: tick.Ts, Equity: portfolioState.Equity, Cash: portfolioState.Cash})

	if e.book.NegativeFreeMargin(portfolioState.Equity - portfolioState.MarginUsed) {
		e.liquidateAll("liquidation:negative_free_margin")
	}

	return nil
}

func (e *Engine) enqueueExit(sig model.Signal, tick feed.Tick) {
	pos, ok := e.book.Positions[sig.Symbol]
	if !ok {
		return
	}
	intent := model.OrderIntent{
		TsCreated: sig.Ts,
		Symbol:    sig.Symbol,
		Side:      pos.Side.Opposite(),
		OrderType: model.MarketOrder,
		Qty:       pos.Qty,
		Metadata:  map[string]any{"exit": true},
	}
	e.queue.Enqueue(intent)
}

func (e *Engine) recordStopMetadata(intent *model.OrderIntent) {
	if source, ok := intent.Metadata["stop_source"].(string); ok {
		e.result.StopResolutionCounts[source]++
	}
	if used, ok := intent.Metadata["used_legacy_proxy"].(bool); ok && used {
		e.result.UsedLegacyStopProxy = true
	}
}

// liquidateAll forces every open position flat through the same fill
// pipeline a normal exit would use. Per spec §4.6/§7, a symbol missing from
// the current bar set falls back to a flat bar built off its last known
// close rather than failing the liquidation.
func (e *Engine) liquidateAll(reason string) {
	ts := e.lastTs
	for symbol, pos := range e.book.Positions {
		bar, ok := e.lastBar[symbol]
		if !ok || !bar.Ts.Equal(ts) {
			price := pos.AvgPrice
			if c, ok := e.lastClose[symbol]; ok {
				price = c
			}
			bar = model.Bar{Ts: ts, Symbol: symbol, Open: price, High: price, Low: price, Close: price}
		}
		if !ts.IsZero() {
			bar.Ts = ts
		}

		closingIntent := model.OrderIntent{
			TsCreated: bar.Ts,
			Symbol:    symbol,
			Side:      pos.Side.Opposite(),
			OrderType: model.MarketOrder,
			Qty:       pos.Qty,
			Metadata:  map[string]any{"reason": reason},
		}
		fill, err := execution.Fill(closingIntent, bar, e.cfg.Execution)
		if err != nil {
			continue
		}
		e.book.ApplyFill(fill)
		e.result.Fills = append(e.result.Fills, fill)
	}
}
