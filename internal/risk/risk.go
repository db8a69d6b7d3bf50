package risk

import (
	"time"

	"github.com/openquant/barsim/internal/config"
	"github.com/openquant/barsim/internal/model"
)

// Engine evaluates accepted signals against the configured risk model and
// turns them into sized OrderIntents, or a rejection Decision.
type Engine struct {
	Risk      config.RiskConfig
	Execution config.ExecutionConfig
}

// NewEngine builds a risk Engine from the resolved config blocks it needs.
func NewEngine(risk config.RiskConfig, exec config.ExecutionConfig) *Engine {
	return &Engine{Risk: risk, Execution: exec}
}

// EvalInput bundles the per-signal state the engine needs beyond its own
// static configuration.
type EvalInput struct {
	Signal         model.Signal
	EntryPrice     float64
	BarHigh        float64
	BarLow         float64
	Equity         float64
	FreeMargin     float64
	OpenPositions  int
	MarginPerUnit  float64 // required margin per unit of quantity, e.g. price for cash-settled spot
}

// Evaluate resolves sizing and guardrails for one non-exit signal, returning
// either a ready-to-queue OrderIntent or a rejection Decision. Exit signals
// should never reach here — callers must route them straight to execution,
// bypassing stop resolution and sizing entirely.
func (e *Engine) Evaluate(in EvalInput) (*model.OrderIntent, model.Decision) {
	ts := in.Signal.Ts
	symbol := in.Signal.Symbol

	spec, ok := NormalizeStopSpec(in.Signal)
	if !ok {
		return nil, reject(ts, symbol, ReasonStopUnresolvableStrict, nil)
	}

	resolution := ResolveStopDistance(
		spec, in.Signal.Side, in.EntryPrice, in.BarHigh, in.BarLow,
		e.Risk.StopResolutionMode, e.Risk.AllowLegacyProxy, model.HybridPolicy(e.Risk.HybridPolicy),
	)
	if !resolution.IsValid {
		return nil, reject(ts, symbol, resolution.ReasonCode, nil)
	}

	minDistance := e.Risk.MinStopDistance
	if e.Risk.MinStopDistancePct > 0 {
		pctFloor := in.EntryPrice * e.Risk.MinStopDistancePct
		if pctFloor > minDistance {
			minDistance = pctFloor
		}
	}
	if minDistance > 0 && resolution.StopDistance < minDistance {
		return nil, reject(ts, symbol, ReasonMinStopDistance, map[string]any{"stop_distance": resolution.StopDistance, "min_required": minDistance})
	}

	qty, riskAmount := SizePosition(in.Equity, e.Risk.RPerTrade, resolution.StopDistance, e.Risk.ContractLot)
	if qty <= 0 {
		return nil, reject(ts, symbol, ReasonSizingError, map[string]any{"reason": "sized_quantity_zero"})
	}

	notional := qty * in.EntryPrice
	requiredMargin := qty * in.MarginPerUnit

	reason, pass := CheckGuardrails(GuardrailInput{
		OpenPositions:            in.OpenPositions,
		MaxPositions:             e.Risk.MaxPositions,
		NotionalValue:            notional,
		Equity:                   in.Equity,
		MaxNotionalPctEquity:     e.Risk.MaxNotionalPctEquity,
		FreeMargin:               in.FreeMargin,
		RequiredMargin:           requiredMargin,
		MaintenanceFreeMarginPct: e.Risk.MaintenanceFreeMarginPct,
	})
	if !pass {
		return nil, reject(ts, symbol, reason, nil)
	}

	rMetricsValid := !resolution.UsedFallback
	intent := &model.OrderIntent{
		TsCreated: ts,
		Symbol:    symbol,
		Side:      in.Signal.Side,
		OrderType: model.MarketOrder,
		Qty:       qty,
		Metadata: map[string]any{
			"stop_price":           resolution.StopPrice,
			"stop_distance":        resolution.StopDistance,
			"stop_source":          resolution.StopSource,
			"used_legacy_proxy":    resolution.UsedFallback,
			"risk_amount":          riskAmount,
			"stop_details":         stopDetails(spec, resolution),
			"r_metrics_valid":      rMetricsValid,
			"stop_resolution_mode": e.Risk.StopResolutionMode,
			"reason_code":          resolvedReasonCode(spec.Kind),
		},
		DelayRemaining: e.Execution.DelayBars,
	}
	return intent, acceptDecision(ts, symbol)
}

// stopDetails summarizes the normalized spec and its resolution for
// diagnostics — the full provenance behind the flattened stop_price/
// stop_distance/stop_source fields.
func stopDetails(spec model.StopSpec, resolution model.StopResolutionResult) map[string]any {
	return map[string]any{
		"kind":          string(spec.Kind),
		"raw_source":    spec.RawSource,
		"stop_source":   resolution.StopSource,
		"used_fallback": resolution.UsedFallback,
	}
}

// resolvedReasonCode names the successful-resolution reason code from the
// stop kind actually used to size the position.
func resolvedReasonCode(kind model.StopKind) string {
	return "resolved_" + string(kind)
}

func reject(ts time.Time, symbol, reason string, details map[string]any) model.Decision {
	return model.Decision{Ts: ts, Symbol: symbol, Accepted: false, Reason: reason, Metadata: details}
}

func acceptDecision(ts time.Time, symbol string) model.Decision {
	return model.Decision{Ts: ts, Symbol: symbol, Accepted: true, Reason: "accepted"}
}
