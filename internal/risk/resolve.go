package risk

import (
	"fmt"

	"github.com/openquant/barsim/internal/model"
)

// Reason codes for stop resolution outcomes, stable across runs per the
// artifact contract.
const (
	ReasonStopUnresolvableStrict = "risk_rejected:stop_unresolvable:strict"
	ReasonStopUnresolvableSafe   = "risk_rejected:stop_unresolvable:safe_no_proxy"
	ReasonFallbackLegacyProxy    = "fallback_legacy_proxy"
	ReasonIndicatorNotReady      = "rejected_indicator_not_ready"
	ReasonMinStopDistance        = "risk_rejected:min_stop_distance"
	ReasonSizingError            = "risk_rejected:sizing_error"
)

// ResolveStopDistance turns a normalized StopSpec plus the entry price
// (and, for the legacy proxy, the current bar's high/low) into a concrete
// stop distance. mode is "strict" or "safe"; allowLegacyProxy only matters
// when mode is "safe" and no usable stop was found any other way.
func ResolveStopDistance(
	spec model.StopSpec,
	side model.Side,
	entryPrice float64,
	barHigh, barLow float64,
	mode string,
	allowLegacyProxy bool,
	hybridDefaultPolicy model.HybridPolicy,
) model.StopResolutionResult {
	switch spec.Kind {
	case model.StopExplicit:
		return fromStopPrice(spec.StopPrice, side, entryPrice, "explicit_stop_price")

	case model.StopStructural:
		return fromStopPrice(spec.StructuralStop, side, entryPrice, "structural_stop")

	case model.StopATR:
		if spec.ATRValue <= 0 {
			return model.StopResolutionResult{IsValid: false, ReasonCode: ReasonIndicatorNotReady}
		}
		distance := spec.ATRMultiple * spec.ATRValue
		if distance <= 0 {
			return model.StopResolutionResult{IsValid: false, ReasonCode: ReasonIndicatorNotReady}
		}
		stopPrice := entryPrice - side.SignBuyPositive()*distance
		return model.StopResolutionResult{
			StopPrice: stopPrice, StopDistance: distance, StopSource: "atr_multiple", IsValid: true,
		}

	case model.StopHybrid:
		return resolveHybrid(spec, side, entryPrice, barHigh, barLow, mode, allowLegacyProxy, hybridDefaultPolicy)

	case model.StopLegacyProxy:
		return resolveLegacyProxy(side, entryPrice, barHigh, barLow, mode, allowLegacyProxy)

	default:
		if mode == "strict" {
			return model.StopResolutionResult{IsValid: false, ReasonCode: ReasonStopUnresolvableStrict}
		}
		if allowLegacyProxy {
			return resolveLegacyProxy(side, entryPrice, barHigh, barLow, mode, allowLegacyProxy)
		}
		return model.StopResolutionResult{IsValid: false, ReasonCode: ReasonStopUnresolvableSafe}
	}
}

func fromStopPrice(stopPrice float64, side model.Side, entryPrice, source string) model.StopResolutionResult {
	if stopPrice <= 0 {
		return model.StopResolutionResult{IsValid: false, ReasonCode: ReasonIndicatorNotReady}
	}
	distance := (entryPrice - stopPrice) * side.SignBuyPositive()
	if distance <= 0 {
		return model.StopResolutionResult{IsValid: false, ReasonCode: ReasonIndicatorNotReady}
	}
	return model.StopResolutionResult{StopPrice: stopPrice, StopDistance: distance, StopSource: source, IsValid: true}
}

func resolveLegacyProxy(side model.Side, entryPrice, barHigh, barLow float64, mode string, allowLegacyProxy bool) model.StopResolutionResult {
	if mode == "strict" {
		return model.StopResolutionResult{IsValid: false, ReasonCode: ReasonStopUnresolvableStrict}
	}
	if !allowLegacyProxy {
		return model.StopResolutionResult{IsValid: false, ReasonCode: ReasonStopUnresolvableSafe}
	}
	var stopPrice float64
	if side == model.Buy {
		stopPrice = barLow
	} else {
		stopPrice = barHigh
	}
	distance := (entryPrice - stopPrice) * side.SignBuyPositive()
	if distance <= 0 {
		return model.StopResolutionResult{IsValid: false, ReasonCode: ReasonIndicatorNotReady}
	}
	return model.StopResolutionResult{
		StopPrice: stopPrice, StopDistance: distance, StopSource: "legacy_high_low_proxy",
		IsValid: true, UsedFallback: true, ReasonCode: ReasonFallbackLegacyProxy,
	}
}

// resolveHybrid resolves each component independently and picks the
// winner per hybrid_policy: "wider" keeps the larger stop distance (more
// conservative sizing), "tighter" keeps the smaller. The hybrid spec's own
// explicit policy, when set, overrides the run's global default — this
// resolves the spec's hybrid-precedence open question: signal-level intent
// beats the global default, and the global default only applies when the
// signal itself is silent on policy.
func resolveHybrid(
	spec model.StopSpec,
	side model.Side,
	entryPrice, barHigh, barLow float64,
	mode string,
	allowLegacyProxy bool,
	hybridDefaultPolicy model.HybridPolicy,
) model.StopResolutionResult {
	policy := spec.HybridPolicy
	if policy == "" {
		policy = hybridDefaultPolicy
	}

	var best model.StopResolutionResult
	haveBest := false
	for _, comp := range spec.HybridComponents {
		res := ResolveStopDistance(comp, side, entryPrice, barHigh, barLow, mode, allowLegacyProxy, hybridDefaultPolicy)
		if !res.IsValid {
			continue
		}
		if !haveBest {
			best = res
			haveBest = true
			continue
		}
		if policy == model.HybridTighter {
			if res.StopDistance < best.StopDistance {
				best = res
			}
		} else {
			if res.StopDistance > best.StopDistance {
				best = res
			}
		}
	}
	if !haveBest {
		if mode == "strict" {
			return model.StopResolutionResult{IsValid: false, ReasonCode: ReasonStopUnresolvableStrict}
		}
		return model.StopResolutionResult{IsValid: false, ReasonCode: ReasonStopUnresolvableSafe}
	}
	best.StopSource = fmt.Sprintf("hybrid:%s:%s", policy, best.StopSource)
	return best
}
