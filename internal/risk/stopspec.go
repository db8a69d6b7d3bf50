// Package risk turns accepted strategy signals into sized, guardrail-
// checked order intents: normalizing whatever stop intent a signal carried,
// resolving it to a concrete stop distance, sizing the position off
// risk-per-trade, and running the fixed guardrail pipeline before an intent
// is allowed onto the order queue.
package risk

import "github.com/openquant/barsim/internal/model"

// NormalizeStopSpec turns a signal's free-form metadata into a tagged
// model.StopSpec. Precedence, per the data model: an explicit
// metadata.stop_price always wins regardless of what metadata.stop_spec
// says; absent that, metadata.stop_spec.kind dispatches the variant.
func NormalizeStopSpec(sig model.Signal) (model.StopSpec, bool) {
	if price, ok := sig.StopPriceHint(); ok {
		return model.StopSpec{Kind: model.StopExplicit, StopPrice: price, RawSource: "explicit_stop_price"}, true
	}

	raw, ok := sig.StopSpecHint()
	if !ok {
		return model.StopSpec{}, false
	}
	kind, _ := raw["kind"].(string)
	switch model.StopKind(kind) {
	case model.StopStructural:
		stop, _ := raw["structural_stop"].(float64)
		return model.StopSpec{Kind: model.StopStructural, StructuralStop: stop, RawSource: "structural_stop"}, true
	case model.StopATR:
		mult, _ := raw["atr_multiple"].(float64)
		ind, _ := raw["atr_indicator"].(string)
		val, _ := raw["_atr_value"].(float64)
		return model.StopSpec{Kind: model.StopATR, ATRMultiple: mult, ATRIndicator: ind, ATRValue: val, RawSource: "atr_multiple"}, true
	case model.StopHybrid:
		policy, _ := raw["hybrid_policy"].(string)
		comps, _ := raw["hybrid_components"].([]any)
		var components []model.StopSpec
		for _, c := range comps {
			cm, ok := c.(map[string]any)
			if !ok {
				continue
			}
			sub := model.Signal{Metadata: map[string]any{"stop_spec": cm}}
			if spec, ok := NormalizeStopSpec(sub); ok {
				components = append(components, spec)
			}
		}
		hp := model.HybridPolicy(policy)
		if hp == "" {
			hp = "" // resolved later against the configured global default
		}
		return model.StopSpec{Kind: model.StopHybrid, HybridPolicy: hp, HybridComponents: components, RawSource: "hybrid"}, true
	case model.StopLegacyProxy:
		return model.StopSpec{Kind: model.StopLegacyProxy, RawSource: "legacy_high_low_proxy"}, true
	default:
		return model.StopSpec{}, false
	}
}
