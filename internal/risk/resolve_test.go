package risk

import (
	"testing"

	"github.com/openquant/barsim/internal/model"
)

func TestResolveStopDistanceExplicit(t *testing.T) {
	spec := model.StopSpec{Kind: model.StopExplicit, StopPrice: 95}
	res := ResolveStopDistance(spec, model.Buy, 100, 101, 99, "safe", false, model.HybridWider)
	if !res.IsValid {
		t.Fatalf("expected valid resolution, got %+v", res)
	}
	if res.StopDistance != 5 {
		t.Fatalf("StopDistance = %v, want 5", res.StopDistance)
	}
}

func TestResolveStopDistanceExplicitInvalidSide(t *testing.T) {
	// A BUY stop above entry has a non-positive distance and must be rejected.
	spec := model.StopSpec{Kind: model.StopExplicit, StopPrice: 105}
	res := ResolveStopDistance(spec, model.Buy, 100, 110, 95, "safe", false, model.HybridWider)
	if res.IsValid {
		t.Fatalf("expected invalid resolution for a stop above entry on a BUY, got %+v", res)
	}
}

func TestResolveStopDistanceATRNotReady(t *testing.T) {
	spec := model.StopSpec{Kind: model.StopATR, ATRMultiple: 2, ATRValue: 0}
	res := ResolveStopDistance(spec, model.Buy, 100, 101, 99, "safe", false, model.HybridWider)
	if res.IsValid {
		t.Fatalf("expected invalid resolution when ATR is not yet available")
	}
	if res.ReasonCode != ReasonIndicatorNotReady {
		t.Fatalf("ReasonCode = %v, want %v", res.ReasonCode, ReasonIndicatorNotReady)
	}
}

func TestResolveStopDistanceLegacyProxyStrictRejected(t *testing.T) {
	spec := model.StopSpec{Kind: model.StopLegacyProxy}
	res := ResolveStopDistance(spec, model.Buy, 100, 102, 97, "strict", true, model.HybridWider)
	if res.IsValid {
		t.Fatalf("strict mode must reject the legacy proxy regardless of allow_legacy_proxy")
	}
	if res.ReasonCode != ReasonStopUnresolvableStrict {
		t.Fatalf("ReasonCode = %v, want %v", res.ReasonCode, ReasonStopUnresolvableStrict)
	}
}

func TestResolveStopDistanceLegacyProxySafeFallback(t *testing.T) {
	spec := model.StopSpec{Kind: model.StopLegacyProxy}
	res := ResolveStopDistance(spec, model.Buy, 100, 102, 97, "safe", true, model.HybridWider)
	if !res.IsValid || !res.UsedFallback {
		t.Fatalf("expected a valid fallback resolution, got %+v", res)
	}
	if res.StopPrice != 97 || res.StopDistance != 3 {
		t.Fatalf("got stop_price=%v distance=%v, want 97/3 (BUY proxy uses bar low)", res.StopPrice, res.StopDistance)
	}
}

func TestResolveStopDistanceLegacyProxySafeDisallowed(t *testing.T) {
	spec := model.StopSpec{Kind: model.StopLegacyProxy}
	res := ResolveStopDistance(spec, model.Buy, 100, 102, 97, "safe", false, model.HybridWider)
	if res.IsValid {
		t.Fatalf("expected rejection when allow_legacy_proxy is false")
	}
	if res.ReasonCode != ReasonStopUnresolvableSafe {
		t.Fatalf("ReasonCode = %v, want %v", res.ReasonCode, ReasonStopUnresolvableSafe)
	}
}

func TestResolveStopDistanceHybridPolicyPrecedence(t *testing.T) {
	// Signal-local hybrid_policy ("tighter") must win over the configured
	// global default ("wider").
	spec := model.StopSpec{
		Kind:         model.StopHybrid,
		HybridPolicy: model.HybridTighter,
		HybridComponents: []model.StopSpec{
			{Kind: model.StopExplicit, StopPrice: 90}, // distance 10
			{Kind: model.StopExplicit, StopPrice: 95}, // distance 5
		},
	}
	res := ResolveStopDistance(spec, model.Buy, 100, 101, 99, "safe", false, model.HybridWider)
	if !res.IsValid {
		t.Fatalf("expected valid resolution, got %+v", res)
	}
	if res.StopDistance != 5 {
		t.Fatalf("StopDistance = %v, want 5 (tighter of the two components)", res.StopDistance)
	}
}

func TestResolveStopDistanceHybridGlobalDefaultApplies(t *testing.T) {
	spec := model.StopSpec{
		Kind: model.StopHybrid,
		HybridComponents: []model.StopSpec{
			{Kind: model.StopExplicit, StopPrice: 90}, // distance 10
			{Kind: model.StopExplicit, StopPrice: 95}, // distance 5
		},
	}
	res := ResolveStopDistance(spec, model.Buy, 100, 101, 99, "safe", false, model.HybridWider)
	if !res.IsValid {
		t.Fatalf("expected valid resolution, got %+v", res)
	}
	if res.StopDistance != 10 {
		t.Fatalf("StopDistance = %v, want 10 (global default is wider)", res.StopDistance)
	}
}
