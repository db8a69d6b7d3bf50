package risk

import "testing"

func TestCheckGuardrailsOrdering(t *testing.T) {
	// max_positions fails first even though notional and margin would also fail.
	reason, pass := CheckGuardrails(GuardrailInput{
		OpenPositions: 5, MaxPositions: 5,
		NotionalValue: 1_000_000, Equity: 1000, MaxNotionalPctEquity: 1,
		FreeMargin: -1000, RequiredMargin: 1000,
	})
	if pass || reason != ReasonMaxPositions {
		t.Fatalf("got (%v, %v), want (%v, false)", reason, pass, ReasonMaxPositions)
	}
}

func TestCheckGuardrailsNotionalCap(t *testing.T) {
	reason, pass := CheckGuardrails(GuardrailInput{
		OpenPositions: 1, MaxPositions: 5,
		NotionalValue: 600, Equity: 1000, MaxNotionalPctEquity: 0.5,
		FreeMargin: 1000, RequiredMargin: 10,
	})
	if pass || reason != ReasonNotionalCap {
		t.Fatalf("got (%v, %v), want (%v, false)", reason, pass, ReasonNotionalCap)
	}
}

func TestCheckGuardrailsMargin(t *testing.T) {
	reason, pass := CheckGuardrails(GuardrailInput{
		OpenPositions: 1, MaxPositions: 5,
		NotionalValue: 100, Equity: 1000, MaxNotionalPctEquity: 1,
		FreeMargin: 50, RequiredMargin: 40, MaintenanceFreeMarginPct: 0.02,
	})
	// free margin after order = 50-40 = 10; min required = 1000*0.02 = 20 -> fails.
	if pass || reason != ReasonInsufficientMargin {
		t.Fatalf("got (%v, %v), want (%v, false)", reason, pass, ReasonInsufficientMargin)
	}
}

func TestCheckGuardrailsPasses(t *testing.T) {
	reason, pass := CheckGuardrails(GuardrailInput{
		OpenPositions: 1, MaxPositions: 5,
		NotionalValue: 100, Equity: 1000, MaxNotionalPctEquity: 1,
		FreeMargin: 1000, RequiredMargin: 100,
	})
	if !pass || reason != "" {
		t.Fatalf("got (%v, %v), want (\"\", true)", reason, pass)
	}
}
