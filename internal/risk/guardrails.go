package risk

// Guardrail reason codes, applied in the fixed order the spec mandates:
// max_positions, then notional cap, then margin availability. The first
// failing check rejects the intent and later checks never run.
const (
	ReasonMaxPositions        = "risk_rejected:max_positions"
	ReasonNotionalCap         = "risk_rejected:notional_cap"
	ReasonInsufficientMargin  = "risk_rejected:insufficient_margin"
)

// GuardrailInput is everything the pipeline needs to evaluate one candidate
// intent against the account's current state.
type GuardrailInput struct {
	OpenPositions            int
	MaxPositions             int
	NotionalValue            float64
	Equity                   float64
	MaxNotionalPctEquity     float64
	FreeMargin                float64
	RequiredMargin           float64
	MaintenanceFreeMarginPct float64
}

// CheckGuardrails runs the fixed-order pipeline and returns ("", true) if
// every check passes, or the failing reason code and false on first
// failure.
func CheckGuardrails(in GuardrailInput) (string, bool) {
	if in.OpenPositions >= in.MaxPositions {
		return ReasonMaxPositions, false
	}
	if in.MaxNotionalPctEquity > 0 {
		limit := in.Equity * in.MaxNotionalPctEquity
		if in.NotionalValue > limit {
			return ReasonNotionalCap, false
		}
	}
	minFreeMargin := in.Equity * in.MaintenanceFreeMarginPct
	if in.FreeMargin-in.RequiredMargin < minFreeMargin {
		return ReasonInsufficientMargin, false
	}
	return "", true
}
