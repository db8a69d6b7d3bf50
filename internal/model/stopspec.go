package model

// StopKind tags the variant of a normalized stop specification.
type StopKind string

const (
	StopExplicit    StopKind = "explicit"
	StopStructural  StopKind = "structural"
	StopATR         StopKind = "atr"
	StopHybrid      StopKind = "hybrid"
	StopLegacyProxy StopKind = "legacy_proxy"
)

// HybridPolicy picks which of two hybrid components wins.
type HybridPolicy string

const (
	HybridWider   HybridPolicy = "wider"
	HybridTighter HybridPolicy = "tighter"
)

// StopSpec is the normalized, tagged-variant form of whatever stop intent a
// strategy expressed via Signal.Metadata. Downstream code (the risk engine's
// distance resolver) switches on Kind and never touches free-form maps again.
type StopSpec struct {
	Kind StopKind

	// StopExplicit
	StopPrice float64

	// StopStructural
	StructuralStop float64

	// StopATR
	ATRMultiple  float64
	ATRIndicator string
	ATRValue     float64

	// StopHybrid
	HybridPolicy     HybridPolicy
	HybridComponents []StopSpec

	// RawSource is an old provenance label preserved for artifact
	// compatibility (e.g. "explicit_stop_price", "atr_multiple",
	// "legacy_high_low_proxy") even as reason codes evolve independently.
	RawSource string
}

// StopResolutionResult is the outcome of resolving a StopSpec into a concrete
// stop distance for sizing.
type StopResolutionResult struct {
	StopPrice    float64
	StopDistance float64
	StopSource   string
	IsValid      bool
	UsedFallback bool
	ReasonCode   string
	Details      map[string]any
}
