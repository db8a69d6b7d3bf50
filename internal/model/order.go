package model

import "time"

// OrderType is the order's execution style. The engine supports MARKET
// orders only; any other value fails fast in the execution model.
type OrderType string

const MarketOrder OrderType = "MARKET"

// OrderIntent is the risk engine's accepted output: a sized, stop-annotated
// order waiting in the execution queue for its delay to elapse.
type OrderIntent struct {
	TsCreated      time.Time
	Symbol         string
	Side           Side
	OrderType      OrderType
	Qty            float64
	Metadata       map[string]any
	DelayRemaining int
}

// Fill is a single executed quantity at a single price, after the full
// intrabar/spread/slippage/fee pipeline has run.
type Fill struct {
	TsFilled     time.Time
	Symbol       string
	Side         Side
	Qty          float64
	Price        float64
	FeeCost      float64
	SlippageCost float64
	SpreadCost   float64
	Metadata     map[string]any
}

// Decision is one row of the decision log: either an accepted OrderIntent or
// a rejected Signal, always recorded, never lost.
type Decision struct {
	Ts       time.Time
	Symbol   string
	Accepted bool
	Reason   string
	Metadata map[string]any
}
