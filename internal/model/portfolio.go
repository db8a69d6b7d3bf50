package model

import "time"

// Position is one open position, keyed externally by Symbol. Only one open
// position per symbol exists at a time, so its two sides never coexist; an
// opposite-side fill reduces/closes it before any flip opens a new one.
type Position struct {
	Symbol              string
	Side                Side
	Qty                 float64
	AvgPrice            float64
	OpenTs              time.Time
	AccumulatedFees     float64
	RealizedPnLOnCloses float64
	Metadata            map[string]any

	// MAE/MFE tracking since entry, updated every mark-to-market step.
	maePrice float64
	mfePrice float64
}

// MAEPrice returns the maximum adverse excursion price observed since entry.
func (p *Position) MAEPrice() float64 { return p.maePrice }

// MFEPrice returns the maximum favorable excursion price observed since entry.
func (p *Position) MFEPrice() float64 { return p.mfePrice }

// ObserveBar updates MAE/MFE tracking from a bar's high/low relative to the
// position's entry price and side.
func (p *Position) ObserveBar(high, low float64) {
	if p.maePrice == 0 && p.mfePrice == 0 {
		p.maePrice, p.mfePrice = p.AvgPrice, p.AvgPrice
	}
	if p.Side == Buy {
		if low < p.maePrice {
			p.maePrice = low
		}
		if high > p.mfePrice {
			p.mfePrice = high
		}
	} else {
		if high > p.maePrice {
			p.maePrice = high
		}
		if low < p.mfePrice {
			p.mfePrice = low
		}
	}
}

// Trade is a closed round-trip (or partial close) record.
type Trade struct {
	EntryTs      time.Time
	ExitTs       time.Time
	Symbol       string
	Side         Side
	Qty          float64
	EntryPrice   float64
	ExitPrice    float64
	PnLPrice     float64
	FeesPaid     float64
	SlippagePaid float64
	PnLNet       float64
	MAEPrice     float64
	MFEPrice     float64

	RiskAmount     *float64
	StopDistance   *float64
	RMultipleGross *float64
	RMultipleNet   *float64
}

// PortfolioState is the point-in-time snapshot identity:
// equity == cash + realized_pnl_cum + unrealized_pnl.
type PortfolioState struct {
	Cash           float64
	Equity         float64
	RealizedPnLCum float64
	UnrealizedPnL  float64
	OpenPositions  int
	MarginUsed     float64
}
