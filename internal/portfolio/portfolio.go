// Package portfolio tracks open positions, realizes trades on opposite-side
// fills, marks the book to market every step, and enforces forced
// liquidation rules.
package portfolio

import (
	"fmt"

	"github.com/openquant/barsim/internal/model"
)

// Portfolio is the single-account book: cash, one open position per symbol
// (sides never coexist — an opposite fill reduces/closes before any flip),
// and the running trade log.
type Portfolio struct {
	Cash           float64
	RealizedPnLCum float64
	Positions      map[string]*model.Position
	Trades         []model.Trade
}

// New builds a portfolio starting from initialCapital cash, flat.
func New(initialCapital float64) *Portfolio {
	return &Portfolio{Cash: initialCapital, Positions: map[string]*model.Position{}}
}

// ApplyFill updates cash and position state for one fill, realizing P&L
// on any quantity that reduces or closes the existing position and, on a
// flip, opening a new position on the opposite side for the remainder.
func (p *Portfolio) ApplyFill(fill model.Fill) {
	notional := fill.Price * fill.Qty
	if fill.Side == model.Buy {
		p.Cash -= notional
	} else {
		p.Cash += notional
	}
	p.Cash -= fill.FeeCost

	existing := p.Positions[fill.Symbol]
	if existing == nil || existing.Qty == 0 {
		p.openPosition(fill)
		return
	}

	if existing.Side == fill.Side {
		p.addToPosition(existing, fill)
		return
	}

	p.reduceOrFlip(existing, fill)
}

func (p *Portfolio) openPosition(fill model.Fill) {
	p.Positions[fill.Symbol] = &model.Position{
		Symbol:          fill.Symbol,
		Side:            fill.Side,
		Qty:             fill.Qty,
		AvgPrice:        fill.Price,
		OpenTs:          fill.TsFilled,
		AccumulatedFees: fill.FeeCost,
		Metadata:        fill.Metadata,
	}
}

func (p *Portfolio) addToPosition(pos *model.Position, fill model.Fill) {
	totalQty := pos.Qty + fill.Qty
	pos.AvgPrice = (pos.AvgPrice*pos.Qty + fill.Price*fill.Qty) / totalQty
	pos.Qty = totalQty
	pos.AccumulatedFees += fill.FeeCost
}

func (p *Portfolio) reduceOrFlip(pos *model.Position, fill model.Fill) {
	closeQty := fill.Qty
	if closeQty > pos.Qty {
		closeQty = pos.Qty
	}

	pnlPrice := (fill.Price - pos.AvgPrice) * closeQty * pos.Side.SignBuyPositive()
	feesForClose := fill.FeeCost * (closeQty / fill.Qty)
	slippageForClose := fill.SlippageCost * (closeQty / fill.Qty)
	pnlNet := pnlPrice - feesForClose

	trade := model.Trade{
		EntryTs:      pos.OpenTs,
		ExitTs:       fill.TsFilled,
		Symbol:       pos.Symbol,
		Side:         pos.Side,
		Qty:          closeQty,
		EntryPrice:   pos.AvgPrice,
		ExitPrice:    fill.Price,
		PnLPrice:     pnlPrice,
		FeesPaid:     feesForClose,
		SlippagePaid: slippageForClose,
		PnLNet:       pnlNet,
		MAEPrice:     pos.MAEPrice(),
		MFEPrice:     pos.MFEPrice(),
	}
	if ra, ok := pos.Metadata["risk_amount"].(float64); ok && ra > 0 {
		trade.RiskAmount = &ra
		if valid, ok := pos.Metadata["r_metrics_valid"].(bool); ok && valid {
			rGross := pnlPrice / ra
			rNet := pnlNet / ra
			trade.RMultipleGross = &rGross
			trade.RMultipleNet = &rNet
		}
	}
	if sd, ok := pos.Metadata["stop_distance"].(float64); ok {
		trade.StopDistance = &sd
	}
	p.Trades = append(p.Trades, trade)
	p.RealizedPnLCum += pnlNet
	pos.RealizedPnLOnCloses += pnlNet

	pos.Qty -= closeQty
	remainder := fill.Qty - closeQty
	if pos.Qty == 0 {
		delete(p.Positions, pos.Symbol)
	}
	if remainder > 0 {
		p.Positions[fill.Symbol] = &model.Position{
			Symbol:          fill.Symbol,
			Side:            fill.Side,
			Qty:             remainder,
			AvgPrice:        fill.Price,
			OpenTs:          fill.TsFilled,
			AccumulatedFees: fill.FeeCost * (remainder / fill.Qty),
		}
	}
}

// MarkToMarket recomputes equity and unrealized P&L against the latest
// close per symbol, and updates MAE/MFE tracking for every open position
// against the bar's high/low.
func (p *Portfolio) MarkToMarket(closes map[string]float64, highs, lows map[string]float64) model.PortfolioState {
	var unrealized float64
	for symbol, pos := range p.Positions {
		close, ok := closes[symbol]
		if !ok {
			continue
		}
		unrealized += (close - pos.AvgPrice) * pos.Qty * pos.Side.SignBuyPositive()
		if h, ok := highs[symbol]; ok {
			if l, ok := lows[symbol]; ok {
				pos.ObserveBar(h, l)
			}
		}
	}
	equity := p.Cash + p.RealizedPnLCum + unrealized
	return model.PortfolioState{
		Cash:           p.Cash,
		Equity:         equity,
		RealizedPnLCum: p.RealizedPnLCum,
		UnrealizedPnL:  unrealized,
		OpenPositions:  len(p.Positions),
	}
}

// NegativeFreeMargin reports whether free margin has gone negative, the
// trigger for a forced "liquidation:negative_free_margin" flatten.
func (p *Portfolio) NegativeFreeMargin(freeMargin float64) bool {
	return freeMargin < 0
}

// String implements fmt.Stringer for debugging/log output.
func (p *Portfolio) String() string {
	return fmt.Sprintf("portfolio{cash=%.2f realized=%.2f open=%d}", p.Cash, p.RealizedPnLCum, len(p.Positions))
}
