// Package execution turns queued order intents into fills: a delay-bars
// queue, an intrabar raw-price model, and the spread/slippage/fee pipeline
// applied on top of it.
package execution

import (
	"fmt"

	"github.com/openquant/barsim/internal/config"
	"github.com/openquant/barsim/internal/model"
)

// Queue holds order intents waiting for their delay_bars to elapse before
// they become fill-eligible. FIFO per symbol is not guaranteed or required
// by the spec; intents are processed in queue order regardless of symbol.
type Queue struct {
	pending []model.OrderIntent
}

// NewQueue builds an empty order queue.
func NewQueue() *Queue { return &Queue{} }

// Enqueue adds an accepted intent to the queue.
func (q *Queue) Enqueue(intent model.OrderIntent) {
	q.pending = append(q.pending, intent)
}

// Tick decrements every queued intent's remaining delay by one bar and
// returns the intents that are now fill-eligible (DelayRemaining <= 0),
// removing them from the queue. Exit-like or otherwise delay-exempt intents
// should be enqueued with DelayRemaining 0 so they fill on the very next
// eligible bar.
func (q *Queue) Tick() []model.OrderIntent {
	var ready []model.OrderIntent
	var still []model.OrderIntent
	for _, intent := range q.pending {
		if intent.DelayRemaining <= 0 {
			ready = append(ready, intent)
			continue
		}
		intent.DelayRemaining--
		if intent.DelayRemaining <= 0 {
			ready = append(ready, intent)
		} else {
			still = append(still, intent)
		}
	}
	q.pending = still
	return ready
}

// ErrUnsupportedOrderType is returned for any non-MARKET order type, which
// the execution model does not support.
type ErrUnsupportedOrderType struct {
	OrderType model.OrderType
}

func (e *ErrUnsupportedOrderType) Error() string {
	return fmt.Sprintf("execution: unsupported order type %q", e.OrderType)
}

// Fill converts one fill-eligible intent into a Fill against the bar it
// fills on, applying the intrabar price rule, spread, slippage, and fees in
// that order. bar must be the bar the intent fills against (the bar whose
// close ends its delay).
func Fill(intent model.OrderIntent, bar model.Bar, exec config.ExecutionConfig) (model.Fill, error) {
	if intent.OrderType != model.MarketOrder {
		return model.Fill{}, &ErrUnsupportedOrderType{OrderType: intent.OrderType}
	}

	raw := intrabarPrice(bar, intent.Side, exec.IntrabarMode)

	spreadCost := spreadAdjustment(raw, intent.Side, exec)
	afterSpread := raw + spreadCost*intent.Side.SignBuyPositive()

	slippageCost := slippageAdjustment(afterSpread, intent.Side, exec)
	filled := afterSpread + slippageCost*intent.Side.SignBuyPositive()

	fee := feeCost(filled, intent.Qty, exec)

	return model.Fill{
		TsFilled:     bar.Ts,
		Symbol:       intent.Symbol,
		Side:         intent.Side,
		Qty:          intent.Qty,
		Price:        filled,
		FeeCost:      fee,
		SlippageCost: slippageCost * intent.Qty,
		SpreadCost:   spreadCost * intent.Qty,
		Metadata:     intent.Metadata,
	}, nil
}

// intrabarPrice returns the raw (pre-cost) fill price per the configured
// intrabar model and side: worst_case gives the bar's extreme against the
// direction taken (BUY fills at the high, SELL at the low), best_case gives
// the opposite extreme, midpoint ignores side entirely.
func intrabarPrice(bar model.Bar, side model.Side, mode string) float64 {
	switch mode {
	case "best_case":
		if side == model.Buy {
			return bar.Low
		}
		return bar.High
	case "midpoint":
		return (bar.High + bar.Low) / 2
	default: // worst_case
		if side == model.Buy {
			return bar.High
		}
		return bar.Low
	}
}

func spreadAdjustment(price float64, side model.Side, exec config.ExecutionConfig) float64 {
	if exec.SpreadMode == "none" || exec.SpreadBps <= 0 {
		return 0
	}
	return price * (exec.SpreadBps / 10000) / 2
}

func slippageAdjustment(price float64, side model.Side, exec config.ExecutionConfig) float64 {
	if exec.SlippageBps <= 0 {
		return 0
	}
	return price * (exec.SlippageBps / 10000)
}

func feeCost(price, qty float64, exec config.ExecutionConfig) float64 {
	notional := price * qty
	return notional * exec.TakerFee
}
