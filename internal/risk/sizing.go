package risk

import "math"

// SizePosition converts a resolved stop distance into a contract-lot
// rounded quantity: risk_amount = r_per_trade * equity, qty = risk_amount /
// stop_distance, rounded down to the nearest contract_lot. Returns 0 if the
// rounded quantity would be less than one lot.
func SizePosition(equity, rPerTrade, stopDistance, contractLot float64) (qty, riskAmount float64) {
	riskAmount = rPerTrade * equity
	if stopDistance <= 0 || contractLot <= 0 {
		return 0, riskAmount
	}
	raw := riskAmount / stopDistance
	lots := math.Floor(raw / contractLot)
	qty = lots * contractLot
	return qty, riskAmount
}
