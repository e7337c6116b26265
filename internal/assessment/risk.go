package assessment

import "math"

// ComposeRisk combines an import position with domestic production
// into the supply risk score, its characterization factor and the
// weighted trade average.
//
// The denominator is total imports plus domestic production; when it
// is not positive the combination carries no information and all three
// outputs are zero. Non-finite intermediates collapse to zero the same
// way so degenerate inputs can never leak NaN into persisted results.
// A non-positive price zeroes the characterization factor only.
func ComposeRisk(numerator, totalTrade, price, prodQty, hhi float64) (score, cf, wta float64) {
	denominator := totalTrade + prodQty
	if denominator <= 0 {
		return 0, 0, 0
	}

	wta = numerator / denominator
	score = hhi * wta
	if !finite(wta) || !finite(score) {
		return 0, 0, 0
	}

	if price > 0 {
		cf = score * price
		if !finite(cf) {
			cf = 0
		}
	}
	return score, cf, wta
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
