package league

import "github.com/shopspring/decimal"

const (
	// MaxGameScore is the highest possible single-game score.
	MaxGameScore = 300
	// MaxMatchTotal is the highest possible three-game total.
	MaxMatchTotal = 900
)

// ValidScore reports whether n is a legal single-game score. Out-of-range
// values are rejected by handlers, never clamped.
func ValidScore(n int) bool {
	return n >= 0 && n <= MaxGameScore
}

// ValidMatchTotal reports whether n is a legal three-game total.
func ValidMatchTotal(n int) bool {
	return n >= 0 && n <= MaxMatchTotal
}

// Round1 divides num by den and rounds half-up to one decimal place.
// Averages go through decimals so the .05 boundary rounds the same way
// on every endpoint.
func Round1(num, den int) float64 {
	if den == 0 {
		return 0
	}
	d := decimal.NewFromInt(int64(num)).
		Div(decimal.NewFromInt(int64(den))).
		Round(1)
	f, _ := d.Float64()
	return f
}
