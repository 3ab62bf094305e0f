package billing

import "math"

// MinorToMajor converts a provider minor-unit amount (cents) to the
// major-unit decimal value rounded to two places: 2900 -> 29.00.
func MinorToMajor(minor int64) float64 {
	return math.Round(float64(minor)) / 100
}
