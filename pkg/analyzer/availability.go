package analyzer

import "math"

// Availability returns succeeded/(succeeded+failed) as a percentage rounded
// to one decimal place, halves rounded away from zero.
//
// Callers must not pass two zero counts; 100 is returned in that case so a
// NaN never reaches a report.
func Availability(succeeded, failed int) float64 {
	total := succeeded + failed
	if total <= 0 {
		return 100
	}
	pct := float64(succeeded) / float64(total) * 100
	return math.Round(pct*10) / 10
}
