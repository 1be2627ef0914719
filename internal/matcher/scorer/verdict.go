package scorer

// Verdict is the categorical label derived from a match score.
type Verdict string

const (
	VerdictExcellent Verdict = "Excellent Match"
	VerdictGood      Verdict = "Good Match"
	VerdictAverage   Verdict = "Average Match"
	VerdictPoor      Verdict = "Poor Match"
)

// Lower bounds are inclusive: exactly 80.00 is an excellent match.
const (
	excellentThreshold = 80.0
	goodThreshold      = 60.0
	averageThreshold   = 40.0
)

// VerdictFor maps a score in [0, 100] to its verdict.
func VerdictFor(score float64) Verdict {
	switch {
	case score >= excellentThreshold:
		return VerdictExcellent
	case score >= goodThreshold:
		return VerdictGood
	case score >= averageThreshold:
		return VerdictAverage
	default:
		return VerdictPoor
	}
}

// Verdicts lists every verdict from best to worst.
func Verdicts() []Verdict {
	return []Verdict{VerdictExcellent, VerdictGood, VerdictAverage, VerdictPoor}
}
