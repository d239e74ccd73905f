package analysis

// Band is the discrete storyboard grade derived from the relevant-prompt
// count. The bands and scores mirror the rubric handed out in class.
type Band string

const (
	BandA Band = "A"
	BandB Band = "B"
	BandC Band = "C"
	BandD Band = "D"
	BandE Band = "E"
)

// Grade maps a relevant-prompt count to its band and score. Total over
// non-negative counts; thresholds are fixed by the rubric:
//
//	>= 5 → A (40)
//	== 4 → B (35)
//	== 3 → C (30)
//	== 2 → D (25)
//	<= 1 → E (20)
func Grade(relevantPrompts int) (Band, int) {
	switch {
	case relevantPrompts >= 5:
		return BandA, 40
	case relevantPrompts == 4:
		return BandB, 35
	case relevantPrompts == 3:
		return BandC, 30
	case relevantPrompts == 2:
		return BandD, 25
	default:
		return BandE, 20
	}
}
