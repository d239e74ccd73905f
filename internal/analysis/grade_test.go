package analysis

import "testing"

func TestGrade(t *testing.T) {
	cases := []struct {
		relevant  int
		wantBand  Band
		wantScore int
	}{
		{0, BandE, 20},
		{1, BandE, 20},
		{2, BandD, 25},
		{3, BandC, 30},
		{4, BandB, 35},
		{5, BandA, 40},
		{6, BandA, 40},
		{50, BandA, 40},
	}
	for _, tc := range cases {
		band, score := Grade(tc.relevant)
		if band != tc.wantBand || score != tc.wantScore {
			t.Errorf("Grade(%d) = (%s, %d), want (%s, %d)",
				tc.relevant, band, score, tc.wantBand, tc.wantScore)
		}
	}
}
