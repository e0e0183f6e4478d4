package sofa

import "testing"

func TestLiver_BilirubinBands(t *testing.T) {
	cases := []struct {
		v    float64
		want int
	}{
		{1.0, 0},
		{1.2, 1},
		{1.9, 1},
		{2.0, 2},
		{5.9, 2},
		{6.0, 3},
		{11.9, 3},
		{12.0, 4},
		{13.0, 4},
	}
	for _, tc := range cases {
		in := &Inputs{
			Windows: []Window{win("e1", 0, 24)},
			Labs:    []LabEvent{lab("e1", LabBilirubin, tc.v, at(2))},
		}
		sc := scoreOne(t, in)
		if sc.Liver == nil || *sc.Liver != tc.want {
			t.Errorf("bilirubin %.1f: expected %d, got %v", tc.v, tc.want, sc.Liver)
		}
	}
}

func TestLiver_HighestInWindowWins(t *testing.T) {
	in := &Inputs{
		Windows: []Window{win("e1", 0, 24)},
		Labs: []LabEvent{
			lab("e1", LabBilirubin, 1.0, at(2)),
			lab("e1", LabBilirubin, 6.5, at(8)),
			lab("e1", LabBilirubin, 3.0, at(20)),
		},
	}
	sc := scoreOne(t, in)
	checkSub(t, "liver", sc.Liver, 3)
	if sc.Detail.Bilirubin == nil || *sc.Detail.Bilirubin != 6.5 {
		t.Errorf("expected bilirubin 6.5 on the row, got %v", sc.Detail.Bilirubin)
	}
}

func TestLiver_FallsBackWithinLookback(t *testing.T) {
	in := &Inputs{
		Windows: []Window{win("e1", 0, 24)},
		Labs:    []LabEvent{lab("e1", LabBilirubin, 2.5, at(-30))},
	}
	sc := scoreOne(t, in)
	checkSub(t, "liver", sc.Liver, 2)
}
