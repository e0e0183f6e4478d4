package sofa

import "testing"

func TestHemostasis_PlateletBands(t *testing.T) {
	cases := []struct {
		v    float64
		want int
	}{
		{200, 0},
		{150, 0},
		{149, 1},
		{100, 1},
		{99, 2},
		{50, 2},
		{49, 3},
		{20, 3},
		{19, 4},
		{5, 4},
	}
	for _, tc := range cases {
		in := &Inputs{
			Windows: []Window{win("e1", 0, 24)},
			Labs:    []LabEvent{lab("e1", LabPlatelets, tc.v, at(2))},
		}
		sc := scoreOne(t, in)
		if sc.Hemo == nil || *sc.Hemo != tc.want {
			t.Errorf("platelets %.0f: expected %d, got %v", tc.v, tc.want, sc.Hemo)
		}
	}
}

func TestHemostasis_LowestInWindowWins(t *testing.T) {
	in := &Inputs{
		Windows: []Window{win("e1", 0, 24)},
		Labs: []LabEvent{
			lab("e1", LabPlatelets, 160, at(2)),
			lab("e1", LabPlatelets, 45, at(8)),
			lab("e1", LabPlatelets, 110, at(20)),
		},
	}
	sc := scoreOne(t, in)
	checkSub(t, "hemo", sc.Hemo, 3)
	if sc.Detail.Platelets == nil || *sc.Detail.Platelets != 45 {
		t.Errorf("expected platelets 45 on the row, got %v", sc.Detail.Platelets)
	}
}
