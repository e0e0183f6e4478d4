package sofa

import "testing"

func TestBrain_Bands(t *testing.T) {
	cases := []struct {
		gcs  float64
		want int
	}{
		{15, 0},
		{14, 1},
		{13, 1},
		{12, 2},
		{10, 2},
		{9, 3},
		{6, 3},
		{5, 4},
		{3, 4},
	}
	for _, tc := range cases {
		in := &Inputs{
			Windows:     []Window{win("e1", 0, 24)},
			Assessments: []AssessmentEvent{assessment("e1", tc.gcs, at(2))},
		}
		sc := scoreOne(t, in)
		if sc.Brain == nil || *sc.Brain != tc.want {
			t.Errorf("gcs %.0f: expected %d, got %v", tc.gcs, tc.want, sc.Brain)
		}
	}
}

func TestBrain_WorstInWindowWins(t *testing.T) {
	in := &Inputs{
		Windows: []Window{win("e1", 0, 24)},
		Assessments: []AssessmentEvent{
			assessment("e1", 15, at(1)),
			assessment("e1", 8, at(6)),
			assessment("e1", 14, at(12)),
		},
	}
	sc := scoreOne(t, in)
	checkSub(t, "brain", sc.Brain, 3)
	if sc.Detail.WorstGCS == nil || *sc.Detail.WorstGCS != 8 {
		t.Errorf("expected worst gcs 8, got %v", sc.Detail.WorstGCS)
	}
}

func TestBrain_NoPreWindowFallback(t *testing.T) {
	in := &Inputs{
		Windows:     []Window{win("e1", 0, 24)},
		Assessments: []AssessmentEvent{assessment("e1", 6, at(-1))},
	}
	sc := scoreOne(t, in)
	if sc.Brain != nil {
		t.Errorf("expected absent brain subscore, got %d", *sc.Brain)
	}
}

func TestBrain_SedatedNormalScoresOne(t *testing.T) {
	in := &Inputs{
		Windows:     []Window{win("e1", 0, 24)},
		Assessments: []AssessmentEvent{assessment("e1", 15, at(4))},
		Medications: []MedicationEvent{med("e1", "propofol", 30, "mcg/kg/min", "start", at(2))},
	}
	sc := scoreOne(t, in)
	checkSub(t, "brain", sc.Brain, 1)
	if !sc.Detail.Sedated {
		t.Error("expected sedated flag")
	}
}

func TestBrain_SedationDoesNotInflateLowerBands(t *testing.T) {
	in := &Inputs{
		Windows:     []Window{win("e1", 0, 24)},
		Assessments: []AssessmentEvent{assessment("e1", 13, at(4))},
		Medications: []MedicationEvent{med("e1", "midazolam", 2, "mg/hr", "start", at(2))},
	}
	sc := scoreOne(t, in)
	checkSub(t, "brain", sc.Brain, 1)
}

func TestBrain_ZeroDoseSedativeIsNotSedation(t *testing.T) {
	in := &Inputs{
		Windows:     []Window{win("e1", 0, 24)},
		Assessments: []AssessmentEvent{assessment("e1", 15, at(4))},
		Medications: []MedicationEvent{med("e1", "propofol", 0, "mcg/kg/min", "stop", at(2))},
	}
	sc := scoreOne(t, in)
	checkSub(t, "brain", sc.Brain, 0)
	if sc.Detail.Sedated {
		t.Error("stop record with zero dose should not mark the window sedated")
	}
}
