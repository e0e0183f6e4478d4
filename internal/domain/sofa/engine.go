package sofa

import (
	"sync"
	"time"

	"github.com/icuscore/sofa2/internal/platform/temporal"
	"github.com/icuscore/sofa2/internal/platform/units"
)

// streams holds the per-invocation indexes over the input relations. Built
// once, then shared read-only by the six calculators.
type streams struct {
	labs        *temporal.Index[LabEvent]
	vitals      *temporal.Index[VitalEvent]
	meds        *temporal.Index[MedicationEvent]
	devices     *temporal.Index[DeviceEvent]
	assessments *temporal.Index[AssessmentEvent]
	rrt         *temporal.Index[TherapyFlagEvent]
	ecls        *temporal.Index[TherapyFlagEvent]
}

func newStreams(in *Inputs) *streams {
	labKey := func(e LabEvent) string { return e.EncounterID + "|" + e.Category }
	vitalKey := func(e VitalEvent) string { return e.EncounterID + "|" + e.Category }
	medKey := func(e MedicationEvent) string { return e.EncounterID + "|" + e.Category }
	assessKey := func(e AssessmentEvent) string { return e.EncounterID + "|" + e.Category }
	return &streams{
		labs:        temporal.NewIndex(in.Labs, labKey, func(e LabEvent) time.Time { return e.CollectedAt }),
		vitals:      temporal.NewIndex(in.Vitals, vitalKey, func(e VitalEvent) time.Time { return e.RecordedAt }),
		meds:        temporal.NewIndex(in.Medications, medKey, func(e MedicationEvent) time.Time { return e.AdministeredAt }),
		devices:     temporal.NewIndex(in.Devices, func(e DeviceEvent) string { return e.EncounterID }, func(e DeviceEvent) time.Time { return e.RecordedAt }),
		assessments: temporal.NewIndex(in.Assessments, assessKey, func(e AssessmentEvent) time.Time { return e.RecordedAt }),
		rrt:         temporal.NewIndex(in.RenalReplacement, func(e TherapyFlagEvent) string { return e.EncounterID }, func(e TherapyFlagEvent) time.Time { return e.RecordedAt }),
		ecls:        temporal.NewIndex(in.ExtracorporealSupport, func(e TherapyFlagEvent) string { return e.EncounterID }, func(e TherapyFlagEvent) time.Time { return e.RecordedAt }),
	}
}

// weightAt resolves the patient weight (kg) as of a timestamp from the
// weight vital stream, with unrestricted lookback.
func (s *streams) weightAt(encounterID string, at time.Time) (float64, bool) {
	e, ok := s.vitals.NearestPreceding(encounterID+"|"+VitalWeight, at, -1)
	if !ok {
		return 0, false
	}
	return e.Value, true
}

// worstLab returns the in-window extreme of a lab category (max when
// takeMax, else min); when the window holds no value it falls back to the
// nearest preceding value within lookback. Nil means absent.
func (s *streams) worstLab(w Window, category string, takeMax bool, lookback time.Duration) *float64 {
	key := w.EncounterID + "|" + category
	if in := s.labs.Between(key, w.Start, w.End); len(in) > 0 {
		worst := in[0].Value
		for _, e := range in[1:] {
			if takeMax == (e.Value > worst) {
				worst = e.Value
			}
		}
		return floatPtr(worst)
	}
	if e, ok := s.labs.NearestPreceding(key, w.Start, lookback); ok {
		return floatPtr(e.Value)
	}
	return nil
}

// worstVital is worstLab over the vitals relation, in-window only.
func (s *streams) worstVital(w Window, category string, takeMax bool) *float64 {
	in := s.vitals.Between(w.EncounterID+"|"+category, w.Start, w.End)
	if len(in) == 0 {
		return nil
	}
	worst := in[0].Value
	for _, e := range in[1:] {
		if takeMax == (e.Value > worst) {
			worst = e.Value
		}
	}
	return floatPtr(worst)
}

// ScoreCohort runs the per-window pipeline over every input window and
// returns one scored row per window, in input order. The six organ
// calculators are mutually independent and run concurrently; the engine
// performs no I/O and never mutates its inputs.
func ScoreCohort(in *Inputs, cfg Config) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s := newStreams(in)
	scores, warnings := scoreWindows(in.Windows, s, cfg)
	return &Result{Scores: scores, Warnings: warnings}, nil
}

func scoreWindows(windows []Window, s *streams, cfg Config) ([]Score, []units.Warning) {
	var (
		brain  []brainResult
		resp   []respResult
		cardio []cardioResult
		liver  []liverResult
		kidney []kidneyResult
		hemo   []hemoResult

		warnings []units.Warning
		wg       sync.WaitGroup
	)
	wg.Add(6)
	go func() { defer wg.Done(); brain = scoreBrainAll(windows, s, cfg) }()
	go func() { defer wg.Done(); resp = scoreRespiratoryAll(windows, s, cfg) }()
	go func() { defer wg.Done(); cardio, warnings = scoreCardiovascularAll(windows, s, cfg) }()
	go func() { defer wg.Done(); liver = scoreLiverAll(windows, s, cfg) }()
	go func() { defer wg.Done(); kidney = scoreKidneyAll(windows, s, cfg) }()
	go func() { defer wg.Done(); hemo = scoreHemostasisAll(windows, s, cfg) }()
	wg.Wait()

	return combine(windows, brain, resp, cardio, liver, kidney, hemo), warnings
}
