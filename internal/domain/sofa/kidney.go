package sofa

// Kidney subscore: creatinine bands, overridden to 4 by active renal
// replacement therapy or by meeting the therapy criteria. Each of the four
// lab categories resolves its fallback independently; the criteria check
// does not verify that the contributing values were concurrent. That is
// the published rule's documented simplification.

type kidneyResult struct {
	score            *int
	creatinine       *float64
	potassium        *float64
	ph               *float64
	bicarbonate      *float64
	renalReplacement bool
	meetsCriteria    bool
}

func scoreKidneyAll(windows []Window, s *streams, cfg Config) []kidneyResult {
	out := make([]kidneyResult, len(windows))
	for i, w := range windows {
		out[i] = scoreKidney(w, s, cfg)
	}
	return out
}

func scoreKidney(w Window, s *streams, cfg Config) kidneyResult {
	r := kidneyResult{
		creatinine:  s.worstLab(w, LabCreatinine, true, cfg.KidneyLookback),
		potassium:   s.worstLab(w, LabPotassium, true, cfg.KidneyLookback),
		ph:          s.worstLab(w, LabPH, false, cfg.KidneyLookback),
		bicarbonate: s.worstLab(w, LabBicarbonate, false, cfg.KidneyLookback),
	}
	// Therapy flags are in-window only; no lookback applies.
	r.renalReplacement = len(s.rrt.Between(w.EncounterID, w.Start, w.End)) > 0
	r.meetsCriteria = meetsRenalCriteria(r)

	switch {
	case r.renalReplacement, r.meetsCriteria:
		r.score = intPtr(4)
	case r.creatinine != nil:
		r.score = intPtr(creatinineBand(*r.creatinine))
	}
	return r
}

// meetsRenalCriteria reports whether the resolved labs satisfy the
// renal-replacement indication: high creatinine together with severe
// hyperkalemia or combined acidosis.
func meetsRenalCriteria(r kidneyResult) bool {
	if r.creatinine == nil || *r.creatinine < 3.5 {
		return false
	}
	if r.potassium != nil && *r.potassium >= 6.5 {
		return true
	}
	return r.ph != nil && r.bicarbonate != nil && *r.ph < 7.20 && *r.bicarbonate < 18
}

// Creatinine bands in mg/dL.
func creatinineBand(v float64) int {
	switch {
	case v < 1.2:
		return 0
	case v < 2.0:
		return 1
	case v < 3.5:
		return 2
	case v < 5.0:
		return 3
	default:
		return 4
	}
}
