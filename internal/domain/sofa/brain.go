package sofa

// Neurological subscore: worst in-window coma-scale total, with a floor of
// 1 when a sedating agent was administered in the window. A sedated
// patient cannot be assumed normal even when nominally scored 15. No
// pre-window lookback applies to assessments.

var sedatingAgents = map[string]bool{
	"propofol":        true,
	"midazolam":       true,
	"lorazepam":       true,
	"dexmedetomidine": true,
	"ketamine":        true,
}

type brainResult struct {
	score    *int
	worstGCS *float64
	sedated  bool
}

func scoreBrainAll(windows []Window, s *streams, cfg Config) []brainResult {
	out := make([]brainResult, len(windows))
	for i, w := range windows {
		out[i] = scoreBrain(w, s)
	}
	return out
}

func scoreBrain(w Window, s *streams) brainResult {
	var r brainResult

	in := s.assessments.Between(w.EncounterID+"|"+AssessmentGCS, w.Start, w.End)
	if len(in) > 0 {
		worst := in[0].Value
		for _, e := range in[1:] {
			if e.Value < worst {
				worst = e.Value
			}
		}
		r.worstGCS = floatPtr(worst)
	}

	for agent := range sedatingAgents {
		for _, m := range s.meds.Between(w.EncounterID+"|"+agent, w.Start, w.End) {
			if m.Dose > 0 {
				r.sedated = true
				break
			}
		}
		if r.sedated {
			break
		}
	}

	if r.worstGCS == nil {
		return r
	}
	r.score = intPtr(gcsBand(*r.worstGCS, r.sedated))
	return r
}

func gcsBand(worst float64, sedated bool) int {
	switch {
	case worst >= 15:
		if sedated {
			return 1
		}
		return 0
	case worst >= 13:
		return 1
	case worst >= 10:
		return 2
	case worst >= 6:
		return 3
	default:
		return 4
	}
}
