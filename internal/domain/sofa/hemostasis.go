package sofa

// Hemostasis subscore: worst (lowest) in-window platelet count, falling
// back to the nearest preceding value within the hemostasis lookback.

type hemoResult struct {
	score     *int
	platelets *float64
}

func scoreHemostasisAll(windows []Window, s *streams, cfg Config) []hemoResult {
	out := make([]hemoResult, len(windows))
	for i, w := range windows {
		var r hemoResult
		r.platelets = s.worstLab(w, LabPlatelets, false, cfg.HemostasisLookback)
		if r.platelets != nil {
			r.score = intPtr(plateletBand(*r.platelets))
		}
		out[i] = r
	}
	return out
}

// Platelet bands in 10³/µL.
func plateletBand(v float64) int {
	switch {
	case v >= 150:
		return 0
	case v >= 100:
		return 1
	case v >= 50:
		return 2
	case v >= 20:
		return 3
	default:
		return 4
	}
}
