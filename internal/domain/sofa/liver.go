package sofa

// Liver subscore: worst (highest) in-window bilirubin, falling back to the
// nearest preceding value within the liver lookback.

type liverResult struct {
	score     *int
	bilirubin *float64
}

func scoreLiverAll(windows []Window, s *streams, cfg Config) []liverResult {
	out := make([]liverResult, len(windows))
	for i, w := range windows {
		var r liverResult
		r.bilirubin = s.worstLab(w, LabBilirubin, true, cfg.LiverLookback)
		if r.bilirubin != nil {
			r.score = intPtr(bilirubinBand(*r.bilirubin))
		}
		out[i] = r
	}
	return out
}

// Bilirubin bands in mg/dL.
func bilirubinBand(v float64) int {
	switch {
	case v < 1.2:
		return 0
	case v < 2.0:
		return 1
	case v < 6.0:
		return 2
	case v < 12.0:
		return 3
	default:
		return 4
	}
}
