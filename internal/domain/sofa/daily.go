package sofa

import "time"

const dayLength = 24 * time.Hour

// ScoreDaily splits every input window into consecutive complete 24h days
// anchored at the window start, scores each day through the per-window
// pipeline, and carries missing subscores forward across the days of each
// window: day 1 absent becomes 0, later absent days take the most recent
// known value for that organ. Windows shorter than 24h contribute no rows;
// a trailing partial day is dropped.
func ScoreDaily(in *Inputs, cfg Config) (*DailyResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	type group struct{ start, end int } // row range of one source window
	var (
		days   []Window
		nths   []int
		groups []group
	)
	for _, w := range in.Windows {
		n := int(w.End.Sub(w.Start) / dayLength)
		if n == 0 {
			continue
		}
		g := group{start: len(days)}
		for d := 0; d < n; d++ {
			days = append(days, Window{
				EncounterID: w.EncounterID,
				Start:       w.Start.Add(time.Duration(d) * dayLength),
				End:         w.Start.Add(time.Duration(d+1) * dayLength),
			})
			nths = append(nths, d+1)
		}
		g.end = len(days)
		groups = append(groups, g)
	}
	if len(days) == 0 {
		return &DailyResult{}, nil
	}

	s := newStreams(in)
	scores, warnings := scoreWindows(days, s, cfg)

	out := make([]DailyScore, len(scores))
	for i := range scores {
		out[i] = DailyScore{Score: scores[i], Day: nths[i]}
	}
	for _, g := range groups {
		carryForward(out[g.start:g.end])
	}
	return &DailyResult{Scores: out, Warnings: warnings}, nil
}

// carryForward fills absent subscores across one window's consecutive
// days, independently per organ, then recomputes each day's total from the
// filled values. This scan is inherently sequential per window.
func carryForward(days []DailyScore) {
	var last [6]*int
	for i := range days {
		fields := organFields(&days[i].Score)
		for o, f := range fields {
			switch {
			case *f != nil:
				last[o] = *f
			case last[o] != nil:
				*f = intPtr(*last[o])
				last[o] = *f
			default:
				// Day 1 (and any leading run of absent days): measured
				// values are never carried backward.
				*f = intPtr(0)
				last[o] = *f
			}
		}
		days[i].Total = totalOf(&days[i].Score)
	}
}

func organFields(sc *Score) [6]**int {
	return [6]**int{&sc.Brain, &sc.Resp, &sc.Cardio, &sc.Liver, &sc.Kidney, &sc.Hemo}
}
