package sofa

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// CSV export for the batch CLI. Absent subscores serialize as empty cells
// so downstream tooling keeps the absent/zero distinction.

var scoreHeader = []string{"encounter_id", "start_ts", "end_ts", "brain", "resp", "cv", "liver", "kidney", "hemo", "sofa_total"}

func csvCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func scoreRecord(sc *Score) []string {
	return []string{
		sc.EncounterID,
		sc.Start.UTC().Format(time.RFC3339),
		sc.End.UTC().Format(time.RFC3339),
		csvCell(sc.Brain),
		csvCell(sc.Resp),
		csvCell(sc.Cardio),
		csvCell(sc.Liver),
		csvCell(sc.Kidney),
		csvCell(sc.Hemo),
		strconv.Itoa(sc.Total),
	}
}

// WriteScoresCSV writes per-window rows.
func WriteScoresCSV(w io.Writer, scores []Score) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scoreHeader); err != nil {
		return err
	}
	for i := range scores {
		if err := cw.Write(scoreRecord(&scores[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDailyCSV writes per-day rows with the day number appended.
func WriteDailyCSV(w io.Writer, scores []DailyScore) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, scoreHeader...), "nth_day")); err != nil {
		return err
	}
	for i := range scores {
		rec := append(scoreRecord(&scores[i].Score), strconv.Itoa(scores[i].Day))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
