package sofa

import (
	"bytes"
	"encoding/csv"
	"testing"
)

func TestWriteScoresCSV(t *testing.T) {
	scores := []Score{
		{
			EncounterID: "e1",
			Start:       at(0),
			End:         at(24),
			Liver:       intPtr(4),
			Total:       4,
		},
	}
	var buf bytes.Buffer
	if err := WriteScoresCSV(&buf, scores); err != nil {
		t.Fatalf("WriteScoresCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if rows[0][0] != "encounter_id" || rows[0][9] != "sofa_total" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	got := rows[1]
	if got[1] != "2024-03-01T00:00:00Z" {
		t.Errorf("expected RFC3339 UTC start, got %q", got[1])
	}
	// Absent subscores stay empty; measured ones print.
	if got[3] != "" {
		t.Errorf("expected empty brain cell, got %q", got[3])
	}
	if got[6] != "4" {
		t.Errorf("expected liver 4, got %q", got[6])
	}
	if got[9] != "4" {
		t.Errorf("expected total 4, got %q", got[9])
	}
}

func TestWriteDailyCSV(t *testing.T) {
	scores := []DailyScore{
		{Score: Score{EncounterID: "e1", Start: at(0), End: at(24), Total: 0}, Day: 1},
		{Score: Score{EncounterID: "e1", Start: at(24), End: at(48), Total: 0}, Day: 2},
	}
	var buf bytes.Buffer
	if err := WriteDailyCSV(&buf, scores); err != nil {
		t.Fatalf("WriteDailyCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if rows[0][len(rows[0])-1] != "nth_day" {
		t.Errorf("expected nth_day as last header column, got %q", rows[0][len(rows[0])-1])
	}
	if rows[1][len(rows[1])-1] != "1" || rows[2][len(rows[2])-1] != "2" {
		t.Errorf("unexpected day numbers: %q, %q", rows[1][len(rows[1])-1], rows[2][len(rows[2])-1])
	}
}
