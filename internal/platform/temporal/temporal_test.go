package temporal

import (
	"testing"
	"time"
)

type ev struct {
	enc string
	ts  time.Time
	val float64
}

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(min int) time.Time { return t0.Add(time.Duration(min) * time.Minute) }

func index(events ...ev) *Index[ev] {
	return NewIndex(events, func(e ev) string { return e.enc }, func(e ev) time.Time { return e.ts })
}

func TestNearestPreceding_Strict(t *testing.T) {
	ix := index(ev{"e1", at(0), 1}, ev{"e1", at(10), 2}, ev{"e1", at(20), 3})

	// Event exactly at the probe must not match.
	got, ok := ix.NearestPreceding("e1", at(10), -1)
	if !ok {
		t.Fatal("expected a preceding event")
	}
	if got.val != 1 {
		t.Errorf("expected value 1 (strictly before probe), got %v", got.val)
	}

	if _, ok := ix.NearestPreceding("e1", at(0), -1); ok {
		t.Error("expected no event strictly before the first timestamp")
	}
}

func TestNearestPreceding_LookbackBoundary(t *testing.T) {
	ix := index(ev{"e1", at(0), 1})

	// Exactly at the lookback boundary: included.
	if _, ok := ix.NearestPreceding("e1", at(60), time.Hour); !ok {
		t.Error("event exactly at the lookback boundary should be included")
	}
	// One second beyond: excluded.
	if _, ok := ix.NearestPreceding("e1", at(60).Add(time.Second), time.Hour); ok {
		t.Error("event one second beyond the lookback boundary should be excluded")
	}
}

func TestNearestPreceding_PartitionIsolation(t *testing.T) {
	ix := index(ev{"e1", at(0), 1}, ev{"e2", at(5), 2})
	got, ok := ix.NearestPreceding("e2", at(10), -1)
	if !ok || got.val != 2 {
		t.Fatalf("expected e2's own event, got %+v ok=%v", got, ok)
	}
	if _, ok := ix.NearestPreceding("e3", at(10), -1); ok {
		t.Error("unknown partition should yield no result, not an error")
	}
}

func TestNearestFollowing(t *testing.T) {
	ix := index(ev{"e1", at(0), 1}, ev{"e1", at(30), 2})
	got, ok := ix.NearestFollowing("e1", at(0))
	if !ok || got.val != 2 {
		t.Fatalf("expected strictly-after event with value 2, got %+v ok=%v", got, ok)
	}
	if _, ok := ix.NearestFollowing("e1", at(30)); ok {
		t.Error("expected no event after the last timestamp")
	}
}

func TestBetween_InclusiveBounds(t *testing.T) {
	ix := index(ev{"e1", at(0), 1}, ev{"e1", at(10), 2}, ev{"e1", at(20), 3}, ev{"e1", at(30), 4})
	got := ix.Between("e1", at(10), at(20))
	if len(got) != 2 || got[0].val != 2 || got[1].val != 3 {
		t.Fatalf("expected values [2 3], got %+v", got)
	}
	if got := ix.Between("e1", at(40), at(50)); len(got) != 0 {
		t.Errorf("expected empty slice outside the range, got %+v", got)
	}
}

func TestSegmentEpisodes(t *testing.T) {
	samples := []Sample{
		{at(0), 0},
		{at(10), 0.2},
		{at(40), 0.3},
		{at(70), 0},
		{at(90), 0.1},
	}
	eps := SegmentEpisodes(samples, at(120), func(v float64) bool { return v > 0 })
	if len(eps) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(eps))
	}
	if !eps[0].Start.Equal(at(10)) || !eps[0].End.Equal(at(70)) {
		t.Errorf("episode 0: got [%v, %v]", eps[0].Start, eps[0].End)
	}
	if eps[0].Duration() != 60*time.Minute {
		t.Errorf("episode 0 duration: got %v", eps[0].Duration())
	}
	// Open run ends at the horizon.
	if !eps[1].Start.Equal(at(90)) || !eps[1].End.Equal(at(120)) {
		t.Errorf("episode 1: got [%v, %v]", eps[1].Start, eps[1].End)
	}
	if len(eps[0].Samples) != 2 {
		t.Errorf("episode 0 samples: got %d", len(eps[0].Samples))
	}
}

func TestSegmentEpisodes_Empty(t *testing.T) {
	if eps := SegmentEpisodes(nil, at(0), func(v float64) bool { return v > 0 }); len(eps) != 0 {
		t.Errorf("expected no episodes from empty signal, got %d", len(eps))
	}
}

func TestValueAt(t *testing.T) {
	samples := []Sample{{at(0), 1}, {at(10), 2}}
	if _, ok := ValueAt(samples, at(-1)); ok {
		t.Error("expected no value before the first sample")
	}
	if v, _ := ValueAt(samples, at(10)); v != 2 {
		t.Errorf("expected sample at probe time to apply, got %v", v)
	}
	if v, _ := ValueAt(samples, at(500)); v != 2 {
		t.Errorf("expected last value to carry forward, got %v", v)
	}
}

func TestDedupeByPriority(t *testing.T) {
	events := []ev{
		{"k1", at(0), 0},
		{"k1", at(0), 5},
		{"k2", at(0), 1},
		{"k1", at(0), 3},
	}
	out := DedupeByPriority(events,
		func(e ev) string { return e.enc },
		func(a, b ev) bool { return a.val > b.val })
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	// Input order preserved among survivors.
	if out[0].val != 5 || out[1].val != 1 {
		t.Errorf("expected [5 1], got [%v %v]", out[0].val, out[1].val)
	}
}

func TestDedupeByPriority_StableTies(t *testing.T) {
	events := []ev{{"k", at(0), 2}, {"k", at(1), 2}}
	out := DedupeByPriority(events,
		func(e ev) string { return e.enc },
		func(a, b ev) bool { return a.val > b.val })
	if len(out) != 1 || !out[0].ts.Equal(at(0)) {
		t.Errorf("tie should keep the earlier input row, got %+v", out)
	}
}
