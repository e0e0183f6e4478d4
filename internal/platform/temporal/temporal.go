// Package temporal provides the shared time-series primitives used by the
// organ subscore calculators: nearest-preceding lookup, inclusive window
// slicing, step-signal episode segmentation, and priority deduplication.
// Event streams are indexed once per invocation and are treated as
// immutable snapshots; all operations are pure.
package temporal

import (
	"sort"
	"time"
)

// Index holds a set of events grouped by partition key (encounter) and
// sorted by timestamp within each partition.
type Index[E any] struct {
	key   func(E) string
	ts    func(E) time.Time
	byKey map[string][]E
}

// NewIndex builds an index over events. The input slice is not mutated.
func NewIndex[E any](events []E, key func(E) string, ts func(E) time.Time) *Index[E] {
	ix := &Index[E]{key: key, ts: ts, byKey: make(map[string][]E)}
	for _, e := range events {
		k := key(e)
		ix.byKey[k] = append(ix.byKey[k], e)
	}
	for k := range ix.byKey {
		part := ix.byKey[k]
		sort.SliceStable(part, func(i, j int) bool {
			return ts(part[i]).Before(ts(part[j]))
		})
	}
	return ix
}

// NearestPreceding returns the latest event strictly before probe within
// maxLookback of it. The lookback boundary is inclusive: an event exactly
// maxLookback before the probe qualifies. A negative maxLookback means
// unrestricted lookback. The second return value is false when no event
// qualifies.
func (ix *Index[E]) NearestPreceding(key string, probe time.Time, maxLookback time.Duration) (E, bool) {
	var zero E
	part := ix.byKey[key]
	if len(part) == 0 {
		return zero, false
	}
	// First index with ts >= probe; the candidate is the one before it.
	i := sort.Search(len(part), func(i int) bool {
		return !ix.ts(part[i]).Before(probe)
	})
	if i == 0 {
		return zero, false
	}
	e := part[i-1]
	if maxLookback >= 0 && probe.Sub(ix.ts(e)) > maxLookback {
		return zero, false
	}
	return e, true
}

// NearestFollowing returns the earliest event with ts > probe, used to
// bound infusion episodes at the scoring-window boundary.
func (ix *Index[E]) NearestFollowing(key string, probe time.Time) (E, bool) {
	var zero E
	part := ix.byKey[key]
	i := sort.Search(len(part), func(i int) bool {
		return ix.ts(part[i]).After(probe)
	})
	if i == len(part) {
		return zero, false
	}
	return part[i], true
}

// Between returns all events with start <= ts <= end, in timestamp order.
// Both bounds are inclusive. The returned slice aliases the index; callers
// must not mutate it.
func (ix *Index[E]) Between(key string, start, end time.Time) []E {
	part := ix.byKey[key]
	lo := sort.Search(len(part), func(i int) bool {
		return !ix.ts(part[i]).Before(start)
	})
	hi := sort.Search(len(part), func(i int) bool {
		return ix.ts(part[i]).After(end)
	})
	if lo >= hi {
		return nil
	}
	return part[lo:hi]
}

// Sample is one point of a reconstructed step signal: the value holds from
// TS until the next sample's TS.
type Sample struct {
	TS    time.Time
	Value float64
}

// Episode is a maximal contiguous run where a predicate over a step signal
// holds. End is the timestamp at which the predicate first stops holding
// (the terminating sample's TS, or the horizon when the run is still open).
type Episode struct {
	Start   time.Time
	End     time.Time
	Samples []Sample
}

// Duration returns the episode length.
func (e Episode) Duration() time.Duration { return e.End.Sub(e.Start) }

// SegmentEpisodes splits a timestamp-ordered step signal into maximal runs
// where active(value) holds. A run that is still active at the last sample
// ends at horizon. Empty input yields no episodes.
func SegmentEpisodes(samples []Sample, horizon time.Time, active func(float64) bool) []Episode {
	var episodes []Episode
	var cur *Episode
	for _, s := range samples {
		switch {
		case active(s.Value) && cur == nil:
			episodes = append(episodes, Episode{Start: s.TS})
			cur = &episodes[len(episodes)-1]
			cur.Samples = append(cur.Samples, s)
		case active(s.Value):
			cur.Samples = append(cur.Samples, s)
		case cur != nil:
			cur.End = s.TS
			cur = nil
		}
	}
	if cur != nil {
		cur.End = horizon
	}
	return episodes
}

// ValueAt evaluates a timestamp-ordered step signal at t: the value of the
// latest sample with TS <= t. Forward-fill over an ordered partition is
// exactly this evaluation. Returns false before the first sample.
func ValueAt(samples []Sample, t time.Time) (float64, bool) {
	i := sort.Search(len(samples), func(i int) bool {
		return samples[i].TS.After(t)
	})
	if i == 0 {
		return 0, false
	}
	return samples[i-1].Value, true
}

// DedupeByPriority collapses events sharing a key down to the single
// highest-priority event per key. outranks(a, b) reports whether a should
// be kept over b; ties keep the earlier input row (stable). Relative input
// order of the surviving rows is preserved.
func DedupeByPriority[E any](events []E, key func(E) string, outranks func(a, b E) bool) []E {
	best := make(map[string]int)
	for i, e := range events {
		k := key(e)
		j, seen := best[k]
		if !seen || outranks(e, events[j]) {
			best[k] = i
		}
	}
	keep := make(map[int]bool, len(best))
	for _, i := range best {
		keep[i] = true
	}
	out := make([]E, 0, len(best))
	for i, e := range events {
		if keep[i] {
			out = append(out, e)
		}
	}
	return out
}
