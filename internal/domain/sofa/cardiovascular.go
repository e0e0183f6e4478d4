package sofa

import (
	"sort"
	"time"

	"github.com/icuscore/sofa2/internal/platform/temporal"
	"github.com/icuscore/sofa2/internal/platform/units"
)

// Cardiovascular subscore: reconstructs each vasopressor's dose as a step
// signal from administration records, validates infusion episodes against
// the minimum duration, and scores the maximum concurrent first-line dose
// (norepinephrine + epinephrine), the vasopressin dose, or the worst mean
// arterial pressure when no pressor ran.

const (
	agentNorepinephrine = "norepinephrine"
	agentEpinephrine    = "epinephrine"
	agentVasopressin    = "vasopressin"
)

// pressorTargets fixes the conversion target per agent. Vasopressin doses
// are weight-independent.
var pressorTargets = map[string]units.Target{
	agentNorepinephrine: {Kind: units.Mass, PerKg: true},
	agentEpinephrine:    {Kind: units.Mass, PerKg: true},
	agentVasopressin:    {Kind: units.Units},
	"dopamine":          {Kind: units.Mass, PerKg: true},
	"dobutamine":        {Kind: units.Mass, PerKg: true},
	"phenylephrine":     {Kind: units.Mass, PerKg: true},
	"angiotensin_ii":    {Kind: units.Mass, PerKg: true},
	"milrinone":         {Kind: units.Mass, PerKg: true},
}

// otherPressorAgents is every vasoactive category outside the two
// first-line agents.
func otherPressorAgents() []string {
	out := make([]string, 0, len(pressorTargets))
	for cat := range pressorTargets {
		if cat != agentNorepinephrine && cat != agentEpinephrine {
			out = append(out, cat)
		}
	}
	sort.Strings(out)
	return out
}

// actionPriority resolves simultaneous conflicting administration records:
// the record reflecting the newest pump state outranks, then a non-zero
// dose outranks zero, then the larger dose wins.
var actionPriority = map[string]int{
	"rate_change": 3,
	"start":       2,
	"restart":     2,
	"stop":        1,
}

func medOutranks(a, b MedicationEvent) bool {
	pa, pb := actionPriority[a.Action], actionPriority[b.Action]
	if pa != pb {
		return pa > pb
	}
	if (a.Dose > 0) != (b.Dose > 0) {
		return a.Dose > 0
	}
	return a.Dose > b.Dose
}

type cardioResult struct {
	score            *int
	worstMAP         *float64
	maxFirstLine     *float64
	maxFirstLineAt   *time.Time
	maxVasopressin   *float64
	maxVasopressinAt *time.Time
	otherPressor     bool
}

func scoreCardiovascularAll(windows []Window, s *streams, cfg Config) ([]cardioResult, []units.Warning) {
	norm := units.NewNormalizer(s.weightAt)
	out := make([]cardioResult, len(windows))
	for i, w := range windows {
		out[i] = scoreCardiovascular(w, s, cfg, norm)
	}
	return out, norm.Warnings()
}

func scoreCardiovascular(w Window, s *streams, cfg Config, norm *units.Normalizer) cardioResult {
	var r cardioResult
	r.worstMAP = s.worstVital(w, VitalMAP, false)

	signals := make(map[string][]temporal.Sample, len(pressorTargets))
	for cat, target := range pressorTargets {
		samples, horizon := gatherPressor(w, s, cat, target, norm)
		signals[cat] = validatedSignal(samples, horizon, cfg.MinPressorEpisode)
	}

	first := mergedMax(w, signals[agentNorepinephrine], signals[agentEpinephrine])
	if first.found && first.max > 0 {
		r.maxFirstLine = floatPtr(first.max)
		r.maxFirstLineAt = timePtr(first.at)
		for _, cat := range otherPressorAgents() {
			if v, ok := temporal.ValueAt(signals[cat], first.at); ok && v > 0 {
				r.otherPressor = true
				break
			}
		}
	}

	vaso := mergedMax(w, signals[agentVasopressin])
	if vaso.found && vaso.max > 0 {
		r.maxVasopressin = floatPtr(vaso.max)
		r.maxVasopressinAt = timePtr(vaso.at)
	}

	anyOther := false
	for _, cat := range otherPressorAgents() {
		if cat == agentVasopressin {
			continue
		}
		m := mergedMax(w, signals[cat])
		if m.found && m.max > 0 {
			anyOther = true
			break
		}
	}

	switch {
	case r.maxFirstLine != nil:
		tier := firstLineTier(*r.maxFirstLine)
		if r.otherPressor && tier < 4 {
			tier++
		}
		r.score = intPtr(tier)
	case r.maxVasopressin != nil:
		if *r.maxVasopressin > 0.03 {
			r.score = intPtr(4)
		} else {
			r.score = intPtr(3)
		}
	case anyOther:
		r.score = intPtr(2)
	case r.worstMAP != nil:
		if *r.worstMAP < 70 {
			r.score = intPtr(1)
		} else {
			r.score = intPtr(0)
		}
	}
	return r
}

func firstLineTier(dose float64) int {
	switch {
	case dose <= 0.1:
		return 2
	case dose <= 0.3:
		return 3
	default:
		return 4
	}
}

// gatherPressor assembles the dose step signal for one agent across three
// ranges: the nearest administration before the window (state carried in),
// every in-window administration, and the nearest one after the window,
// which only bounds episode duration at the boundary. Conflicting records
// at the same timestamp are collapsed by priority; unconvertible doses are
// excluded (and warned about) by the normalizer.
func gatherPressor(w Window, s *streams, category string, target units.Target, norm *units.Normalizer) ([]temporal.Sample, time.Time) {
	key := w.EncounterID + "|" + category

	var events []MedicationEvent
	if e, ok := s.meds.NearestPreceding(key, w.Start, -1); ok {
		events = append(events, e)
	}
	events = append(events, s.meds.Between(key, w.Start, w.End)...)
	horizon := w.End
	if e, ok := s.meds.NearestFollowing(key, w.End); ok {
		events = append(events, e)
		horizon = e.AdministeredAt
	}

	events = temporal.DedupeByPriority(events, func(e MedicationEvent) string {
		return e.AdministeredAt.UTC().Format(time.RFC3339Nano)
	}, medOutranks)

	samples := make([]temporal.Sample, 0, len(events))
	for _, e := range events {
		// A stop record ends the infusion regardless of its dose field.
		dose := 0.0
		if e.Action != "stop" && e.Dose > 0 {
			converted, ok := norm.Convert(e.EncounterID, e.Category, e.DoseUnit, e.Dose, target, e.AdministeredAt)
			if !ok {
				continue
			}
			dose = converted
		}
		samples = append(samples, temporal.Sample{TS: e.AdministeredAt, Value: dose})
	}
	return samples, horizon
}

// validatedSignal zeroes every sample belonging to an infusion episode
// shorter than minDuration: a too-short episode contributes nothing for
// its whole span. An episode of exactly minDuration counts.
func validatedSignal(samples []temporal.Sample, horizon time.Time, minDuration time.Duration) []temporal.Sample {
	episodes := temporal.SegmentEpisodes(samples, horizon, func(v float64) bool { return v > 0 })
	invalid := func(ts time.Time) bool {
		for _, ep := range episodes {
			if ep.Duration() >= minDuration {
				continue
			}
			if !ts.Before(ep.Start) && ts.Before(ep.End) {
				return true
			}
		}
		return false
	}
	out := make([]temporal.Sample, len(samples))
	for i, smp := range samples {
		out[i] = smp
		if smp.Value > 0 && invalid(smp.TS) {
			out[i].Value = 0
		}
	}
	return out
}

type signalMax struct {
	max   float64
	at    time.Time
	found bool
}

// mergedMax evaluates the sum of the given step signals at the window
// start and at every sample timestamp inside the window, and returns the
// maximum concurrent sum with the timestamp at which it first occurred.
func mergedMax(w Window, signals ...[]temporal.Sample) signalMax {
	var candidates []time.Time
	candidates = append(candidates, w.Start)
	for _, sig := range signals {
		for _, smp := range sig {
			if !smp.TS.Before(w.Start) && !smp.TS.After(w.End) {
				candidates = append(candidates, smp.TS)
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })

	var m signalMax
	for _, t := range candidates {
		sum := 0.0
		any := false
		for _, sig := range signals {
			if v, ok := temporal.ValueAt(sig, t); ok {
				sum += v
				any = true
			}
		}
		if !any {
			continue
		}
		if !m.found || sum > m.max {
			m = signalMax{max: sum, at: t, found: true}
		}
	}
	return m
}
