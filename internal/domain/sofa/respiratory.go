package sofa

import (
	"sort"
	"time"
)

// Respiratory subscore: pairs each oxygenation measurement with the
// nearest preceding inspired-oxygen value within the configured tolerance
// and scores the worst resulting ratio. Arterial-pressure ratios always
// take precedence over saturation ratios; the two are mutually exclusive
// in the output.

// advancedSupport is the fixed set of device categories that qualify for
// the two highest score bands.
var advancedSupport = map[string]bool{
	DeviceHFNC: true,
	DeviceCPAP: true,
	DeviceNIV:  true,
	DeviceIMV:  true,
}

// cannulaFiO2 approximates the inspired-oxygen fraction delivered by a
// low-flow nasal cannula at the given flow rate (L/min).
func cannulaFiO2(flow float64) float64 {
	switch {
	case flow <= 1:
		return 0.24
	case flow <= 2:
		return 0.28
	case flow <= 3:
		return 0.32
	case flow <= 4:
		return 0.36
	case flow <= 5:
		return 0.40
	default:
		return 0.44
	}
}

// imputeFiO2 derives an inspired-oxygen fraction from a device event:
// explicit setting first, then the fixed ambient-air value, then the
// flow-rate lookup for nasal cannulas. Percent-recorded settings are
// scaled to a fraction.
func imputeFiO2(ev DeviceEvent) (float64, bool) {
	if ev.FiO2 != nil && *ev.FiO2 > 0 {
		f := *ev.FiO2
		if f > 1 {
			f /= 100
		}
		return f, true
	}
	switch ev.DeviceCategory {
	case DeviceRoomAir:
		return 0.21, true
	case DeviceNasalCannula:
		if ev.FlowRate != nil {
			return cannulaFiO2(*ev.FlowRate), true
		}
	}
	return 0, false
}

type fio2Sample struct {
	ts     time.Time
	frac   float64
	device string
}

type measurement struct {
	ts    time.Time
	value float64
}

type respResult struct {
	score          *int
	ratio          *float64
	ratioKind      string // "pf" or "sf"
	support        bool
	extracorporeal bool
}

func scoreRespiratoryAll(windows []Window, s *streams, cfg Config) []respResult {
	out := make([]respResult, len(windows))
	for i, w := range windows {
		out[i] = scoreRespiratory(w, s, cfg)
	}
	return out
}

func scoreRespiratory(w Window, s *streams, cfg Config) respResult {
	var r respResult

	r.extracorporeal = len(s.ecls.Between(w.EncounterID, w.Start, w.End)) > 0

	fio2s := collectFiO2(w, s, cfg)
	pao2s := collectLabMeasurements(w, s, LabPaO2, cfg.RespiratoryLookback)
	spo2s := collectVitalMeasurements(w, s, VitalSpO2, cfg.RespiratoryLookback)

	// Saturation ratios are defined only where desaturation is present.
	eligible := spo2s[:0:0]
	for _, m := range spo2s {
		if m.value < 98 {
			eligible = append(eligible, m)
		}
	}

	if ratio, dev, ok := worstRatio(pao2s, fio2s, cfg.RatioTolerance); ok {
		r.ratio = floatPtr(ratio)
		r.ratioKind = "pf"
		r.support = advancedSupport[dev]
	} else if ratio, dev, ok := worstRatio(eligible, fio2s, cfg.RatioTolerance); ok {
		r.ratio = floatPtr(ratio)
		r.ratioKind = "sf"
		r.support = advancedSupport[dev]
	}

	if r.extracorporeal {
		r.score = intPtr(4)
		return r
	}
	if r.ratio == nil {
		return r
	}
	if r.ratioKind == "pf" {
		r.score = intPtr(ratioBand(*r.ratio, r.support, pfThresholds))
	} else {
		r.score = intPtr(ratioBand(*r.ratio, r.support, sfThresholds))
	}
	return r
}

// collectFiO2 gathers imputable inspired-oxygen values: every in-window
// device event, or the nearest preceding one within the respiratory
// lookback when the window has none. In-window data always wins; the
// fallback is evaluated only after the in-window pass comes up empty.
func collectFiO2(w Window, s *streams, cfg Config) []fio2Sample {
	var out []fio2Sample
	for _, ev := range s.devices.Between(w.EncounterID, w.Start, w.End) {
		if frac, ok := imputeFiO2(ev); ok {
			out = append(out, fio2Sample{ts: ev.RecordedAt, frac: frac, device: ev.DeviceCategory})
		}
	}
	if len(out) > 0 {
		return out
	}
	if ev, ok := s.devices.NearestPreceding(w.EncounterID, w.Start, cfg.RespiratoryLookback); ok {
		if frac, ok := imputeFiO2(ev); ok {
			out = append(out, fio2Sample{ts: ev.RecordedAt, frac: frac, device: ev.DeviceCategory})
		}
	}
	return out
}

func collectLabMeasurements(w Window, s *streams, category string, lookback time.Duration) []measurement {
	key := w.EncounterID + "|" + category
	var out []measurement
	for _, e := range s.labs.Between(key, w.Start, w.End) {
		out = append(out, measurement{ts: e.CollectedAt, value: e.Value})
	}
	if len(out) > 0 {
		return out
	}
	if e, ok := s.labs.NearestPreceding(key, w.Start, lookback); ok {
		out = append(out, measurement{ts: e.CollectedAt, value: e.Value})
	}
	return out
}

func collectVitalMeasurements(w Window, s *streams, category string, lookback time.Duration) []measurement {
	key := w.EncounterID + "|" + category
	var out []measurement
	for _, e := range s.vitals.Between(key, w.Start, w.End) {
		out = append(out, measurement{ts: e.RecordedAt, value: e.Value})
	}
	if len(out) > 0 {
		return out
	}
	if e, ok := s.vitals.NearestPreceding(key, w.Start, lookback); ok {
		out = append(out, measurement{ts: e.RecordedAt, value: e.Value})
	}
	return out
}

// worstRatio pairs every measurement with the nearest strictly preceding
// inspired-oxygen sample no older than tolerance, and returns the minimum
// ratio with the device that delivered it. Pairs whose gap exceeds the
// tolerance are rejected; the tolerance boundary itself is inclusive.
func worstRatio(measurements []measurement, fio2s []fio2Sample, tolerance time.Duration) (float64, string, bool) {
	if len(fio2s) == 0 {
		return 0, "", false
	}
	sort.SliceStable(fio2s, func(i, j int) bool { return fio2s[i].ts.Before(fio2s[j].ts) })

	var (
		best    float64
		bestDev string
		found   bool
	)
	for _, m := range measurements {
		i := sort.Search(len(fio2s), func(i int) bool { return !fio2s[i].ts.Before(m.ts) })
		if i == 0 {
			continue
		}
		f := fio2s[i-1]
		if m.ts.Sub(f.ts) > tolerance || f.frac <= 0 {
			continue
		}
		ratio := m.value / f.frac
		if !found || ratio < best {
			best, bestDev, found = ratio, f.device, true
		}
	}
	return best, bestDev, found
}

type ratioThresholds struct {
	band1, band2, band3, band4 float64
}

// Arterial-pressure ratio bands; the 3 and 4 bands require advanced
// ventilatory support.
var pfThresholds = ratioThresholds{band1: 400, band2: 300, band3: 150, band4: 75}

// Saturation ratio bands (linear equivalents of the pressure bands).
var sfThresholds = ratioThresholds{band1: 400, band2: 316, band3: 190, band4: 127}

func ratioBand(ratio float64, support bool, t ratioThresholds) int {
	switch {
	case ratio > t.band1:
		return 0
	case ratio > t.band2:
		return 1
	case ratio > t.band3:
		return 2
	case ratio > t.band4:
		if support {
			return 3
		}
		return 2
	default:
		if support {
			return 4
		}
		return 2
	}
}
