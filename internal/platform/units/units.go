// Package units canonicalizes free-text infusion dose units and converts
// doses to a fixed target unit per medication category. Unrecognized unit
// strings are reported as warnings and excluded from conversion, never
// silently coerced.
package units

import (
	"strings"
	"time"
)

// Kind is the amount dimension of a dose.
type Kind int

const (
	// Mass doses normalize to micrograms.
	Mass Kind = iota
	// Units doses (e.g. vasopressin) normalize to international units.
	Units
)

// Target is the fixed output unit for a category: an amount kind, whether
// the rate is per kilogram of body weight, always per minute.
type Target struct {
	Kind  Kind
	PerKg bool
}

// Warning records a dose row that could not be converted.
type Warning struct {
	EncounterID string    `json:"encounter_id"`
	Category    string    `json:"category"`
	Unit        string    `json:"unit"`
	Reason      string    `json:"reason"`
	At          time.Time `json:"at"`
}

// WeightLookup resolves a patient weight in kilograms as of a timestamp.
type WeightLookup func(encounterID string, at time.Time) (float64, bool)

// Normalizer converts doses and accumulates warnings. Not safe for
// concurrent use; each engine invocation builds its own.
type Normalizer struct {
	weightAt WeightLookup
	warnings []Warning
}

// NewNormalizer builds a Normalizer. weightAt may be nil when no per-kg
// target will be requested.
func NewNormalizer(weightAt WeightLookup) *Normalizer {
	return &Normalizer{weightAt: weightAt}
}

// Warnings returns every conversion failure seen so far.
func (n *Normalizer) Warnings() []Warning { return n.warnings }

var amountFactors = map[Kind]map[string]float64{
	Mass: {
		"g":   1e6,
		"mg":  1e3,
		"mcg": 1,
		"ug":  1,
		"µg":  1,
		"ng":  1e-3,
	},
	Units: {
		"units":      1,
		"unit":       1,
		"u":          1,
		"iu":         1,
		"milliunits": 1e-3,
		"mu":         1e-3,
	},
}

var timeFactors = map[string]float64{
	"min":    1,
	"minute": 1,
	"hr":     1.0 / 60,
	"h":      1.0 / 60,
	"hour":   1.0 / 60,
}

// parsedUnit is the canonical decomposition of a dose-unit string.
type parsedUnit struct {
	amount string
	perKg  bool
	per    string
}

// parseUnit splits a canonicalized unit string into amount, optional /kg,
// and time tokens. Accepted shapes: amount/time and amount/kg/time.
func parseUnit(raw string) (parsedUnit, bool) {
	s := strings.ToLower(strings.ReplaceAll(raw, " ", ""))
	parts := strings.Split(s, "/")
	var p parsedUnit
	switch len(parts) {
	case 2:
		p = parsedUnit{amount: parts[0], per: parts[1]}
	case 3:
		if parts[1] != "kg" {
			return parsedUnit{}, false
		}
		p = parsedUnit{amount: parts[0], perKg: true, per: parts[2]}
	default:
		return parsedUnit{}, false
	}
	if p.amount == "" || p.per == "" {
		return parsedUnit{}, false
	}
	return p, true
}

// Convert normalizes dose from rawUnit to the category's target unit.
// Returns false (and records a warning) when the unit string does not
// match any accepted pattern, the amount dimension disagrees with the
// target, or a required patient weight cannot be resolved.
func (n *Normalizer) Convert(encounterID, category, rawUnit string, dose float64, target Target, at time.Time) (float64, bool) {
	p, ok := parseUnit(rawUnit)
	if !ok {
		n.warn(encounterID, category, rawUnit, "unrecognized unit pattern", at)
		return 0, false
	}
	amountFactor, ok := amountFactors[target.Kind][p.amount]
	if !ok {
		n.warn(encounterID, category, rawUnit, "amount token does not match target dimension", at)
		return 0, false
	}
	timeFactor, ok := timeFactors[p.per]
	if !ok {
		n.warn(encounterID, category, rawUnit, "unrecognized time token", at)
		return 0, false
	}

	converted := dose * amountFactor * timeFactor

	switch {
	case target.PerKg && !p.perKg:
		w, ok := n.weight(encounterID, at)
		if !ok {
			n.warn(encounterID, category, rawUnit, "no patient weight available", at)
			return 0, false
		}
		converted /= w
	case !target.PerKg && p.perKg:
		w, ok := n.weight(encounterID, at)
		if !ok {
			n.warn(encounterID, category, rawUnit, "no patient weight available", at)
			return 0, false
		}
		converted *= w
	}
	return converted, true
}

func (n *Normalizer) weight(encounterID string, at time.Time) (float64, bool) {
	if n.weightAt == nil {
		return 0, false
	}
	w, ok := n.weightAt(encounterID, at)
	if !ok || w <= 0 {
		return 0, false
	}
	return w, true
}

func (n *Normalizer) warn(encounterID, category, unit, reason string, at time.Time) {
	n.warnings = append(n.warnings, Warning{
		EncounterID: encounterID,
		Category:    category,
		Unit:        unit,
		Reason:      reason,
		At:          at,
	})
}
