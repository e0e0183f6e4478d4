package units

import (
	"math"
	"testing"
	"time"
)

var ts = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func fixedWeight(kg float64) WeightLookup {
	return func(string, time.Time) (float64, bool) { return kg, true }
}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestConvert_AlreadyCanonical(t *testing.T) {
	n := NewNormalizer(nil)
	got, ok := n.Convert("e1", "norepinephrine", "mcg/kg/min", 0.2, Target{Kind: Mass, PerKg: true}, ts)
	if !ok || !almost(got, 0.2) {
		t.Fatalf("expected 0.2, got %v ok=%v", got, ok)
	}
	if len(n.Warnings()) != 0 {
		t.Errorf("unexpected warnings: %+v", n.Warnings())
	}
}

func TestConvert_MassAndTimeFactors(t *testing.T) {
	n := NewNormalizer(fixedWeight(80))

	// 4 mg/hr for an 80 kg patient: 4000 mcg / 60 min / 80 kg.
	got, ok := n.Convert("e1", "norepinephrine", "mg/hr", 4, Target{Kind: Mass, PerKg: true}, ts)
	want := 4000.0 / 60 / 80
	if !ok || !almost(got, want) {
		t.Fatalf("expected %v, got %v ok=%v", want, got, ok)
	}

	// Case and whitespace are stripped.
	got, ok = n.Convert("e1", "norepinephrine", " MCG / KG / MIN ", 0.1, Target{Kind: Mass, PerKg: true}, ts)
	if !ok || !almost(got, 0.1) {
		t.Fatalf("expected 0.1, got %v ok=%v", got, ok)
	}
}

func TestConvert_UnitsPerMin(t *testing.T) {
	n := NewNormalizer(nil)
	got, ok := n.Convert("e1", "vasopressin", "units/hr", 2.4, Target{Kind: Units}, ts)
	if !ok || !almost(got, 0.04) {
		t.Fatalf("expected 0.04 units/min, got %v ok=%v", got, ok)
	}
	got, ok = n.Convert("e1", "vasopressin", "mu/min", 30, Target{Kind: Units}, ts)
	if !ok || !almost(got, 0.03) {
		t.Fatalf("expected 0.03 units/min, got %v ok=%v", got, ok)
	}
}

func TestConvert_PerKgSourceToTotalTarget(t *testing.T) {
	n := NewNormalizer(fixedWeight(50))
	got, ok := n.Convert("e1", "vasopressin", "units/kg/min", 0.001, Target{Kind: Units}, ts)
	if !ok || !almost(got, 0.05) {
		t.Fatalf("expected 0.05, got %v ok=%v", got, ok)
	}
}

func TestConvert_UnrecognizedUnitWarns(t *testing.T) {
	n := NewNormalizer(nil)
	for _, unit := range []string{"", "mcg", "mcg/lb/min", "drops/min", "mcg/kg/fortnight"} {
		if _, ok := n.Convert("e1", "norepinephrine", unit, 1, Target{Kind: Mass, PerKg: true}, ts); ok {
			t.Errorf("unit %q should not convert", unit)
		}
	}
	if len(n.Warnings()) != 5 {
		t.Fatalf("expected 5 warnings, got %d", len(n.Warnings()))
	}
	if n.Warnings()[3].Unit != "drops/min" {
		t.Errorf("warning should carry the raw unit, got %q", n.Warnings()[3].Unit)
	}
}

func TestConvert_DimensionMismatchWarns(t *testing.T) {
	n := NewNormalizer(nil)
	if _, ok := n.Convert("e1", "vasopressin", "mcg/min", 5, Target{Kind: Units}, ts); ok {
		t.Error("mass unit should not convert to a units target")
	}
	if len(n.Warnings()) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(n.Warnings()))
	}
}

func TestConvert_MissingWeightWarns(t *testing.T) {
	n := NewNormalizer(func(string, time.Time) (float64, bool) { return 0, false })
	if _, ok := n.Convert("e1", "norepinephrine", "mcg/min", 10, Target{Kind: Mass, PerKg: true}, ts); ok {
		t.Error("conversion requiring weight should fail without one")
	}
	if len(n.Warnings()) != 1 || n.Warnings()[0].Reason != "no patient weight available" {
		t.Fatalf("expected a weight warning, got %+v", n.Warnings())
	}
}
