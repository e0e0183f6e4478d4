package sofa

import (
	"fmt"
	"time"

	"github.com/icuscore/sofa2/internal/platform/units"
)

// Window is one scoring interval for an encounter. Windows are immutable
// inputs; every output row carries exactly one input window's key
// (encounter_id, start_ts).
type Window struct {
	EncounterID string    `db:"encounter_id" json:"encounter_id"`
	Start       time.Time `db:"start_ts" json:"start_ts"`
	End         time.Time `db:"end_ts" json:"end_ts"`
}

// LabEvent is a single laboratory result.
type LabEvent struct {
	EncounterID string    `db:"encounter_id" json:"encounter_id"`
	Category    string    `db:"category" json:"category"`
	Value       float64   `db:"value" json:"value"`
	CollectedAt time.Time `db:"collected_ts" json:"collected_ts"`
}

// VitalEvent is a single vital-sign observation.
type VitalEvent struct {
	EncounterID string    `db:"encounter_id" json:"encounter_id"`
	Category    string    `db:"category" json:"category"`
	Value       float64   `db:"value" json:"value"`
	RecordedAt  time.Time `db:"recorded_ts" json:"recorded_ts"`
}

// MedicationEvent is one administration record for a continuous or bolus
// medication. Simultaneous conflicting records for the same category and
// timestamp are resolved by action priority (see cardiovascular.go).
type MedicationEvent struct {
	EncounterID    string    `db:"encounter_id" json:"encounter_id"`
	Category       string    `db:"category" json:"category"`
	Dose           float64   `db:"dose" json:"dose"`
	DoseUnit       string    `db:"dose_unit" json:"dose_unit"`
	AdministeredAt time.Time `db:"administered_ts" json:"administered_ts"`
	Action         string    `db:"action_category" json:"action_category"`
}

// DeviceEvent is a respiratory-support device setting. FiO2 and FlowRate
// are optional; category alone may be enough to impute an inspired-oxygen
// fraction (room air, low-flow nasal cannula).
type DeviceEvent struct {
	EncounterID    string    `db:"encounter_id" json:"encounter_id"`
	DeviceCategory string    `db:"device_category" json:"device_category"`
	FiO2           *float64  `db:"inspired_o2_fraction" json:"inspired_o2_fraction,omitempty"`
	FlowRate       *float64  `db:"flow_rate" json:"flow_rate,omitempty"`
	RecordedAt     time.Time `db:"recorded_ts" json:"recorded_ts"`
}

// AssessmentEvent is a scored clinical assessment (e.g. a neurological
// coma scale total).
type AssessmentEvent struct {
	EncounterID string    `db:"encounter_id" json:"encounter_id"`
	Category    string    `db:"category" json:"category"`
	Value       float64   `db:"numeric_value" json:"numeric_value"`
	RecordedAt  time.Time `db:"recorded_ts" json:"recorded_ts"`
}

// TherapyFlagEvent marks an organ-support therapy as active at a point in
// time; presence is the signal, there is no payload.
type TherapyFlagEvent struct {
	EncounterID string    `db:"encounter_id" json:"encounter_id"`
	RecordedAt  time.Time `db:"recorded_ts" json:"recorded_ts"`
}

// Inputs bundles the immutable relations one scoring invocation consumes.
type Inputs struct {
	Windows               []Window           `json:"windows"`
	Labs                  []LabEvent         `json:"labs,omitempty"`
	Vitals                []VitalEvent       `json:"vitals,omitempty"`
	Medications           []MedicationEvent  `json:"medications,omitempty"`
	Devices               []DeviceEvent      `json:"devices,omitempty"`
	Assessments           []AssessmentEvent  `json:"assessments,omitempty"`
	RenalReplacement      []TherapyFlagEvent `json:"renal_replacement,omitempty"`
	ExtracorporealSupport []TherapyFlagEvent `json:"extracorporeal_support,omitempty"`
}

// Validate checks the relations for schema errors before any computation
// begins. Missing measurements are data gaps, not errors; this only
// rejects rows whose required fields are absent.
func (in *Inputs) Validate() error {
	for i, w := range in.Windows {
		if w.EncounterID == "" {
			return fmt.Errorf("window %d: encounter_id is required", i)
		}
		if w.Start.IsZero() || w.End.IsZero() {
			return fmt.Errorf("window %d (%s): start_ts and end_ts are required", i, w.EncounterID)
		}
		if !w.End.After(w.Start) {
			return fmt.Errorf("window %d (%s): end_ts must be after start_ts", i, w.EncounterID)
		}
	}
	for i, e := range in.Labs {
		if e.EncounterID == "" || e.Category == "" || e.CollectedAt.IsZero() {
			return fmt.Errorf("lab event %d: encounter_id, category and collected_ts are required", i)
		}
	}
	for i, e := range in.Vitals {
		if e.EncounterID == "" || e.Category == "" || e.RecordedAt.IsZero() {
			return fmt.Errorf("vital event %d: encounter_id, category and recorded_ts are required", i)
		}
	}
	for i, e := range in.Medications {
		if e.EncounterID == "" || e.Category == "" || e.AdministeredAt.IsZero() {
			return fmt.Errorf("medication event %d: encounter_id, category and administered_ts are required", i)
		}
	}
	for i, e := range in.Devices {
		if e.EncounterID == "" || e.DeviceCategory == "" || e.RecordedAt.IsZero() {
			return fmt.Errorf("device event %d: encounter_id, device_category and recorded_ts are required", i)
		}
	}
	for i, e := range in.Assessments {
		if e.EncounterID == "" || e.Category == "" || e.RecordedAt.IsZero() {
			return fmt.Errorf("assessment event %d: encounter_id, category and recorded_ts are required", i)
		}
	}
	for i, e := range in.RenalReplacement {
		if e.EncounterID == "" || e.RecordedAt.IsZero() {
			return fmt.Errorf("renal replacement event %d: encounter_id and recorded_ts are required", i)
		}
	}
	for i, e := range in.ExtracorporealSupport {
		if e.EncounterID == "" || e.RecordedAt.IsZero() {
			return fmt.Errorf("extracorporeal support event %d: encounter_id and recorded_ts are required", i)
		}
	}
	return nil
}

// Lab, vital and assessment categories the calculators consume.
const (
	LabBilirubin   = "bilirubin"
	LabPlatelets   = "platelets"
	LabCreatinine  = "creatinine"
	LabPotassium   = "potassium"
	LabPH          = "ph"
	LabBicarbonate = "bicarbonate"
	LabPaO2        = "pao2"

	VitalMAP    = "map"
	VitalSpO2   = "spo2"
	VitalWeight = "weight"

	AssessmentGCS = "gcs"
)

// Respiratory-support device categories.
const (
	DeviceRoomAir      = "room_air"
	DeviceNasalCannula = "nasal_cannula"
	DeviceFaceMask     = "face_mask"
	DeviceHFNC         = "hfnc"
	DeviceCPAP         = "cpap"
	DeviceNIV          = "niv"
	DeviceIMV          = "imv"
)

// ScoreDetail carries the measurements behind each subscore, retained for
// audit and debugging; none of these fields affect the total.
type ScoreDetail struct {
	WorstGCS           *float64   `json:"worst_gcs,omitempty"`
	Sedated            bool       `json:"sedated,omitempty"`
	Ratio              *float64   `json:"oxygenation_ratio,omitempty"`
	RatioKind          string     `json:"ratio_kind,omitempty"`
	AdvancedSupport    bool       `json:"advanced_support,omitempty"`
	Extracorporeal     bool       `json:"extracorporeal_support,omitempty"`
	WorstMAP           *float64   `json:"worst_map,omitempty"`
	MaxFirstLineDose   *float64   `json:"max_first_line_dose,omitempty"`
	MaxFirstLineAt     *time.Time `json:"max_first_line_at,omitempty"`
	MaxVasopressinDose *float64   `json:"max_vasopressin_dose,omitempty"`
	MaxVasopressinAt   *time.Time `json:"max_vasopressin_at,omitempty"`
	OtherPressor       bool       `json:"other_pressor,omitempty"`
	Bilirubin          *float64   `json:"bilirubin,omitempty"`
	Creatinine         *float64   `json:"creatinine,omitempty"`
	Potassium          *float64   `json:"potassium,omitempty"`
	PH                 *float64   `json:"ph,omitempty"`
	Bicarbonate        *float64   `json:"bicarbonate,omitempty"`
	RenalReplacement   bool       `json:"renal_replacement,omitempty"`
	MeetsRenalCriteria bool       `json:"meets_renal_criteria,omitempty"`
	Platelets          *float64   `json:"platelets,omitempty"`
}

// Score is the scored output for one window. A nil organ field means no
// measurement was ever found for that organ ("absent"), which is distinct
// from a measured 0; absent collapses to 0 only in Total.
type Score struct {
	EncounterID string       `json:"encounter_id"`
	Start       time.Time    `json:"start_ts"`
	End         time.Time    `json:"end_ts"`
	Brain       *int         `json:"brain,omitempty"`
	Resp        *int         `json:"resp,omitempty"`
	Cardio      *int         `json:"cv,omitempty"`
	Liver       *int         `json:"liver,omitempty"`
	Kidney      *int         `json:"kidney,omitempty"`
	Hemo        *int         `json:"hemo,omitempty"`
	Total       int          `json:"sofa_total"`
	Detail      *ScoreDetail `json:"detail,omitempty"`
}

// DailyScore is a Score for one 24h day of an expanded window.
type DailyScore struct {
	Score
	Day int `json:"nth_day"`
}

// Result is the output of one per-window scoring invocation.
type Result struct {
	Scores   []Score         `json:"scores"`
	Warnings []units.Warning `json:"warnings,omitempty"`
}

// DailyResult is the output of one daily-expansion invocation.
type DailyResult struct {
	Scores   []DailyScore    `json:"scores"`
	Warnings []units.Warning `json:"warnings,omitempty"`
}

func intPtr(v int) *int              { return &v }
func floatPtr(v float64) *float64    { return &v }
func timePtr(v time.Time) *time.Time { return &v }
