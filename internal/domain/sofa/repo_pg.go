package sofa

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo returns a Repository backed by the cohort tables.
func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Windows(ctx context.Context) ([]Window, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT encounter_id, start_ts, end_ts
		FROM scoring_window
		ORDER BY encounter_id, start_ts`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Window, error) {
		var w Window
		err := row.Scan(&w.EncounterID, &w.Start, &w.End)
		return w, err
	})
}

func (r *repoPG) Labs(ctx context.Context) ([]LabEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT encounter_id, category, value, collected_ts
		FROM lab_event
		ORDER BY encounter_id, collected_ts`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (LabEvent, error) {
		var e LabEvent
		err := row.Scan(&e.EncounterID, &e.Category, &e.Value, &e.CollectedAt)
		return e, err
	})
}

func (r *repoPG) Vitals(ctx context.Context) ([]VitalEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT encounter_id, category, value, recorded_ts
		FROM vital_event
		ORDER BY encounter_id, recorded_ts`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (VitalEvent, error) {
		var e VitalEvent
		err := row.Scan(&e.EncounterID, &e.Category, &e.Value, &e.RecordedAt)
		return e, err
	})
}

func (r *repoPG) Medications(ctx context.Context) ([]MedicationEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT encounter_id, category, dose, dose_unit, administered_ts, action_category
		FROM medication_event
		ORDER BY encounter_id, administered_ts`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (MedicationEvent, error) {
		var e MedicationEvent
		err := row.Scan(&e.EncounterID, &e.Category, &e.Dose, &e.DoseUnit, &e.AdministeredAt, &e.Action)
		return e, err
	})
}

func (r *repoPG) Devices(ctx context.Context) ([]DeviceEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT encounter_id, device_category, inspired_o2_fraction, flow_rate, recorded_ts
		FROM device_event
		ORDER BY encounter_id, recorded_ts`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (DeviceEvent, error) {
		var e DeviceEvent
		err := row.Scan(&e.EncounterID, &e.DeviceCategory, &e.FiO2, &e.FlowRate, &e.RecordedAt)
		return e, err
	})
}

func (r *repoPG) Assessments(ctx context.Context) ([]AssessmentEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT encounter_id, category, numeric_value, recorded_ts
		FROM assessment_event
		ORDER BY encounter_id, recorded_ts`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (AssessmentEvent, error) {
		var e AssessmentEvent
		err := row.Scan(&e.EncounterID, &e.Category, &e.Value, &e.RecordedAt)
		return e, err
	})
}

func (r *repoPG) TherapyFlags(ctx context.Context, kind string) ([]TherapyFlagEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT encounter_id, recorded_ts
		FROM therapy_event
		WHERE therapy_kind = $1
		ORDER BY encounter_id, recorded_ts`, kind)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (TherapyFlagEvent, error) {
		var e TherapyFlagEvent
		err := row.Scan(&e.EncounterID, &e.RecordedAt)
		return e, err
	})
}
