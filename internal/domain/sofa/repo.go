package sofa

import "context"

// Repository loads immutable snapshots of the input relations. The engine
// itself never touches storage; the service materializes a snapshot per
// invocation through this interface.
type Repository interface {
	Windows(ctx context.Context) ([]Window, error)
	Labs(ctx context.Context) ([]LabEvent, error)
	Vitals(ctx context.Context) ([]VitalEvent, error)
	Medications(ctx context.Context) ([]MedicationEvent, error)
	Devices(ctx context.Context) ([]DeviceEvent, error)
	Assessments(ctx context.Context) ([]AssessmentEvent, error)
	TherapyFlags(ctx context.Context, kind string) ([]TherapyFlagEvent, error)
}

// Therapy-flag relation kinds.
const (
	TherapyRenalReplacement = "renal_replacement"
	TherapyExtracorporeal   = "extracorporeal_support"
)
