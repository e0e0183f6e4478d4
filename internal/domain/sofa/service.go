package sofa

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/icuscore/sofa2/internal/platform/units"
)

// Service loads cohort snapshots through a Repository and runs the scoring
// engine over them. The engine stays pure; logging happens here.
type Service struct {
	repo Repository
	cfg  Config
	log  zerolog.Logger
}

func NewService(repo Repository, cfg Config, log zerolog.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

func (s *Service) loadInputs(ctx context.Context) (*Inputs, error) {
	var (
		in  Inputs
		err error
	)
	if in.Windows, err = s.repo.Windows(ctx); err != nil {
		return nil, fmt.Errorf("load windows: %w", err)
	}
	if in.Labs, err = s.repo.Labs(ctx); err != nil {
		return nil, fmt.Errorf("load labs: %w", err)
	}
	if in.Vitals, err = s.repo.Vitals(ctx); err != nil {
		return nil, fmt.Errorf("load vitals: %w", err)
	}
	if in.Medications, err = s.repo.Medications(ctx); err != nil {
		return nil, fmt.Errorf("load medications: %w", err)
	}
	if in.Devices, err = s.repo.Devices(ctx); err != nil {
		return nil, fmt.Errorf("load devices: %w", err)
	}
	if in.Assessments, err = s.repo.Assessments(ctx); err != nil {
		return nil, fmt.Errorf("load assessments: %w", err)
	}
	if in.RenalReplacement, err = s.repo.TherapyFlags(ctx, TherapyRenalReplacement); err != nil {
		return nil, fmt.Errorf("load renal replacement flags: %w", err)
	}
	if in.ExtracorporealSupport, err = s.repo.TherapyFlags(ctx, TherapyExtracorporeal); err != nil {
		return nil, fmt.Errorf("load extracorporeal support flags: %w", err)
	}
	return &in, nil
}

// ScoreCohort scores every persisted window.
func (s *Service) ScoreCohort(ctx context.Context) (*Result, error) {
	in, err := s.loadInputs(ctx)
	if err != nil {
		return nil, err
	}
	run := uuid.New()
	started := time.Now()
	res, err := ScoreCohort(in, s.cfg)
	if err != nil {
		return nil, err
	}
	s.logRun(run, "score", len(in.Windows), len(res.Scores), res.Warnings, time.Since(started))
	return res, nil
}

// ScoreDaily expands every persisted window into 24h days and scores them
// with carry-forward.
func (s *Service) ScoreDaily(ctx context.Context) (*DailyResult, error) {
	in, err := s.loadInputs(ctx)
	if err != nil {
		return nil, err
	}
	run := uuid.New()
	started := time.Now()
	res, err := ScoreDaily(in, s.cfg)
	if err != nil {
		return nil, err
	}
	s.logRun(run, "daily", len(in.Windows), len(res.Scores), res.Warnings, time.Since(started))
	return res, nil
}

func (s *Service) logRun(run uuid.UUID, mode string, windows, rows int, warnings []units.Warning, elapsed time.Duration) {
	s.log.Info().
		Str("run_id", run.String()).
		Str("mode", mode).
		Int("windows", windows).
		Int("rows", rows).
		Int("unit_warnings", len(warnings)).
		Dur("elapsed", elapsed).
		Msg("cohort scored")

	// One warn event per distinct unit string keeps noisy cohorts readable.
	seen := map[string]int{}
	for _, w := range warnings {
		seen[w.Unit+"|"+w.Reason]++
	}
	for key, count := range seen {
		s.log.Warn().
			Str("run_id", run.String()).
			Str("unit", key).
			Int("rows_excluded", count).
			Msg("dose unit not normalized")
	}
}
