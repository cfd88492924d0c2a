package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campus-ops/grievance-service/internal/repository"
)

// VerificationSweeper auto-accepts resolutions the submitter never acted on.
// Grievances sitting in Verification longer than the window are finalized as
// Resolved with resolved_by = "system".
type VerificationSweeper struct {
	grievances repository.GrievanceRepository
	window     time.Duration
	interval   time.Duration
	logger     *zap.Logger
}

// NewVerificationSweeper constructs the sweeper.
func NewVerificationSweeper(grievances repository.GrievanceRepository, window, interval time.Duration, logger *zap.Logger) *VerificationSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationSweeper{
		grievances: grievances,
		window:     window,
		interval:   interval,
		logger:     logger,
	}
}

// Run sweeps on a ticker until ctx is cancelled. One immediate sweep happens
// on start so a restart never extends a student's window.
func (s *VerificationSweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("verification sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Sweep runs one pass and returns the number of grievances finalized.
func (s *VerificationSweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.window)
	return s.grievances.ResolveStaleVerifications(ctx, cutoff, "system")
}

func (s *VerificationSweeper) sweep(ctx context.Context) {
	count, err := s.Sweep(ctx)
	if err != nil {
		s.logger.Error("verification sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		s.logger.Info("auto-accepted stale verifications", zap.Int64("count", count))
	}
}
