package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/grievance-service/internal/repository"
)

// stubGrievanceRepo implements only the sweeper's entry point; everything
// else panics through the embedded nil interface.
type stubGrievanceRepo struct {
	repository.GrievanceRepository
	gotBefore     time.Time
	gotResolvedBy string
	count         int64
	err           error
}

func (s *stubGrievanceRepo) ResolveStaleVerifications(_ context.Context, before time.Time, resolvedBy string) (int64, error) {
	s.gotBefore = before
	s.gotResolvedBy = resolvedBy
	return s.count, s.err
}

func TestSweepUsesWindowCutoffAndSystemResolver(t *testing.T) {
	repo := &stubGrievanceRepo{count: 2}
	sweeper := NewVerificationSweeper(repo, 36*time.Hour, time.Minute, nil)

	count, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), count)
	assert.Equal(t, "system", repo.gotResolvedBy)
	assert.WithinDuration(t, time.Now().Add(-36*time.Hour), repo.gotBefore, time.Minute)
}

func TestSweepPropagatesError(t *testing.T) {
	repo := &stubGrievanceRepo{err: errors.New("db down")}
	sweeper := NewVerificationSweeper(repo, 36*time.Hour, time.Minute, nil)

	_, err := sweeper.Sweep(context.Background())
	assert.Error(t, err)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := &stubGrievanceRepo{}
	sweeper := NewVerificationSweeper(repo, 36*time.Hour, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}
