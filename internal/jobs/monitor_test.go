package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagewatch/internal/models"
)

type fakeLister struct {
	targets []models.Target
	err     error
	limit   int
}

func (f *fakeLister) ListTargetsDue(ctx context.Context, limit int) ([]models.Target, error) {
	f.limit = limit
	return f.targets, f.err
}

type countingRunner struct {
	mu   sync.Mutex
	ran  []uuid.UUID
	fail map[uuid.UUID]bool
}

func (r *countingRunner) RunTarget(ctx context.Context, id uuid.UUID) (*models.RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ran = append(r.ran, id)
	if r.fail[id] {
		return nil, errors.New("boom")
	}
	return &models.RunResult{TargetID: id}, nil
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ran)
}

func TestNewMonitor_InvalidSchedule(t *testing.T) {
	_, err := NewMonitor(&fakeLister{}, &countingRunner{}, "not a schedule", 10, nil)
	assert.ErrorContains(t, err, "invalid monitor schedule")
}

func TestNewMonitor_Schedules(t *testing.T) {
	for _, spec := range []string{"@every 15m", "@hourly", "0 */6 * * *"} {
		_, err := NewMonitor(&fakeLister{}, &countingRunner{}, spec, 10, nil)
		assert.NoError(t, err, spec)
	}
}

func TestMonitor_CheckAll(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	lister := &fakeLister{targets: []models.Target{{ID: a, Name: "a"}, {ID: b, Name: "b"}}}
	runner := &countingRunner{fail: map[uuid.UUID]bool{a: true}}

	m, err := NewMonitor(lister, runner, "@every 1h", 7, nil)
	require.NoError(t, err)

	m.CheckAll(context.Background())

	assert.Equal(t, 7, lister.limit)
	assert.Equal(t, []uuid.UUID{a, b}, runner.ran, "a failing target must not stop the pass")
}

func TestMonitor_CheckAll_ListError(t *testing.T) {
	runner := &countingRunner{}
	m, err := NewMonitor(&fakeLister{err: errors.New("db down")}, runner, "@every 1h", 0, nil)
	require.NoError(t, err)

	m.CheckAll(context.Background())
	assert.Zero(t, runner.count())
}

func TestMonitor_CheckAll_Cancelled(t *testing.T) {
	lister := &fakeLister{targets: []models.Target{{ID: uuid.New()}}}
	runner := &countingRunner{}
	m, err := NewMonitor(lister, runner, "@every 1h", 10, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.CheckAll(ctx)
	assert.Zero(t, runner.count())
}

func TestMonitor_StartRunsImmediately(t *testing.T) {
	lister := &fakeLister{targets: []models.Target{{ID: uuid.New(), Name: "a"}}}
	runner := &countingRunner{}
	m, err := NewMonitor(lister, runner, "@every 1h", 10, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return runner.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}
