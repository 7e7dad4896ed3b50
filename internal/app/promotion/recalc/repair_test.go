package recalc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/fakes"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/metrics"
)

func failed(id, origin string, full bool) JobError {
	return JobError{
		Job: contracts.RecalcJob{ID: id, Origin: origin, Full: full},
		Err: errors.New("spanner unavailable"),
	}
}

func TestRepairer_SchedulesFullRunOncePerCooldown(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(now)
	sched := &fakes.Scheduler{}
	m := metrics.NewRegistry()
	r := NewRepairer(nil, sched, clk, time.Minute, m, zap.NewNop())

	assert.True(t, r.Handle(ctx, failed("j1", contracts.OriginUpdate, false)))
	assert.False(t, r.Handle(ctx, failed("j2", contracts.OriginCreate, false)), "within cooldown")

	clk.Advance(time.Minute)
	assert.True(t, r.Handle(ctx, failed("j3", contracts.OriginDelete, false)))

	require.Len(t, sched.Jobs, 2)
	for _, job := range sched.Jobs {
		assert.True(t, job.Full)
		assert.Equal(t, contracts.OriginRepair, job.Origin)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RepairsScheduled))
}

func TestRepairer_IgnoresFailedFullRuns(t *testing.T) {
	sched := &fakes.Scheduler{}
	r := NewRepairer(nil, sched, clock.NewMockClock(now), time.Minute, metrics.NewRegistry(), zap.NewNop())

	assert.False(t, r.Handle(context.Background(), failed("j1", contracts.OriginRepair, true)))
	assert.Empty(t, sched.Jobs)
}

func TestRepairer_QueueFullDoesNotStartCooldown(t *testing.T) {
	ctx := context.Background()
	sched := &fakes.Scheduler{Err: contracts.ErrQueueFull}
	m := metrics.NewRegistry()
	r := NewRepairer(nil, sched, clock.NewMockClock(now), time.Minute, m, zap.NewNop())

	assert.False(t, r.Handle(ctx, failed("j1", contracts.OriginUpdate, false)))

	sched.Err = nil
	assert.True(t, r.Handle(ctx, failed("j2", contracts.OriginUpdate, false)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RepairsScheduled))
}

func TestRepairer_RunDrainsWorkerErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan JobError, 1)
	sched := &fakes.Scheduler{}
	r := NewRepairer(errs, sched, clock.NewMockClock(now), time.Minute, metrics.NewRegistry(), zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	errs <- failed("j1", contracts.OriginCreate, false)
	require.Eventually(t, func() bool { return sched.Len() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("repairer did not stop")
	}
}
