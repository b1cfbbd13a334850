package worker

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProcessor struct {
	batches    atomic.Int32
	recoveries atomic.Int32
	workFirstN int32
}

func (p *countingProcessor) Name() string { return "testproc" }

func (p *countingProcessor) ProcessBatch(ctx context.Context) (int, error) {
	n := p.batches.Add(1)
	if n <= p.workFirstN {
		return 1, nil
	}
	return 0, nil
}

func (p *countingProcessor) RecoverStale(ctx context.Context) (int64, error) {
	p.recoveries.Add(1)
	return 0, nil
}

func TestRunnerStopsOnCancel(t *testing.T) {
	proc := &countingProcessor{}
	r := Runner{
		Proc:       proc,
		IdleMin:    time.Millisecond,
		IdleMax:    5 * time.Millisecond,
		StaleEvery: time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancel")
	}

	assert.GreaterOrEqual(t, proc.batches.Load(), int32(1))
	assert.Equal(t, int32(1), proc.recoveries.Load(), "stale recovery runs once at boot")
}

func TestRunnerWakeShortCircuitsIdle(t *testing.T) {
	proc := &countingProcessor{}
	wake := make(chan struct{}, 1)
	r := Runner{
		Proc:       proc,
		IdleMin:    time.Hour, // without a wake the second batch would never run
		IdleMax:    time.Hour,
		StaleEvery: time.Hour,
		Wake:       wake,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return proc.batches.Load() >= 1 }, time.Second, time.Millisecond)
	wake <- struct{}{}
	require.Eventually(t, func() bool { return proc.batches.Load() >= 2 }, time.Second, time.Millisecond)

	cancel()
	<-done
}

func TestClaimantFormat(t *testing.T) {
	c := Claimant("convertd")
	assert.True(t, strings.HasPrefix(c, "convertd@"))
	assert.Contains(t, c, ":")
}
