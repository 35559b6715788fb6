package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickLog struct {
	mu   sync.Mutex
	errs []error
}

func (l *tickLog) RecordPollTick(_ string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func (l *tickLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errs)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, time.Second, time.Millisecond)
}

func TestPollerTicksAtInterval(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	var runs atomic.Int32
	p := New(func(context.Context) error {
		runs.Add(1)
		return nil
	}, Options{Name: "test", Interval: 3 * time.Second, Clock: clock})

	p.Start(context.Background())
	defer p.Stop()

	clock.BlockUntil(1)
	clock.Advance(2 * time.Second)
	assert.Equal(t, int32(0), runs.Load())

	clock.Advance(time.Second)
	waitFor(t, func() bool { return runs.Load() == 1 })

	clock.BlockUntil(1)
	clock.Advance(3 * time.Second)
	waitFor(t, func() bool { return runs.Load() == 2 })
}

func TestPollerKeepsGoingAfterErrors(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	obs := &tickLog{}
	var runs atomic.Int32
	p := New(func(context.Context) error {
		if runs.Add(1) == 1 {
			return errors.New("backend down")
		}
		return nil
	}, Options{Name: "test", Interval: time.Second, Clock: clock, Observer: obs})

	p.Start(context.Background())
	defer p.Stop()

	for i := 0; i < 2; i++ {
		clock.BlockUntil(1)
		clock.Advance(time.Second)
	}
	waitFor(t, func() bool { return obs.len() == 2 })
	assert.Error(t, obs.errs[0])
	assert.NoError(t, obs.errs[1])
	assert.True(t, p.Running())
}

func TestStopIsIdempotentAndWaitsForTick(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	entered := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	p := New(func(ctx context.Context) error {
		close(entered)
		<-release
		finished.Store(true)
		return ctx.Err()
	}, Options{Interval: time.Second, Clock: clock})

	p.Start(context.Background())
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	<-entered

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned before the in-flight tick finished")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	<-stopped
	assert.True(t, finished.Load())
	assert.False(t, p.Running())

	p.Stop()
}

func TestStartTwiceRunsOneLoop(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	var runs atomic.Int32
	p := New(func(context.Context) error {
		runs.Add(1)
		return nil
	}, Options{Interval: time.Second, Clock: clock})

	p.Start(context.Background())
	p.Start(context.Background())
	defer p.Stop()

	clock.BlockUntil(1)
	clock.Advance(time.Second)
	waitFor(t, func() bool { return runs.Load() == 1 })
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestNewAppliesDefaultInterval(t *testing.T) {
	p := New(func(context.Context) error { return nil }, Options{})
	assert.Equal(t, DefaultInterval, p.interval)
}
