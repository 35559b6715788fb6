package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingPurger struct {
	calls atomic.Int32
}

func (p *countingPurger) Purge(context.Context) (int64, error) {
	p.calls.Add(1)
	return 2, nil
}

func TestSessionJanitorPurgesPeriodically(t *testing.T) {
	purger := &countingPurger{}
	stop := StartSessionJanitor(context.Background(), purger, 5*time.Millisecond, zap.NewNop(), nil)

	require.Eventually(t, func() bool { return purger.calls.Load() >= 2 }, time.Second, time.Millisecond)
	stop()
	stopped := purger.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, purger.calls.Load())
}

func TestSessionJanitorWithoutPurger(t *testing.T) {
	stop := StartSessionJanitor(context.Background(), nil, time.Millisecond, zap.NewNop(), nil)
	stop()
}
