// Package poller runs a task at a fixed interval until stopped.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is the support views' refresh period.
const DefaultInterval = 3 * time.Second

// Task is one poll. A returned error is logged and the loop continues.
type Task func(ctx context.Context) error

// Observer is told about every tick.
type Observer interface {
	RecordPollTick(name string, err error)
}

// Options configures a Poller.
type Options struct {
	Name     string
	Interval time.Duration
	Clock    Clock
	Logger   *zap.Logger
	Observer Observer
}

// Poller repeats a task without backoff or jitter. Ticks never overlap: the
// next wait starts after the previous task returned.
type Poller struct {
	name     string
	interval time.Duration
	clock    Clock
	logger   *zap.Logger
	observer Observer
	task     Task

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New builds a stopped poller.
func New(task Task, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Poller{
		name:     opts.Name,
		interval: opts.Interval,
		clock:    opts.Clock,
		logger:   opts.Logger.With(zap.String("poller", opts.Name)),
		observer: opts.Observer,
		task:     task,
	}
}

// Start launches the loop. The first tick happens one interval after Start.
// Starting a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	go p.loop(ctx, p.done)
}

// Stop cancels the loop and waits for an in-flight tick to return. It is
// safe to call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	<-done
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.clock.After(p.interval):
		}
		if ctx.Err() != nil {
			return
		}
		err := p.task(ctx)
		if p.observer != nil {
			p.observer.RecordPollTick(p.name, err)
		}
		if err != nil && ctx.Err() == nil {
			p.logger.Warn("poll tick failed", zap.Error(err))
		}
	}
}
