package support

import (
	"context"
	"sync"
)

type entry struct {
	view  *View
	refs  int
	ready chan struct{}
	err   error
}

// Registry shares one mounted view per key (browser session and principal
// kind) between the stream and the action requests of that browser.
type Registry struct {
	mu    sync.Mutex
	views map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{views: make(map[string]*entry)}
}

// Acquire returns the view for key, building and mounting it with build on
// first use. Concurrent callers for the same key wait for that mount and
// share its error. The caller must call release exactly once; the last
// release unmounts the view.
func (r *Registry) Acquire(ctx context.Context, key string, build func() *View) (*View, func(), error) {
	r.mu.Lock()
	e, ok := r.views[key]
	if ok {
		e.refs++
		r.mu.Unlock()
		release := r.releaser(key, e)
		select {
		case <-e.ready:
		case <-ctx.Done():
			release()
			return nil, nil, ctx.Err()
		}
		if e.err != nil {
			return nil, nil, e.err
		}
		return e.view, release, nil
	}
	e = &entry{view: build(), refs: 1, ready: make(chan struct{})}
	r.views[key] = e
	r.mu.Unlock()

	err := e.view.Mount(ctx)
	r.mu.Lock()
	if err != nil {
		e.err = err
		if r.views[key] == e {
			delete(r.views, key)
		}
	}
	close(e.ready)
	r.mu.Unlock()
	if err != nil {
		e.view.Unmount()
		return nil, nil, err
	}
	return e.view, r.releaser(key, e), nil
}

// Len returns the number of live views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Close unmounts every view.
func (r *Registry) Close() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*entry)
	r.mu.Unlock()
	for _, e := range views {
		e.view.Unmount()
	}
}

func (r *Registry) releaser(key string, e *entry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			e.refs--
			last := e.refs == 0
			if last && r.views[key] == e {
				delete(r.views, key)
			}
			r.mu.Unlock()
			if last {
				e.view.Unmount()
			}
		})
	}
}
