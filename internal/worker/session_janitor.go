package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/contentdesk/internal/poller"
)

// Purger deletes expired session rows and reports how many went.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// StartSessionJanitor purges expired sessions every interval until the
// returned stop function is called. A nil purger starts nothing.
func StartSessionJanitor(ctx context.Context, purger Purger, every time.Duration, logger *zap.Logger, observer poller.Observer) func() {
	if purger == nil {
		return func() {}
	}
	p := poller.New(func(ctx context.Context) error {
		n, err := purger.Purge(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("purged expired sessions", zap.Int64("count", n))
		}
		return nil
	}, poller.Options{Name: "session-janitor", Interval: every, Logger: logger, Observer: observer})
	p.Start(ctx)
	return p.Stop
}
