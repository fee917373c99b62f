package cleanup

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Expirer closes interview sessions that have been idle past their TTL
type Expirer interface {
	ExpireIdle(ctx context.Context) (int, error)
}

// Cleaner periodically expires idle interview sessions
type Cleaner struct {
	expirer  Expirer
	interval time.Duration
	done     sync.WaitGroup
}

// NewCleaner creates a new cleanup worker
func NewCleaner(expirer Expirer, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Cleaner{
		expirer:  expirer,
		interval: interval,
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	c.done.Add(1)
	go c.run(ctx)
}

// Wait blocks until the worker has stopped
func (c *Cleaner) Wait() {
	c.done.Wait()
}

func (c *Cleaner) run(ctx context.Context) {
	defer c.done.Done()
	slog.Info("cleanup worker started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Run immediately on start
	c.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *Cleaner) cleanup(ctx context.Context) {
	slog.Debug("running cleanup cycle")

	closed, err := c.expirer.ExpireIdle(ctx)
	if err != nil {
		slog.Error("failed to expire idle interviews", "error", err)
		return
	}

	if closed == 0 {
		slog.Debug("no idle interviews found")
		return
	}

	slog.Info("expired idle interviews", "count", closed)
}
