package coordinator

import (
	"context"
	"time"
)

// RunPeriodicSync starts a loop that forces a full rescan at the given
// interval, as a safety net against watcher events a platform failed to
// deliver (§4.2's debounce-overflow rescan covers bursts; this covers
// silent drops). It runs until ctx is cancelled, mirroring the teacher's
// runPeriodicSync loop but delegating the actual re-walk to ScanFiles
// instead of duplicating the disk-vs-index diff here.
func (c *Coordinator) RunPeriodicSync(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Info("periodic sync started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("periodic sync stopped")
			return
		case <-ticker.C:
			start := c.clock.Monotonic()
			if err := c.ScanFiles(); err != nil {
				c.logger.Warn("periodic sync rescan failed", "error", err)
				continue
			}
			c.logger.Debug("periodic sync rescan complete", "duration", c.clock.Monotonic()-start)
		}
	}
}
