package bidentry

import (
	"context"
)

// RunPoller refreshes the status grid on the configured interval until ctx
// is cancelled. A tick is skipped while a mutation is in flight and for one
// interval after it completes; the mutation's own completion handler does
// the refresh in that window. Ticks are scheduled through the controller's
// timer factory.
func (c *Controller) RunPoller(ctx context.Context) {
	for {
		tick := make(chan struct{})
		timer := c.newTimer(c.cfg.PollInterval, func() { close(tick) })

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-c.ctx.Done():
			timer.Stop()
			return
		case <-tick:
			if c.pollAllowed() {
				c.refreshGrid()
			}
		}
	}
}

// pollAllowed reports whether a poll tick should fetch.
func (c *Controller) pollAllowed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mutationInFlight {
		return false
	}
	return c.clk.Now().Sub(c.lastMutation) >= c.cfg.PollInterval
}
