package cluster

import (
	"context"

	"github.com/kosmosdb/kosmos"
)

// evictionResult distinguishes "this pool entry was already gone" (a
// no-op, spec §4.7 step 1) from "it was removed and its in-flight queue
// was empty" — both produce a nil slice, so a bare slice return can't tell
// them apart.
type evictionResult struct {
	removed bool
	queued  []*kosmos.CommandContext
}

// handleConnectionClosed implements the Pool Eviction and Retry path (spec
// §4.7): locate and remove the pool entry, extract its in-flight queue,
// mark every queued command not-yet-sent, kick a discovery sweep, then
// either resubmit each retryable command or fail it.
func (c *Cluster) handleConnectionClosed(pc *PooledConnection) {
	result := submit(c, func() evictionResult {
		removed := c.pool.RemoveByID(pc.ID)
		if removed == nil {
			return evictionResult{removed: false}
		}
		queued := pc.Conn.DrainQueue()
		pc.Conn.MarkClosed()
		c.registry.ForgetDiscovered(pc.Host)
		c.logger.Log(kosmos.NewConnectionEvictedEvent(pc.Host.String(), len(queued)))
		for _, cmd := range queued {
			cmd.MarkNotSent()
		}
		return evictionResult{removed: true, queued: queued}
	})

	if !result.removed {
		return
	}

	ctx := context.Background()
	c.runDiscoverySweep(ctx)

	for _, cmd := range result.queued {
		if !cmd.Retry {
			cmd.Fail(ErrConnectionClosedMidflight)
			continue
		}
		c.logger.Log(kosmos.NewCommandRetriedEvent(cmd.RequestID))
		c.resendCommand(ctx, cmd)
	}
}

// watchConnection feeds a pooled connection's two async event sources —
// incoming replies and the transport close signal — back onto the loop.
// It is the only goroutine that reads pc.Conn.Channel()'s exported
// channels; everything it learns is posted back via submitAsync so the
// actual queue/pool mutation still happens on the loop goroutine.
func (c *Cluster) watchConnection(pc *PooledConnection) {
	ch := pc.Conn.Channel()
	for {
		select {
		case reply, ok := <-ch.Replies():
			if !ok {
				return
			}
			c.submitAsync(func() {
				cmd, ok := pc.Conn.PopNextInFlight()
				if !ok {
					return
				}
				if cmd.RequestID != reply.RequestID {
					c.logger.Log(kosmos.NewUnexpectedResultIDEvent(pc.Host.String(), cmd.RequestID, reply.RequestID))
				}
				if reply.Err != nil {
					cmd.Fail(reply.Err)
				} else {
					cmd.Complete(reply.Body)
				}
			})
		case <-ch.CloseFuture():
			c.handleConnectionClosed(pc)
			return
		case <-c.done:
			return
		}
	}
}
