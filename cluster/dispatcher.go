package cluster

import (
	"context"

	"github.com/kosmosdb/kosmos"
)

// Send is the Command Dispatcher's public entry point (spec §4.8 / §6's
// "send(command, session?) -> Future<ServerReply>"): the only
// command-dispatch path exposed upward. It returns immediately; the actual
// routing and write happen on a background goroutine so a caller blocked
// dialing a fresh connection never stalls another caller's dispatch.
func (c *Cluster) Send(command kosmos.Document, session *kosmos.ClientSession) *kosmos.Future {
	return c.sendWithSession(command, true, session)
}

// sendWithSession is Send with an explicit retry default, used by the
// Database façade (cluster/session.go) to thread an implicit session
// through without exposing the retry knob publicly (spec §9 open
// questions: the flag defaults to true and nothing above this package is
// observed to ever set it false).
func (c *Cluster) sendWithSession(command kosmos.Document, retry bool, session *kosmos.ClientSession) *kosmos.Future {
	if c.isClosed() {
		return kosmos.NewFailedFuture(ErrClosed)
	}

	cmd := kosmos.NewCommandContext(command, retry, false, session)
	go c.dispatchCommand(context.Background(), cmd)
	return cmd.Future()
}

// dispatchCommand implements spec §4.8 steps 1-4: obtain a connection with
// writable=false, falling back to writable=true once on failure (the
// two-step order preserved verbatim from the source per SPEC_FULL.md §9's
// open question), then enqueue and write. A write failure fails the
// context's slot directly; it does not retry here — retry-on-close is the
// eviction path's job (§4.7), triggered independently by the connection's
// own close watcher once the transport actually goes away.
func (c *Cluster) dispatchCommand(ctx context.Context, cmd *kosmos.CommandContext) {
	conn, err := c.getConnection(ctx, false)
	if err != nil {
		conn, err = c.getConnection(ctx, true)
		if err != nil {
			cmd.Fail(err)
			return
		}
		cmd.Writable = true
	}
	c.writeToConnection(ctx, conn, cmd)
}

// resendCommand re-submits a command that survived a mid-flight eviction
// (spec §4.7 step 4) onto a fresh connection satisfying the same capability
// it was originally dispatched with. Unlike dispatchCommand's public
// two-step fallback, a resend makes exactly one Router attempt: the
// capability it needs is already known from the first dispatch.
func (c *Cluster) resendCommand(ctx context.Context, cmd *kosmos.CommandContext) {
	conn, err := c.getConnection(ctx, cmd.Writable)
	if err != nil {
		cmd.Fail(err)
		return
	}
	c.writeToConnection(ctx, conn, cmd)
}

// writeToConnection appends cmd to conn's in-flight queue and writes it to
// the channel (spec §4.8 steps 2-4). The reply itself is delivered later by
// the connection's watcher goroutine popping the queue head-first as
// replies arrive (see watchConnection in eviction.go).
func (c *Cluster) writeToConnection(ctx context.Context, conn *kosmos.Connection, cmd *kosmos.CommandContext) {
	submit(c, func() bool {
		conn.EnqueueCommand(cmd)
		return true
	})

	if err := conn.Channel().Write(ctx, cmd); err != nil {
		cmd.Fail(err)
	}
}

// isClosed reports whether this cluster has been shut down.
func (c *Cluster) isClosed() bool {
	return submit(c, func() bool { return c.closed })
}
