package kosmos

// Connection owns a transport Channel, the latest handshake reply seen for
// it (the Handshake Tracker, spec §4.1), the cluster-wide readable-secondary
// flag mirrored per-connection, a closed flag, and its in-flight queue.
//
// All of a Connection's fields are mutated only from the Cluster's single
// coordinating goroutine (spec §5's single-threaded invariant, realized in
// Go as an actor loop — see cluster.Cluster); nothing here takes a lock.
// A Channel's own goroutines (its reply/close watchers) only ever read the
// immutable channel field and post events back onto that loop.
type Connection struct {
	channel Channel
	reply   *HandshakeReply
	queue   commandQueue

	readableSecondary bool
	closed            bool
}

// NewConnection wraps an already-handshaked Channel. readableSecondary is
// the cluster setting in effect at the moment the connection was opened
// (spec §4.2: "on success applies current cluster settings").
func NewConnection(ch Channel, initial *HandshakeReply, readableSecondary bool) *Connection {
	return &Connection{
		channel:           ch,
		reply:             initial,
		queue:             newCommandQueue(),
		readableSecondary: readableSecondary,
	}
}

// Channel returns the underlying transport.
func (c *Connection) Channel() Channel {
	return c.channel
}

// Handshake returns the latest handshake reply, or nil if the connection
// was constructed without one (the Factory constructs connections only
// after a successful initial handshake, so pooled connections always have
// a reply).
func (c *Connection) Handshake() *HandshakeReply {
	return c.reply
}

// SetHandshakeReply supersedes the stored reply. Spec §4.3: "superseding
// the prior reply atomically from the point of view of the Router" — true
// here because both the update and every Router scan run on the same
// goroutine, so no reader ever observes a partial update.
func (c *Connection) SetHandshakeReply(reply *HandshakeReply) {
	c.reply = reply
}

// ReadableSecondary reports the per-connection mirror of the cluster-wide
// setting (spec §3).
func (c *Connection) ReadableSecondary() bool {
	return c.readableSecondary
}

// SetReadableSecondary mirrors a cluster-wide setting change (spec §5:
// "Mutating the readable-secondary flag cascades to every pooled
// connection").
func (c *Connection) SetReadableSecondary(v bool) {
	c.readableSecondary = v
}

// Closed reports whether this connection has been marked closed.
func (c *Connection) Closed() bool {
	return c.closed
}

// MarkClosed flags the connection closed without touching its queue;
// queue draining is the eviction path's job (spec §4.7), since the queue
// must transfer ownership exactly once regardless of whether the close was
// noticed by the Router's scan or by the Channel's own close watcher.
func (c *Connection) MarkClosed() {
	c.closed = true
}

// Capable reports whether this connection currently satisfies a routing
// request for a writable (or merely readable) connection.
func (c *Connection) Capable(writable bool) bool {
	if c.closed || c.reply == nil {
		return false
	}
	return c.reply.Capable(writable, c.readableSecondary)
}

// EnqueueCommand appends cmd to the in-flight queue and marks it sent.
func (c *Connection) EnqueueCommand(cmd *CommandContext) {
	c.queue.append(cmd)
}

// PopNextInFlight removes and returns the head of the in-flight queue, for
// the codec's reader loop to complete as replies arrive (spec §4.8: "the
// codec consumes it head-first on each reply").
func (c *Connection) PopNextInFlight() (*CommandContext, bool) {
	return c.queue.popFront()
}

// DrainQueue extracts and clears the entire in-flight queue (spec §4.7
// step 2), transferring ownership to the caller (the eviction path).
func (c *Connection) DrainQueue() []*CommandContext {
	return c.queue.drain()
}
