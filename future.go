package kosmos

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Future is the completion slot from spec §3/§9: a one-shot, write-once
// handle for the eventual server reply to a dispatched command. It fires
// exactly once, with either a reply or an error (invariant 3 in
// SPEC_FULL.md §8); a second call to Complete/Fail is a silent no-op.
//
// Grounded on the teacher's own Future (future.go), minus the wire-level
// pack/send/fail methods — those belong to the out-of-scope codec here,
// not to the core.
type Future struct {
	ready chan struct{}
	fired atomic.Bool
	reply Document
	err   error
}

// NewFuture returns an unfired Future.
func NewFuture() *Future {
	return &Future{ready: make(chan struct{})}
}

// NewFailedFuture returns a Future that has already fired with err.
func NewFailedFuture(err error) *Future {
	f := NewFuture()
	f.Fail(err)
	return f
}

// Complete fires the Future with a successful reply. A Future that has
// already fired is left untouched.
func (f *Future) Complete(reply Document) {
	if f.fired.CompareAndSwap(false, true) {
		f.reply = reply
		close(f.ready)
	}
}

// Fail fires the Future with an error. A Future that has already fired is
// left untouched.
func (f *Future) Fail(err error) {
	if f.fired.CompareAndSwap(false, true) {
		f.err = err
		close(f.ready)
	}
}

// Get blocks until the Future fires and returns its reply or error.
func (f *Future) Get() (Document, error) {
	<-f.ready
	return f.reply, f.err
}

// WaitChan returns a channel that closes once the Future fires, for
// callers that want to select on it alongside other events.
func (f *Future) WaitChan() <-chan struct{} {
	return f.ready
}

// CommandContext carries a command payload through the Router and
// Dispatcher to a connection's in-flight queue (spec §3). It is re-used
// verbatim across a retry: the same Future is completed whichever attempt
// ultimately succeeds or exhausts retries, so a caller blocked on Get()
// sees exactly one outcome regardless of how many connections the command
// travels through.
type CommandContext struct {
	RequestID uuid.UUID
	Command   Document
	// Retry marks whether this command may be resubmitted to a fresh
	// connection after the one it was queued on closes mid-flight. The
	// source this core is modeled on sets it true unconditionally at its
	// one dispatch call site (see SPEC_FULL.md §9 open questions); callers
	// above this package may thread false through explicitly.
	Retry bool
	// Writable is the capability this command was originally dispatched
	// with. Carried so a resend after mid-flight eviction routes through
	// the Router with the same requested capability rather than always
	// falling back to the Dispatcher's writable=false starting point.
	Writable bool
	Session  *ClientSession

	future *Future
	// sent marks whether this context has already been written to a
	// connection's channel. Eviction clears it back to false before
	// resubmission so the Dispatcher does not double-count a queued
	// command as already in flight on its new connection.
	sent bool
	// next links this context into its connection's in-flight queue
	// (a singly linked list with a tail pointer, mirroring the teacher's
	// own futureList in connection.go).
	next *CommandContext
}

// NewCommandContext builds a CommandContext with a fresh request id and an
// unfired Future.
func NewCommandContext(command Document, retry, writable bool, session *ClientSession) *CommandContext {
	return &CommandContext{
		RequestID: uuid.New(),
		Command:   command,
		Retry:     retry,
		Writable:  writable,
		Session:   session,
		future:    NewFuture(),
	}
}

// Future returns the completion slot callers wait on.
func (c *CommandContext) Future() *Future {
	return c.future
}

// Complete fires the underlying Future with a reply.
func (c *CommandContext) Complete(reply Document) {
	c.future.Complete(reply)
}

// Fail fires the underlying Future with an error.
func (c *CommandContext) Fail(err error) {
	c.future.Fail(err)
}

// MarkNotSent prepares the context for resend onto a fresh connection
// after the one it was queued on closed mid-flight (spec §4.7 step 3).
func (c *CommandContext) MarkNotSent() {
	c.sent = false
}

// Sent reports whether this context has been written to a connection.
func (c *CommandContext) Sent() bool {
	return c.sent
}

// commandQueue is a connection's in-flight queue: the ordered list of
// command contexts whose replies have not yet arrived. Modeled directly on
// the teacher's futureList (connection.go) — a singly linked list with a
// tail pointer for O(1) append and head-first removal, since the queue is
// only ever walked front-to-back (the codec consumes replies head-first;
// see spec §4.8) or drained wholesale (eviction; see spec §4.7).
type commandQueue struct {
	first *CommandContext
	last  **CommandContext
}

// newCommandQueue returns an empty queue. The tail pointer is left nil and
// set on first append, so that it points into the queue's final location
// rather than into this function's local copy.
func newCommandQueue() commandQueue {
	return commandQueue{}
}

// append adds cmd to the tail of the queue and marks it sent.
func (q *commandQueue) append(cmd *CommandContext) {
	if q.last == nil {
		q.last = &q.first
	}
	cmd.sent = true
	cmd.next = nil
	*q.last = cmd
	q.last = &cmd.next
}

// popFront removes and returns the head of the queue, if any.
func (q *commandQueue) popFront() (*CommandContext, bool) {
	cmd := q.first
	if cmd == nil {
		return nil, false
	}
	q.first = cmd.next
	if q.first == nil {
		q.last = &q.first
	}
	cmd.next = nil
	return cmd, true
}

// drain removes and returns every queued context, clearing the queue. Used
// by eviction (§4.7 step 2): "extract the in-flight queue ... then clear
// it on the connection, so queue ownership transfers and nothing is
// double-failed when the connection is destroyed."
func (q *commandQueue) drain() []*CommandContext {
	var out []*CommandContext
	for cmd := q.first; cmd != nil; {
		next := cmd.next
		cmd.next = nil
		out = append(out, cmd)
		cmd = next
	}
	q.first = nil
	q.last = &q.first
	return out
}
