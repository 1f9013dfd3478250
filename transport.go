package kosmos

import (
	"context"

	"github.com/google/uuid"
)

// Reply is a server reply frame matched back to the CommandContext that
// requested it. Delivering Replies is the wire-protocol codec's job (out
// of scope here, see package doc); Channel only needs a place to surface
// them so the core can pop its in-flight queue head-first (spec §4.8).
type Reply struct {
	RequestID uuid.UUID
	Body      Document
	Err       error
}

// Channel is a live transport to a single host. It is produced by
// Transport.Open and is the thing a Connection wraps.
//
// External collaborators (the codec's reader loop) must post replies onto
// Replies() and signal CloseFuture() exactly once; the core posts those
// events back onto its own single coordinating goroutine (spec §5).
type Channel interface {
	// Write sends cmd's command payload. It does not wait for a reply;
	// the reply (or the absence of one, on close) arrives via Replies or
	// CloseFuture.
	Write(ctx context.Context, cmd *CommandContext) error
	// Replies is the channel replies arrive on, matched FIFO to the
	// connection's in-flight queue.
	Replies() <-chan Reply
	// CloseFuture closes exactly once, when the channel's transport-level
	// connection is gone (EOF, reset, or explicit Close).
	CloseFuture() <-chan struct{}
	// Close tears the channel down. Idempotent.
	Close() error
}

// Transport opens a Channel to a host. It is the out-of-scope collaborator
// that owns the actual network dial; the Connection Factory (cluster
// package) wraps it with handshake and retry policy.
type Transport interface {
	Open(ctx context.Context, host Host) (Channel, error)
}

// Codec executes the handshake exchange against an already-open Channel
// and returns the server's reply. It is an out-of-scope collaborator: the
// core treats the handshake body as opaque bytes on the wire and only
// consumes the typed HandshakeReply this method returns.
//
// withClientMetadata is true only for the very first handshake on a fresh
// connection (spec §4.2); re-handshakes issued by the Discovery Loop pass
// false (spec §4.6 step 1).
type Codec interface {
	ExecuteHandshake(ctx context.Context, ch Channel, meta ClientMetadata, withClientMetadata bool) (*HandshakeReply, error)
}
