// Package clustertest provides in-memory Transport and Codec fakes for
// exercising the cluster package without a real wire protocol, grounded on
// the teacher's own test doubles for Dialer/Connector (pool/connector_test.go,
// dial_test.go): no network I/O, fully scripted responses, safe for
// concurrent use from the Cluster's background goroutines.
package clustertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/kosmosdb/kosmos"
)

// HostScript is one host's scripted behavior: whether dialing it succeeds,
// and the sequence of handshake replies it returns across successive
// ExecuteHandshake calls (index 0 is the initial handshake; subsequent
// calls consume the following entries, sticking to the last one once
// exhausted).
type HostScript struct {
	DialErr   error
	Handshake []*kosmos.HandshakeReply
}

// Transport is a fake kosmos.Transport keyed by host address. Every Open
// call produces a fresh Channel so a test can close one pooled connection
// without affecting others dialed against the same host.
type Transport struct {
	mu      sync.Mutex
	scripts map[string]*HostScript
	opened  []*Channel
}

// NewTransport builds a Transport from a host -> script map.
func NewTransport(scripts map[string]*HostScript) *Transport {
	return &Transport{scripts: scripts}
}

func (t *Transport) Open(ctx context.Context, host kosmos.Host) (kosmos.Channel, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	script, ok := t.scripts[host.String()]
	if !ok {
		return nil, fmt.Errorf("clustertest: no script for host %s", host.String())
	}
	if script.DialErr != nil {
		return nil, script.DialErr
	}

	ch := NewChannel()
	ch.host = host.String()
	t.opened = append(t.opened, ch)
	return ch, nil
}

// Opened returns every Channel this Transport has produced so far, in
// dial order.
func (t *Transport) Opened() []*Channel {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Channel, len(t.opened))
	copy(out, t.opened)
	return out
}

// Codec is a fake kosmos.Codec keyed by host address, consuming the same
// HostScript.Handshake sequence Transport dials against.
type Codec struct {
	mu      sync.Mutex
	scripts map[string]*HostScript
	calls   map[string]int
	// HandshakeErr, if set, makes every handshake against this host fail
	// with the given error instead of consuming the script.
	HandshakeErr map[string]error
}

// NewCodec builds a Codec sharing the same scripts given to a Transport.
func NewCodec(scripts map[string]*HostScript) *Codec {
	return &Codec{
		scripts:      scripts,
		calls:        make(map[string]int),
		HandshakeErr: make(map[string]error),
	}
}

func (c *Codec) ExecuteHandshake(ctx context.Context, ch kosmos.Channel, meta kosmos.ClientMetadata, withClientMetadata bool) (*kosmos.HandshakeReply, error) {
	fc := ch.(*Channel)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err, ok := c.HandshakeErr[fc.host]; ok && err != nil {
		return nil, err
	}

	script, ok := c.scripts[fc.host]
	if !ok || len(script.Handshake) == 0 {
		return nil, fmt.Errorf("clustertest: no handshake script for host %s", fc.host)
	}

	idx := c.calls[fc.host]
	c.calls[fc.host] = idx + 1
	if idx >= len(script.Handshake) {
		idx = len(script.Handshake) - 1
	}
	return script.Handshake[idx], nil
}

// Channel is an in-memory kosmos.Channel. Tests complete commands by
// calling Deliver, and simulate a transport-level close by calling
// CloseNow.
type Channel struct {
	host string

	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
	replyCh chan kosmos.Reply
	written []*kosmos.CommandContext
}

// NewChannel returns an open Channel not yet associated with any host
// (Transport.Open stamps the host before returning it to a caller).
func NewChannel() *Channel {
	return &Channel{
		closeCh: make(chan struct{}),
		replyCh: make(chan kosmos.Reply, 16),
	}
}

func (c *Channel) Write(ctx context.Context, cmd *kosmos.CommandContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("clustertest: write to closed channel")
	}
	c.written = append(c.written, cmd)
	return nil
}

func (c *Channel) Replies() <-chan kosmos.Reply { return c.replyCh }

func (c *Channel) CloseFuture() <-chan struct{} { return c.closeCh }

func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.closeCh)
	return nil
}

// Written returns every command written to this channel so far, in order.
func (c *Channel) Written() []*kosmos.CommandContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*kosmos.CommandContext, len(c.written))
	copy(out, c.written)
	return out
}

// Deliver posts a reply as if the server had answered requestID.
func (c *Channel) Deliver(reply kosmos.Reply) {
	c.replyCh <- reply
}

// CloseNow simulates a transport-level close (connection reset, EOF) from
// the server side, the same as Close but named for test readability at
// call sites that are emulating a server-initiated drop rather than a
// caller-initiated shutdown.
func (c *Channel) CloseNow() {
	c.Close()
}
