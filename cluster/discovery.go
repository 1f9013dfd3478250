package cluster

import (
	"context"
	"sync"
	"time"

	"github.com/kosmosdb/kosmos"
)

// handshakeOutcome pairs a pooled connection with the result of
// re-handshaking it during a discovery sweep.
type handshakeOutcome struct {
	pc    *PooledConnection
	reply *kosmos.HandshakeReply
	err   error
}

// runDiscoverySweep re-handshakes every pooled connection and folds the
// results into the Host Registry (spec §4.6). It snapshots the pool with
// one synchronous round-trip onto the loop, performs every re-handshake
// concurrently on background goroutines (handshakes are I/O and must never
// run on the loop goroutine itself), then applies every outcome atomically
// with a single closure back on the loop — so the Router never observes a
// sweep half-applied.
func (c *Cluster) runDiscoverySweep(ctx context.Context) error {
	snapshot := submit(c, func() []*PooledConnection {
		return c.pool.ScanAll()
	})

	outcomes := make([]handshakeOutcome, len(snapshot))
	var wg sync.WaitGroup
	for i, pc := range snapshot {
		wg.Add(1)
		go func(i int, pc *PooledConnection) {
			defer wg.Done()
			hctx := ctx
			var cancel context.CancelFunc
			if c.settings.HandshakeTimeout > 0 {
				hctx, cancel = context.WithTimeout(ctx, c.settings.HandshakeTimeout)
				defer cancel()
			}
			reply, err := c.settings.Codec.ExecuteHandshake(hctx, pc.Conn.Channel(), kosmos.ClientMetadata{}, false)
			outcomes[i] = handshakeOutcome{pc: pc, reply: reply, err: err}
		}(i, pc)
	}
	wg.Wait()

	submit(c, func() bool {
		rehandshaked, failed := 0, 0
		for _, o := range outcomes {
			if o.err != nil || o.reply == nil {
				c.registry.ForgetDiscovered(o.pc.Host)
				failed++
				c.logger.Log(kosmos.NewHandshakeFailedEvent(o.pc.Host.String(), o.err))
				continue
			}
			o.pc.Conn.SetHandshakeReply(o.reply)
			c.foldHosts(o.reply)
			rehandshaked++
		}
		c.registry.ResetTimeouts()
		c.logger.Log(kosmos.NewDiscoverySweepEvent(rehandshaked, failed))
		return true
	})

	return nil
}

// foldHosts folds a handshake reply's hosts and passives lists into the
// Host Registry's known set, swallowing individual parse failures (spec
// §4.3: "a malformed entry must not poison the sweep"). Must only be called
// from the loop goroutine.
func (c *Cluster) foldHosts(reply *kosmos.HandshakeReply) {
	for _, raw := range append(append([]string{}, reply.Hosts...), reply.Passives...) {
		h, err := kosmos.ParseHost(raw)
		if err != nil {
			continue
		}
		if c.registry.InsertKnown(h) {
			c.logger.Log(kosmos.NewHostDiscoveredEvent(h.String()))
		}
	}
}

// startTicker begins the periodic heartbeat schedule, grounded on the
// teacher's StartDiscovery (pool/discovering.go). Unlike the teacher's
// ticker, the interval here is re-read from the Cluster on every tick
// (via submit) so a SetHeartbeatFrequency call mid-run takes effect without
// restarting the ticker.
func (c *Cluster) startTicker() {
	ctx, cancel := context.WithCancel(context.Background())
	c.discoveryCancel = cancel

	go func() {
		for {
			interval := submit(c, func() time.Duration { return c.heartbeat })
			if interval == 0 {
				return
			}
			t := time.NewTimer(interval)
			select {
			case <-t.C:
				c.runDiscoverySweep(ctx)
			case <-ctx.Done():
				t.Stop()
				return
			case <-c.done:
				t.Stop()
				return
			}
		}
	}()
}
