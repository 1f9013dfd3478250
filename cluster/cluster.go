package cluster

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/kosmosdb/kosmos"
)

// Cluster is the coordination core from SPEC_FULL.md §2: the Host Registry,
// Pool, Connection Factory, Discovery Loop, Router, and Command Dispatcher,
// wired together behind a single actor goroutine.
//
// The source this core is modeled on runs every mutation on a single
// cooperative event-loop thread (spec §5); Go has no equivalent runtime
// primitive, so the loop is realized here as a dedicated goroutine (loop)
// draining closures from commands, grounded on the teacher's own
// channel-driven watcher pattern (pool/connection_pool.go's notify
// channels) generalized into a full actor. External I/O — dialing,
// handshakes — never runs on that goroutine: it would block every other
// caller for the duration, and a closure that both runs on the loop and
// waits for another closure to run on the loop would deadlock. Instead,
// I/O runs on caller or background goroutines and posts its result back
// onto commands as a small closure, via submit.
type Cluster struct {
	settings ConnectionSettings

	registry *Registry
	pool     *Pool
	factory  *Factory
	logger   kosmos.Logger

	heartbeat time.Duration

	commands chan func()
	done     chan struct{}
	closed   bool

	discoveryCancel context.CancelFunc

	wg sync.WaitGroup
}

// Connect builds a Cluster from settings, runs the first discovery sweep
// inline (spec §4.6: "the first discovery sweep runs as part of connect"),
// and only then starts the periodic ticker.
func Connect(ctx context.Context, settings ConnectionSettings) (*Cluster, error) {
	if len(settings.Hosts) == 0 {
		return nil, ErrNoHostSpecified
	}

	seed := make([]kosmos.Host, 0, len(settings.Hosts))
	for _, s := range settings.Hosts {
		h, err := kosmos.ParseHost(s)
		if err != nil {
			continue
		}
		seed = append(seed, h)
	}
	if len(seed) == 0 {
		return nil, ErrNoHostSpecified
	}

	logger := settings.Logger
	if logger == nil {
		logger = kosmos.NewSlogLogger(nil)
	}

	c := &Cluster{
		settings:  settings,
		registry:  NewRegistry(seed),
		pool:      NewPool(),
		factory:   NewFactory(settings.Transport, settings.Codec, settings.AppName, settings.HandshakeTimeout),
		logger:    logger,
		heartbeat: clampHeartbeat(settings.HeartbeatFrequency),
		commands:  make(chan func(), 64),
		done:      make(chan struct{}),
	}

	c.wg.Add(1)
	go c.loop()

	c.connectSeeds(ctx)

	if err := c.runDiscoverySweep(ctx); err != nil {
		c.Close()
		return nil, err
	}

	c.startTicker()

	return c, nil
}

// loop is the actor goroutine. It never dials or handshakes and never
// blocks on anything external; every closure it runs touches in-memory
// state (registry, pool, per-connection fields) and returns immediately, so
// the single-threaded invariant of spec §5 holds without locks. The one
// closure that touches a transport is Close's, which closes each pooled
// connection's Channel.
func (c *Cluster) loop() {
	defer c.wg.Done()
	for {
		select {
		case fn := <-c.commands:
			fn()
		case <-c.done:
			return
		}
	}
}

// submit runs fn on the loop goroutine and returns its result, blocking the
// calling goroutine (never the loop itself) until fn has run. Used for
// quick, synchronous state touches; never for anything that performs I/O or
// that itself waits on the loop, which would deadlock against loop's own
// single-consumer channel.
func submit[T any](c *Cluster, fn func() T) T {
	result := make(chan T, 1)
	select {
	case c.commands <- func() { result <- fn() }:
	case <-c.done:
		var zero T
		return zero
	}
	select {
	case v := <-result:
		return v
	case <-c.done:
		var zero T
		return zero
	}
}

// submitAsync runs fn on the loop goroutine without waiting for it to
// finish, for fire-and-forget state updates from a background goroutine
// that has nothing to wait for.
func (c *Cluster) submitAsync(fn func()) {
	select {
	case c.commands <- fn:
	case <-c.done:
	}
}

// Database returns a thin façade over this Cluster fixed to name, mirroring
// the teacher's ConnectorAdapter over a fixed Mode (pool/connector.go).
func (c *Cluster) Database(name string) *Database {
	return &Database{cluster: c, name: name}
}

// SetHeartbeatFrequency changes the Discovery Loop's tick interval,
// clamping to MinHeartbeatFrequency (spec §4.6, invariant 5 in SPEC_FULL
// §8). Takes effect on the next tick.
func (c *Cluster) SetHeartbeatFrequency(d time.Duration) {
	clamped := clampHeartbeat(d)
	submit(c, func() bool {
		c.heartbeat = clamped
		return true
	})
}

// SetReadableSecondary updates the cluster-wide flag and cascades it to
// every pooled connection (spec §5: "mutating the readable-secondary flag
// cascades to every pooled connection").
func (c *Cluster) SetReadableSecondary(v bool) {
	submit(c, func() bool {
		c.settings.ReadableSecondary = v
		for _, pc := range c.pool.ScanAll() {
			pc.Conn.SetReadableSecondary(v)
		}
		return true
	})
}

// Close shuts the cluster down: stops the ticker, marks the loop closed so
// no further submit/submitAsync calls are accepted, and closes every
// pooled connection's channel while synchronously failing its in-flight
// queue. Doing the eviction synchronously here — rather than relying on
// each connection's own close-watcher goroutine to notice — avoids a race
// against done being closed underneath it (spec §8 invariant 4: every
// queued context must be resolved exactly once, even during shutdown).
func (c *Cluster) Close() error {
	if c.discoveryCancel != nil {
		c.discoveryCancel()
	}

	var result *multierror.Error
	submit(c, func() bool {
		if c.closed {
			return true
		}
		c.closed = true
		for _, pc := range c.pool.ScanAll() {
			queued := pc.Conn.DrainQueue()
			pc.Conn.MarkClosed()
			if err := pc.Conn.Channel().Close(); err != nil {
				result = multierror.Append(result, err)
			}
			for _, cmd := range queued {
				cmd.Fail(ErrConnectionClosedMidflight)
			}
		}
		return true
	})

	close(c.done)
	c.wg.Wait()

	if result == nil {
		return nil
	}
	return result.ErrorOrNil()
}
