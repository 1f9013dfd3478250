package cluster

import (
	"context"

	"github.com/kosmosdb/kosmos"
)

// candidateResult carries NextCandidate's (kosmos.Host, bool) pair across
// submit, which only supports a single return type.
type candidateResult struct {
	host kosmos.Host
	ok   bool
}

// scanResult carries scanPool's dead/match pair across submit, which only
// supports a single return type.
type scanResult struct {
	dead  []*PooledConnection
	match *PooledConnection
}

// getConnection implements the Router from spec §4.5: scan the pool for a
// capable connection (last match wins); on miss, connect a candidate host
// and recheck; on candidate exhaustion, run one discovery sweep and rescan
// once before failing.
func (c *Cluster) getConnection(ctx context.Context, writable bool) (*kosmos.Connection, error) {
	if pc := c.scanPool(writable); pc != nil {
		return pc.Conn, nil
	}

	for {
		next := submit(c, func() candidateResult {
			if c.closed {
				return candidateResult{}
			}
			host, ok := c.registry.NextCandidate()
			return candidateResult{host: host, ok: ok}
		})
		candidate, ok := next.host, next.ok
		if !ok {
			break
		}

		pc, err := c.connectCandidate(ctx, candidate, writable)
		if err != nil {
			submit(c, func() bool {
				c.registry.MarkTimedOut(candidate)
				c.logger.Log(kosmos.NewHostTimedOutEvent(candidate.String(), err))
				return true
			})
			continue
		}
		if pc.Conn.Capable(writable) {
			return pc.Conn, nil
		}
		// Connected, but this particular host doesn't satisfy the
		// requested capability (e.g. turned out to be a secondary when a
		// writable connection was wanted). It stays pooled — discovered —
		// and the loop tries the next candidate.
	}

	if err := c.runDiscoverySweep(ctx); err != nil {
		return nil, err
	}
	if pc := c.scanPool(writable); pc != nil {
		return pc.Conn, nil
	}
	return nil, ErrNoAvailableHosts
}

// scanPool runs the pool scan from spec §4.5 step 1 on the loop goroutine:
// dead entries (closed, or never handshaked) are evicted as encountered;
// the last live entry satisfying writable wins the tie-break.
func (c *Cluster) scanPool(writable bool) *PooledConnection {
	scan := submit(c, func() scanResult {
		var dead []*PooledConnection
		var match *PooledConnection
		for _, pc := range c.pool.ScanAll() {
			if pc.Conn.Closed() || pc.Conn.Handshake() == nil {
				dead = append(dead, pc)
				continue
			}
			if pc.Conn.Capable(writable) {
				match = pc
			}
		}
		return scanResult{dead: dead, match: match}
	})

	for _, pc := range scan.dead {
		c.handleConnectionClosed(pc)
	}
	return scan.match
}

// connectSeeds dials every seed host up front (spec §4.6: the first
// discovery sweep runs as part of connect, which only re-handshakes hosts
// already in the pool — without this step that pool starts empty and the
// sweep has nothing to fold). A seed that fails to dial is marked timed out
// rather than failing Connect itself; it simply becomes a candidate again
// on the next Router scan or ticker sweep.
func (c *Cluster) connectSeeds(ctx context.Context) {
	seeds := submit(c, func() []kosmos.Host { return c.registry.Known() })
	for _, host := range seeds {
		if _, err := c.connectCandidate(ctx, host, false); err != nil {
			submit(c, func() bool {
				c.registry.MarkTimedOut(host)
				c.logger.Log(kosmos.NewHostTimedOutEvent(host.String(), err))
				return true
			})
		}
	}
}

// connectCandidate opens a fresh connection to host (I/O, off the loop) and,
// on success, appends it to the pool and marks it discovered.
func (c *Cluster) connectCandidate(ctx context.Context, host kosmos.Host, writable bool) (*PooledConnection, error) {
	readableSecondary := submit(c, func() bool { return c.settings.ReadableSecondary })

	conn, err := c.factory.Open(ctx, host, readableSecondary)
	if err != nil {
		return nil, err
	}

	pc := submit(c, func() *PooledConnection {
		pc := c.pool.Append(host, conn)
		c.registry.MarkDiscovered(host)
		c.logger.Log(kosmos.NewHostDiscoveredEvent(host.String()))
		c.foldHosts(conn.Handshake())
		return pc
	})
	go c.watchConnection(pc)
	return pc, nil
}
