package cluster

import (
	"github.com/google/uuid"
	"github.com/kosmosdb/kosmos"
)

// PooledConnection pairs a host with a live connection under a stable
// identity distinct from the host itself, since a host may have many
// entries over its lifetime across reconnects (spec §3). The identity is
// minted with google/uuid at Pool.Append time, grounded on the teacher's
// own use of google/uuid for connection-scoped identifiers (stream ids) in
// stream.go.
type PooledConnection struct {
	ID   string
	Host kosmos.Host
	Conn *kosmos.Connection
}

// Pool is the ordered collection of live pooled connections described in
// spec §4.4: append, remove-by-identity, find-first, scan-all, with
// insertion order preserved for the Router's last-match-wins tie-break
// (spec §4.5).
type Pool struct {
	entries []*PooledConnection
	byID    map[string]int
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{byID: make(map[string]int)}
}

// Append adds a new pooled connection and returns its entry.
func (p *Pool) Append(host kosmos.Host, conn *kosmos.Connection) *PooledConnection {
	pc := &PooledConnection{ID: uuid.NewString(), Host: host, Conn: conn}
	p.byID[pc.ID] = len(p.entries)
	p.entries = append(p.entries, pc)
	return pc
}

// RemoveByID removes and returns the entry with the given identity, or nil
// if no such entry exists (a no-op, per spec §4.7 step 1).
func (p *Pool) RemoveByID(id string) *PooledConnection {
	idx, ok := p.byID[id]
	if !ok {
		return nil
	}
	pc := p.entries[idx]
	p.entries = append(p.entries[:idx], p.entries[idx+1:]...)
	delete(p.byID, id)
	for id2, i := range p.byID {
		if i > idx {
			p.byID[id2] = i - 1
		}
	}
	return pc
}

// FindFirst returns the first entry matching pred in insertion order, or
// nil.
func (p *Pool) FindFirst(pred func(*PooledConnection) bool) *PooledConnection {
	for _, pc := range p.entries {
		if pred(pc) {
			return pc
		}
	}
	return nil
}

// ScanAll returns a snapshot of every entry in insertion order.
func (p *Pool) ScanAll() []*PooledConnection {
	out := make([]*PooledConnection, len(p.entries))
	copy(out, p.entries)
	return out
}

// Len reports the number of pooled connections.
func (p *Pool) Len() int {
	return len(p.entries)
}
