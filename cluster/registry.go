// Package cluster implements the cluster-coordination core: the Host
// Registry, Connection Pool, Connection Factory, Discovery Loop, Router,
// and Command Dispatcher described in SPEC_FULL.md, built on the
// connection-level primitives in the parent kosmos package the way the
// teacher's pool package builds on its root connection package.
package cluster

import "github.com/kosmosdb/kosmos"

// Registry tracks the three disjoint host views from spec §3: known,
// discovered, and timed-out. Its invariants — discovered ⊆ known,
// timed-out ⊆ known, discovered ∩ timed-out = ∅ — are maintained by
// construction: every mutator either adds to known first or only removes.
//
// known is kept as an insertion-ordered slice alongside a membership set,
// mirroring the teacher's roundRobinStrategy (slice + indexByAddr map) in
// pool/round_robin.go, so that NextCandidate is deterministic given
// registry state (spec §4.1: "Selection order among candidates is
// unspecified but must be deterministic ... for testability").
type Registry struct {
	known    []kosmos.Host
	knownSet map[kosmos.Host]struct{}

	discovered map[kosmos.Host]struct{}
	timedOut   map[kosmos.Host]struct{}
}

// NewRegistry seeds the registry's known set from seed hosts.
func NewRegistry(seed []kosmos.Host) *Registry {
	r := &Registry{
		knownSet:   make(map[kosmos.Host]struct{}, len(seed)),
		discovered: make(map[kosmos.Host]struct{}),
		timedOut:   make(map[kosmos.Host]struct{}),
	}
	for _, h := range seed {
		r.InsertKnown(h)
	}
	return r
}

// InsertKnown adds host to known. Idempotent; reports whether host was
// newly added.
func (r *Registry) InsertKnown(host kosmos.Host) bool {
	if _, ok := r.knownSet[host]; ok {
		return false
	}
	r.knownSet[host] = struct{}{}
	r.known = append(r.known, host)
	return true
}

// MarkDiscovered records that a pooled connection now exists for host,
// also inserting it into known (spec §4.1).
func (r *Registry) MarkDiscovered(host kosmos.Host) {
	r.InsertKnown(host)
	r.discovered[host] = struct{}{}
	delete(r.timedOut, host)
}

// ForgetDiscovered removes host from discovered without marking it
// timed-out. Used when a pooled connection for host is evicted but the
// reason isn't a failed connect attempt (spec §4.6 step 3, §4.5 step 1).
func (r *Registry) ForgetDiscovered(host kosmos.Host) {
	delete(r.discovered, host)
}

// MarkTimedOut removes host from discovered and adds it to timed-out
// (spec §4.1).
func (r *Registry) MarkTimedOut(host kosmos.Host) {
	r.InsertKnown(host)
	delete(r.discovered, host)
	r.timedOut[host] = struct{}{}
}

// ResetTimeouts empties timed-out, so the next discovery sweep retries
// every previously failed host (spec §4.1, invariant 6 in SPEC_FULL.md §8).
func (r *Registry) ResetTimeouts() {
	r.timedOut = make(map[kosmos.Host]struct{})
}

// NextCandidate returns a host in known but neither discovered nor
// timed-out, or false if none remain. Selection is deterministic: the
// first such host in known's insertion order.
func (r *Registry) NextCandidate() (kosmos.Host, bool) {
	for _, h := range r.known {
		if _, d := r.discovered[h]; d {
			continue
		}
		if _, t := r.timedOut[h]; t {
			continue
		}
		return h, true
	}
	return kosmos.Host{}, false
}

// Known returns a snapshot of the known set in insertion order.
func (r *Registry) Known() []kosmos.Host {
	out := make([]kosmos.Host, len(r.known))
	copy(out, r.known)
	return out
}

// Discovered returns a snapshot of the discovered set.
func (r *Registry) Discovered() []kosmos.Host {
	out := make([]kosmos.Host, 0, len(r.discovered))
	for h := range r.discovered {
		out = append(out, h)
	}
	return out
}

// TimedOut returns a snapshot of the timed-out set.
func (r *Registry) TimedOut() []kosmos.Host {
	out := make([]kosmos.Host, 0, len(r.timedOut))
	for h := range r.timedOut {
		out = append(out, h)
	}
	return out
}
