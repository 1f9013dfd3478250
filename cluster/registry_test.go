package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kosmosdb/kosmos"
)

func h(s string) kosmos.Host {
	host, err := kosmos.ParseHost(s)
	if err != nil {
		panic(err)
	}
	return host
}

func TestRegistry_Invariants(t *testing.T) {
	r := NewRegistry([]kosmos.Host{h("a:1")})

	r.MarkDiscovered(h("a:1"))
	assert.Contains(t, r.Known(), h("a:1"))
	assert.Contains(t, r.Discovered(), h("a:1"))

	r.MarkTimedOut(h("a:1"))
	assert.NotContains(t, r.Discovered(), h("a:1"))
	assert.Contains(t, r.TimedOut(), h("a:1"))

	_, ok := r.NextCandidate()
	assert.False(t, ok, "a:1 is timed out, b was never inserted")

	r.InsertKnown(h("b:1"))
	next, ok := r.NextCandidate()
	assert.True(t, ok)
	assert.Equal(t, h("b:1"), next)

	r.ResetTimeouts()
	assert.Empty(t, r.TimedOut())
}

func TestRegistry_MarkDiscoveredInsertsKnown(t *testing.T) {
	r := NewRegistry(nil)
	r.MarkDiscovered(h("x:1"))
	assert.Contains(t, r.Known(), h("x:1"))
}

func TestRegistry_NextCandidateDeterministicOrder(t *testing.T) {
	r := NewRegistry([]kosmos.Host{h("a:1"), h("b:1"), h("c:1")})
	r.MarkDiscovered(h("a:1"))

	next, ok := r.NextCandidate()
	assert.True(t, ok)
	assert.Equal(t, h("b:1"), next)
}
