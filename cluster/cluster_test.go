package cluster

import (
	"context"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosmosdb/kosmos"
	"github.com/kosmosdb/kosmos/cluster/clustertest"
)

func settingsFor(scripts map[string]*clustertest.HostScript, hosts ...string) (ConnectionSettings, *clustertest.Transport, *clustertest.Codec) {
	transport := clustertest.NewTransport(scripts)
	codec := clustertest.NewCodec(scripts)
	return ConnectionSettings{
		Hosts:              hosts,
		Transport:          transport,
		Codec:              codec,
		Logger:             kosmos.NoopLogger{},
		HeartbeatFrequency: time.Hour, // keep the ticker out of the way of assertions
	}, transport, codec
}

func waitFuture(t *testing.T, f *kosmos.Future, timeout time.Duration) (kosmos.Document, error) {
	t.Helper()
	select {
	case <-f.WaitChan():
		return f.Get()
	case <-time.After(timeout):
		t.Fatal("future never completed")
		return nil, nil
	}
}

// Scenario A — empty seed.
func TestConnect_EmptySeed(t *testing.T) {
	defer leaktest.Check(t)()

	settings, _, _ := settingsFor(nil)

	c, err := Connect(context.Background(), settings)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrNoHostSpecified)
}

// Scenario B — single writable primary.
func TestConnect_SingleWritablePrimary(t *testing.T) {
	defer leaktest.Check(t)()

	scripts := map[string]*clustertest.HostScript{
		"a:27017": {Handshake: []*kosmos.HandshakeReply{
			{IsMaster: true, ReadOnly: false, Hosts: []string{"a:27017"}},
		}},
	}
	settings, transport, _ := settingsFor(scripts, "a:27017")

	c, err := Connect(context.Background(), settings)
	require.NoError(t, err)
	defer c.Close()

	future := c.Send(kosmos.Document{"ping": true}, nil)

	var ch *clustertest.Channel
	require.Eventually(t, func() bool {
		opened := transport.Opened()
		if len(opened) != 1 || len(opened[0].Written()) == 0 {
			return false
		}
		ch = opened[0]
		return true
	}, time.Second, time.Millisecond)

	ch.Deliver(kosmos.Reply{RequestID: ch.Written()[0].RequestID, Body: kosmos.Document{"ok": true}})

	reply, err := waitFuture(t, future, time.Second)
	require.NoError(t, err)
	assert.Equal(t, true, reply["ok"])

	assert.Equal(t, 1, submit(c, func() int { return c.pool.Len() }))
	known := submit(c, func() []kosmos.Host { return c.registry.Known() })
	discovered := submit(c, func() []kosmos.Host { return c.registry.Discovered() })
	assert.Equal(t, known, discovered)
}

// Scenario C — discovery expansion.
func TestDiscovery_Expansion(t *testing.T) {
	defer leaktest.Check(t)()

	scripts := map[string]*clustertest.HostScript{
		"a:27017": {Handshake: []*kosmos.HandshakeReply{
			{IsMaster: true, Hosts: []string{"a:27017", "b:27017"}, Passives: []string{"c:27017"}},
		}},
		"b:27017": {Handshake: []*kosmos.HandshakeReply{{IsMaster: false}}},
		"c:27017": {Handshake: []*kosmos.HandshakeReply{{IsMaster: false}}},
	}
	settings, _, _ := settingsFor(scripts, "a:27017")

	c, err := Connect(context.Background(), settings)
	require.NoError(t, err)
	defer c.Close()

	known := submit(c, func() []kosmos.Host { return c.registry.Known() })
	assert.Len(t, known, 3)

	discovered := submit(c, func() []kosmos.Host { return c.registry.Discovered() })
	assert.Equal(t, []kosmos.Host{{Address: "a", Port: "27017"}}, discovered)
}

// Scenario E — all hosts down.
func TestGetConnection_AllHostsDown(t *testing.T) {
	defer leaktest.Check(t)()

	dialErr := &dialFailure{}
	scripts := map[string]*clustertest.HostScript{
		"a:27017": {DialErr: dialErr},
		"b:27017": {DialErr: dialErr},
	}
	settings, _, _ := settingsFor(scripts, "a:27017", "b:27017")

	c, err := Connect(context.Background(), settings)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.getConnection(context.Background(), true)
	assert.ErrorIs(t, err, ErrNoAvailableHosts)

	timedOut := submit(c, func() []kosmos.Host { return c.registry.TimedOut() })
	assert.Len(t, timedOut, 0, "a sweep at the end of getConnection resets timed-out")
}

type dialFailure struct{}

func (e *dialFailure) Error() string { return "clustertest: dial failed" }

// Scenario F — read-only command on secondary.
func TestGetConnection_ReadOnlySecondary(t *testing.T) {
	defer leaktest.Check(t)()

	scripts := map[string]*clustertest.HostScript{
		"s:27017": {Handshake: []*kosmos.HandshakeReply{{IsMaster: false, ReadOnly: true}}},
	}
	settings, _, _ := settingsFor(scripts, "s:27017")
	settings.ReadableSecondary = true

	c, err := Connect(context.Background(), settings)
	require.NoError(t, err)
	defer c.Close()

	conn, err := c.getConnection(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, conn.Handshake().IsMaster)

	_, err = c.getConnection(context.Background(), true)
	assert.ErrorIs(t, err, ErrNoAvailableHosts)
}

// Scenario D — fail-over with retry: two writes land on the primary, the
// primary's channel drops, and both are re-dispatched; once rediscovery
// promotes the secondary, both land there and complete.
func TestDispatch_FailoverWithRetry(t *testing.T) {
	defer leaktest.Check(t)()

	primary := &kosmos.HandshakeReply{IsMaster: true}
	secondary := &kosmos.HandshakeReply{IsMaster: false}
	promoted := &kosmos.HandshakeReply{IsMaster: true}

	scripts := map[string]*clustertest.HostScript{
		"p:27017": {Handshake: []*kosmos.HandshakeReply{primary}},
		// Consumed in order: connect's own seed dial, connect's first
		// discovery sweep, and the sweep the eviction path kicks once p
		// drops — promotion lands on the third handshake, not sooner.
		"s:27017": {Handshake: []*kosmos.HandshakeReply{secondary, secondary, promoted}},
	}
	settings, transport, _ := settingsFor(scripts, "p:27017", "s:27017")

	c, err := Connect(context.Background(), settings)
	require.NoError(t, err)
	defer c.Close()

	pHost := kosmos.Host{Address: "p", Port: "27017"}
	pc := submit(c, func() *PooledConnection {
		return c.pool.FindFirst(func(e *PooledConnection) bool { return e.Host == pHost })
	})
	require.NotNil(t, pc, "Connect dials every seed host up front")

	primaryChannel := pc.Conn.Channel().(*clustertest.Channel)

	f1 := c.Send(kosmos.Document{"op": "write1"}, nil)
	f2 := c.Send(kosmos.Document{"op": "write2"}, nil)

	require.Eventually(t, func() bool {
		return len(primaryChannel.Written()) == 2
	}, time.Second, time.Millisecond)

	primaryChannel.CloseNow()

	var secondaryChannel *clustertest.Channel
	require.Eventually(t, func() bool {
		for _, ch := range transport.Opened() {
			if ch != primaryChannel && len(ch.Written()) == 2 {
				secondaryChannel = ch
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)

	for _, cmd := range secondaryChannel.Written() {
		secondaryChannel.Deliver(kosmos.Reply{RequestID: cmd.RequestID, Body: kosmos.Document{"ok": true}})
	}

	reply1, err1 := waitFuture(t, f1, time.Second)
	reply2, err2 := waitFuture(t, f2, time.Second)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, true, reply1["ok"])
	assert.Equal(t, true, reply2["ok"])
}
