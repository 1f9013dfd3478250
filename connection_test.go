package kosmos_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kosmosdb/kosmos"
)

func TestConnection_CapableReflectsHandshake(t *testing.T) {
	conn := kosmos.NewConnection(nil, &kosmos.HandshakeReply{IsMaster: true, ReadOnly: false}, false)
	assert.True(t, conn.Capable(true))
	assert.True(t, conn.Capable(false))

	conn.SetHandshakeReply(&kosmos.HandshakeReply{IsMaster: false, ReadOnly: true})
	assert.False(t, conn.Capable(true))
	assert.False(t, conn.Capable(false), "secondary unreadable by default without readableSecondary")
}

func TestConnection_ReadableSecondaryCascade(t *testing.T) {
	conn := kosmos.NewConnection(nil, &kosmos.HandshakeReply{IsMaster: false, ReadOnly: true}, false)
	assert.False(t, conn.Capable(false))

	conn.SetReadableSecondary(true)
	assert.True(t, conn.Capable(false))
	assert.False(t, conn.Capable(true), "still not writable: ReadOnly=true")
}

func TestConnection_ClosedIsNeverCapable(t *testing.T) {
	conn := kosmos.NewConnection(nil, &kosmos.HandshakeReply{IsMaster: true}, false)
	conn.MarkClosed()
	assert.False(t, conn.Capable(true))
	assert.True(t, conn.Closed())
}

func TestConnection_NoHandshakeYetIsNeverCapable(t *testing.T) {
	conn := kosmos.NewConnection(nil, nil, false)
	assert.False(t, conn.Capable(false))
	assert.Nil(t, conn.Handshake())
}
