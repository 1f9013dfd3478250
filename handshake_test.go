package kosmos_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kosmosdb/kosmos"
)

func TestHandshakeReply_Capable(t *testing.T) {
	primary := &kosmos.HandshakeReply{IsMaster: true, ReadOnly: false}
	secondary := &kosmos.HandshakeReply{IsMaster: false, ReadOnly: true}

	assert.True(t, primary.Capable(true, false))
	assert.True(t, primary.Capable(false, false))

	assert.False(t, secondary.Capable(true, false))
	assert.False(t, secondary.Capable(false, false))
	assert.True(t, secondary.Capable(false, true), "readableSecondary opens reads to a secondary")
	assert.False(t, secondary.Capable(true, true), "readableSecondary never opens writes")
}

func TestHandshakeReply_NilIsNeverCapable(t *testing.T) {
	var r *kosmos.HandshakeReply
	assert.False(t, r.Capable(false, true))
}
