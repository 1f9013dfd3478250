package kosmos_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosmosdb/kosmos"
)

func TestParseHost(t *testing.T) {
	h, err := kosmos.ParseHost("a:27017")
	require.NoError(t, err)
	assert.Equal(t, kosmos.Host{Address: "a", Port: "27017"}, h)
	assert.Equal(t, "a:27017", h.String())
	assert.False(t, h.IsZero())
}

func TestParseHost_Malformed(t *testing.T) {
	for _, s := range []string{"", "noport", ":1234", "host:"} {
		_, err := kosmos.ParseHost(s)
		assert.Error(t, err, s)
	}
}

func TestHost_IsZero(t *testing.T) {
	assert.True(t, kosmos.Host{}.IsZero())
}
