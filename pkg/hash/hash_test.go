package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumRoundTrips(t *testing.T) {
	h := Sum([]byte("module bytes"))
	assert.False(t, h.Zero())

	parsed, err := ParseHash(h.Hex())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
}

func TestSumIsDeterministic(t *testing.T) {
	a := Sum([]byte("same input"))
	b := Sum([]byte("same input"))
	assert.Equal(t, a, b)
}

func TestParseHashRejectsBadInput(t *testing.T) {
	_, err := ParseHash("not-hex")
	assert.Error(t, err)

	_, err = ParseHash("abcd")
	assert.Error(t, err)
}

func TestZeroHash(t *testing.T) {
	var h Hash
	assert.True(t, h.Zero())
}
