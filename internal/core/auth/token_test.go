package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateURLSafe(t *testing.T) {
	ts := NewTokenSource(32)
	tok, err := ts.Generate()
	require.NoError(t, err)
	assert.Len(t, tok, 43) // 32 bytes, base64url, no padding
	assert.NotContains(t, tok, "+")
	assert.NotContains(t, tok, "/")
	assert.NotContains(t, tok, "=")
}

func TestGenerateUnique(t *testing.T) {
	ts := NewTokenSource(32)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		tok, err := ts.Generate()
		require.NoError(t, err)
		_, dup := seen[tok]
		require.False(t, dup)
		seen[tok] = struct{}{}
	}
}

func TestZeroBytesFallsBack(t *testing.T) {
	ts := NewTokenSource(0)
	assert.Equal(t, 32, ts.Bytes)
}
