package sha256_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sha256hash "github.com/haianibrahim/tiktok-scraper/internal/hash/sha256"
)

func TestHashIsDeterministic(t *testing.T) {
	t.Parallel()

	h := sha256hash.New()
	a, err := h.Hash([]byte("https://www.tiktok.com/@u/video/1"))
	require.NoError(t, err)
	b, err := h.Hash([]byte("https://www.tiktok.com/@u/video/1"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "hex-encoded sha256")
}

func TestHashKnownValue(t *testing.T) {
	t.Parallel()

	h := sha256hash.New()
	got, err := h.Hash([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", got)
}

func TestHashDistinctInputs(t *testing.T) {
	t.Parallel()

	h := sha256hash.New()
	a, _ := h.Hash([]byte("u1"))
	b, _ := h.Hash([]byte("u1/"))
	assert.NotEqual(t, a, b)
}
