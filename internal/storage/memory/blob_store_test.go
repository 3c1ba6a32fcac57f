package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haianibrahim/tiktok-scraper/internal/storage/memory"
)

func TestPutObjectAndReadBack(t *testing.T) {
	t.Parallel()

	s := memory.NewBlobStore()
	uri, err := s.PutObject(context.Background(), "snapshots/abc.html", "text/html", []byte("<html/>"))
	require.NoError(t, err)
	assert.Equal(t, "memory://snapshots/abc.html", uri)

	data, ok := s.Object("snapshots/abc.html")
	require.True(t, ok)
	assert.Equal(t, []byte("<html/>"), data)

	_, ok = s.Object("missing")
	assert.False(t, ok)
}

func TestPutObjectRequiresPath(t *testing.T) {
	t.Parallel()

	s := memory.NewBlobStore()
	_, err := s.PutObject(context.Background(), "", "text/html", []byte("x"))
	assert.Error(t, err)
}

func TestPutObjectCopiesData(t *testing.T) {
	t.Parallel()

	s := memory.NewBlobStore()
	buf := []byte("original")
	_, err := s.PutObject(context.Background(), "p", "", buf)
	require.NoError(t, err)
	buf[0] = 'X'

	data, ok := s.Object("p")
	require.True(t, ok)
	assert.Equal(t, []byte("original"), data)
}
