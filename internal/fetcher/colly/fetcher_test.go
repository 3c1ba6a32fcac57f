package collyfetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	collyfetcher "github.com/haianibrahim/tiktok-scraper/internal/fetcher/colly"
	"github.com/haianibrahim/tiktok-scraper/internal/scraper"
)

func TestFetchReturnsBodyAndMetadata(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>hello</html>"))
	}))
	defer server.Close()

	f := collyfetcher.New(collyfetcher.Config{})
	resp, err := f.Fetch(context.Background(), scraper.FetchRequest{URL: server.URL})
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []byte("<html>hello</html>"), resp.Body)
	assert.Equal(t, "text/html", resp.Headers.Get("Content-Type"))
	assert.Greater(t, resp.Duration, time.Duration(0))
	assert.Equal(t, collyfetcher.DefaultUserAgent, gotUA)
	assert.Contains(t, gotAccept, "text/html")
}

func TestFetchCustomHeaders(t *testing.T) {
	t.Parallel()

	var gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.Header.Get("Accept-Language")
		_, _ = w.Write([]byte("body"))
	}))
	defer server.Close()

	f := collyfetcher.New(collyfetcher.Config{})
	headers := http.Header{}
	headers.Set("Accept-Language", "de-DE")
	_, err := f.Fetch(context.Background(), scraper.FetchRequest{URL: server.URL, Headers: headers})
	require.NoError(t, err)
	assert.Equal(t, "de-DE", gotLang)
}

func TestFetchEmptyBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := collyfetcher.New(collyfetcher.Config{})
	_, err := f.Fetch(context.Background(), scraper.FetchRequest{URL: server.URL})
	require.Error(t, err)
	assert.Equal(t, scraper.KindEmptyBody, scraper.KindOf(err))
}

func TestFetchServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	f := collyfetcher.New(collyfetcher.Config{})
	_, err := f.Fetch(context.Background(), scraper.FetchRequest{URL: server.URL})
	require.Error(t, err)
	assert.Equal(t, scraper.KindNetwork, scraper.KindOf(err))
}

func TestFetchConnectionRefused(t *testing.T) {
	t.Parallel()

	// Reserve a port and close it so nothing is listening.
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	f := collyfetcher.New(collyfetcher.Config{})
	_, err := f.Fetch(context.Background(), scraper.FetchRequest{URL: url})
	require.Error(t, err)
	assert.Equal(t, scraper.KindNetwork, scraper.KindOf(err))
}

func TestFetchCanceledContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte("late"))
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := collyfetcher.New(collyfetcher.Config{})
	_, err := f.Fetch(ctx, scraper.FetchRequest{URL: server.URL})
	require.Error(t, err)
	assert.Equal(t, scraper.KindNetwork, scraper.KindOf(err))
}
