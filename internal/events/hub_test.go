package events_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haianibrahim/tiktok-scraper/internal/events"
)

type captureSink struct {
	mu     sync.Mutex
	events []events.Event
	closed bool
	err    error
}

func (s *captureSink) Consume(_ context.Context, batch []events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, batch...)
	return nil
}

func (s *captureSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureSink) snapshot() ([]events.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.Event, len(s.events))
	copy(out, s.events)
	return out, s.closed
}

func scrapedEvent(id string) events.Event {
	return events.Event{
		Type:    events.TypeScraped,
		TS:      time.Now(),
		URL:     "https://www.tiktok.com/@u/video/" + id,
		VideoID: id,
	}
}

func TestHubDeliversAllEventsOnClose(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := events.NewHub(events.Config{MaxBatchWait: time.Hour}, sink)

	for i := 0; i < 25; i++ {
		hub.Emit(scrapedEvent(fmt.Sprintf("%d", i)))
	}
	require.NoError(t, hub.Close(context.Background()))

	got, closed := sink.snapshot()
	assert.Len(t, got, 25, "close drains buffered events before shutting down")
	assert.True(t, closed)
}

func TestHubFlushesOnBatchSize(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := events.NewHub(events.Config{MaxBatchEvents: 5, MaxBatchWait: time.Hour}, sink)
	defer func() { _ = hub.Close(context.Background()) }()

	for i := 0; i < 5; i++ {
		hub.Emit(scrapedEvent(fmt.Sprintf("%d", i)))
	}

	require.Eventually(t, func() bool {
		got, _ := sink.snapshot()
		return len(got) == 5
	}, 2*time.Second, 10*time.Millisecond, "a full batch flushes without waiting for the timer")
}

func TestHubFlushesOnTimer(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := events.NewHub(events.Config{MaxBatchEvents: 100, MaxBatchWait: 20 * time.Millisecond}, sink)
	defer func() { _ = hub.Close(context.Background()) }()

	hub.Emit(scrapedEvent("1"))

	require.Eventually(t, func() bool {
		got, _ := sink.snapshot()
		return len(got) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestHubDiscardsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := events.NewHub(events.Config{}, sink)

	hub.Emit(events.Event{Type: events.TypeScraped}) // no TS, no URL, no id
	require.NoError(t, hub.Close(context.Background()))

	got, _ := sink.snapshot()
	assert.Empty(t, got)
}

func TestHubIgnoresEmitAfterClose(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := events.NewHub(events.Config{}, sink)
	require.NoError(t, hub.Close(context.Background()))

	hub.Emit(scrapedEvent("1"))
	got, _ := sink.snapshot()
	assert.Empty(t, got)
}

func TestHubSurvivesFailingSink(t *testing.T) {
	t.Parallel()

	bad := &captureSink{err: errors.New("sink down")}
	good := &captureSink{}
	hub := events.NewHub(events.Config{}, bad, good)

	hub.Emit(scrapedEvent("1"))
	require.NoError(t, hub.Close(context.Background()))

	got, _ := good.snapshot()
	assert.Len(t, got, 1, "one failing sink must not starve the others")
}

func TestNilHubIsSafe(t *testing.T) {
	t.Parallel()

	var hub *events.Hub
	hub.Emit(scrapedEvent("1"))
	assert.NoError(t, hub.Close(context.Background()))
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	base := scrapedEvent("1")
	require.NoError(t, base.Validate())

	noTS := base
	noTS.TS = time.Time{}
	assert.Error(t, noTS.Validate())

	noURL := base
	noURL.URL = ""
	assert.Error(t, noURL.Validate())

	noID := base
	noID.VideoID = ""
	assert.Error(t, noID.Validate(), "scraped events carry the video id")

	failed := events.Event{Type: events.TypeFailed, TS: time.Now(), URL: "u"}
	assert.Error(t, failed.Validate(), "failed events carry the error kind")
	failed.ErrorKind = "network"
	assert.NoError(t, failed.Validate())

	limited := events.Event{Type: events.TypeRateLimited, TS: time.Now(), URL: "u"}
	assert.NoError(t, limited.Validate())

	unknown := events.Event{Type: "NOPE", TS: time.Now(), URL: "u"}
	assert.Error(t, unknown.Validate())
}
