package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/drawfeed/drawfeed/internal/draw"
)

func newTestClient(attempts int) (*Client, *[]time.Duration) {
	c := New(Config{
		MaxAttempts: attempts,
		BackoffBase: 10 * time.Millisecond,
		Timeout:     2 * time.Second,
	}, nil)
	waits := &[]time.Duration{}
	c.sleep = func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	return c, waits
}

func TestFetchSuccessFirstAttempt(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c, waits := newTestClient(3)
	body, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Contains(t, body, "ok")
	require.Empty(t, *waits)
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	c, waits := newTestClient(3)
	body, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Contains(t, body, "recovered")
	require.Equal(t, int32(3), calls.Load())
	// Attempt k waits base*2^(k-1) before the next attempt.
	require.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *waits)
}

func TestFetchExhaustsBudget(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, waits := newTestClient(3)
	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var fetchErr *draw.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, 3, fetchErr.Attempts)
	require.Equal(t, srv.URL, fetchErr.URL)
	require.NotNil(t, fetchErr.Err)
	require.Equal(t, int32(3), calls.Load())
	// No wait after the final attempt.
	require.Len(t, *waits, 2)
}

func TestFetchSendsIdentifyingUserAgent(t *testing.T) {
	t.Parallel()

	var ua atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.UserAgent())
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(Config{UserAgent: "drawfeed-test/1.0"}, nil)
	_, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "drawfeed-test/1.0", ua.Load())
}

func TestFetchCanceledContextStopsRetrying(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(Config{MaxAttempts: 5, BackoffBase: time.Minute}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, srv.URL)
	require.ErrorIs(t, err, context.Canceled)
}
