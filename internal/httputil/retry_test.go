// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	RetryBaseDelay = time.Millisecond
}

// statusSequence serves the given statuses in order, repeating the last.
func statusSequence(t *testing.T, calls *int32, statuses ...int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(atomic.AddInt32(calls, 1)) - 1
		if n >= len(statuses) {
			n = len(statuses) - 1
		}
		w.WriteHeader(statuses[n])
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestDoWithRetry(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		maxRetries int
		wantStatus int
		wantCalls  int32
	}{
		{"success first try", []int{200}, 3, 200, 1},
		{"rate limited then ok", []int{429, 429, 200}, 3, 200, 3},
		{"gateway errors then ok", []int{502, 503, 504, 200}, 3, 200, 4},
		{"not found is final", []int{404, 200}, 3, 404, 1},
		{"server error is final", []int{500, 200}, 3, 500, 1},
		{"exhausted", []int{429}, 2, 429, 3},
		{"default retries", []int{503}, 0, 503, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := statusSequence(t, &calls, tt.statuses...)

			req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
			require.NoError(t, err)

			resp, err := DoWithRetry(context.Background(), ts.Client(), req, tt.maxRetries, nil)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestDoWithRetry_LogsEachRetry(t *testing.T) {
	var calls int32
	ts := statusSequence(t, &calls, 429, 200)

	core, logs := observer.New(zap.WarnLevel)
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	resp, err := DoWithRetry(context.Background(), ts.Client(), req, 3, zap.New(core))
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "retrying request", entry.Message)
	assert.EqualValues(t, 429, entry.ContextMap()["status"])
}

func TestDoWithRetry_ContextCancelled(t *testing.T) {
	old := RetryBaseDelay
	RetryBaseDelay = time.Hour
	defer func() { RetryBaseDelay = old }()

	var calls int32
	ts := statusSequence(t, &calls, 429)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = DoWithRetry(ctx, ts.Client(), req, 3, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithRetry_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)

	_, err = DoWithRetry(context.Background(), http.DefaultClient, req, 3, nil)
	assert.Error(t, err)
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		name       string
		attempt    int
		retryAfter string
		want       time.Duration
	}{
		{"first attempt", 0, "", RetryBaseDelay},
		{"third attempt", 2, "", 4 * RetryBaseDelay},
		{"retry-after seconds", 5, "7", 7 * time.Second},
		{"retry-after capped", 0, "100000", MaxRetryAfter},
		{"retry-after http date ignored", 1, "Wed, 21 Oct 2015 07:28:00 GMT", 2 * RetryBaseDelay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, backoff(tt.attempt, tt.retryAfter))
		})
	}
}
