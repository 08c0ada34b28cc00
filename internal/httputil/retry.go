// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil holds the HTTP retry policy used by the OpenAlex collector.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// RetryBaseDelay is the first backoff step. Tests shrink it.
var RetryBaseDelay = 2 * time.Second

// MaxRetryAfter caps how long a server-supplied Retry-After may stall us.
var MaxRetryAfter = 2 * time.Minute

const defaultMaxRetries = 3

// Retryable reports whether a status code is worth another attempt:
// rate limiting and transient gateway failures.
func Retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithRetry sends req and retries retryable statuses with exponential
// backoff (RetryBaseDelay * 2^attempt), preferring a numeric Retry-After
// header when the server sends one. maxRetries <= 0 means the default of 3.
// Once retries run out the last response is returned unread. Transport
// errors are returned at once; cancelling ctx during a wait returns ctx.Err().
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, logger *zap.Logger) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := backoff(attempt, resp.Header.Get("Retry-After"))
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		logger.Warn("retrying request",
			zap.String("url", req.URL.Redacted()),
			zap.Int("status", resp.StatusCode),
			zap.Duration("wait", wait),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func backoff(attempt int, retryAfter string) time.Duration {
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		d := time.Duration(secs) * time.Second
		if d > MaxRetryAfter {
			d = MaxRetryAfter
		}
		return d
	}
	return time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
}
