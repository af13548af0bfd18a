// Package httputil provides retry helpers for the upstream API clients.
//
// # Retry
//
// [Retry] wraps a request with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses (the public Overpass instances use these
//     when all query slots are taken)
//
// Only errors wrapped with [Retryable] are retried. Everything else,
// including 4xx responses and context cancellation, is returned at once:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    defer resp.Body.Close()
//	    if httputil.RetryableStatus(resp.StatusCode) {
//	        return httputil.Retryable(fmt.Errorf("status %d", resp.StatusCode))
//	    }
//	    return nil
//	})
//
// # Configuration
//
// [RetryWithBackoff] uses 3 attempts with a 1 second initial delay that
// doubles after each failure. Use [Retry] for other settings.
package httputil
