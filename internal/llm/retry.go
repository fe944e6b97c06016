package llm

import (
	"context"
	"errors"
	"time"
)

// rateLimitError marks a 429 response. It is the only error class the
// retry loop will retry.
type rateLimitError struct{}

func (e *rateLimitError) Error() string { return "rate limited" }

// authError marks a 401/403 response. Retrying cannot help, so the loop
// returns it immediately.
type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

// IsAuthError reports whether err is a credential failure from the model
// endpoint.
func IsAuthError(err error) bool {
	var authErr *authError
	return errors.As(err, &authErr)
}

// retryWithBackoff runs fn up to maxRetries+1 times, sleeping with
// exponential backoff between attempts. Only rate limit errors are
// retried; everything else, auth errors included, is returned as-is.
func retryWithBackoff(ctx context.Context, maxRetries int,
	fn func() error) error {

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var rateErr *rateLimitError
		if !errors.As(lastErr, &rateErr) {
			return lastErr
		}

		if attempt < maxRetries {
			backoff := time.Duration(1<<uint(attempt)) *
				time.Second

			log.DebugS(ctx, "Rate limited, backing off",
				"attempt", attempt+1,
				"backoff", backoff)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return lastErr
}
