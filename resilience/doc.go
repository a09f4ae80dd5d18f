// Package resilience retries failed operations with exponential backoff.
//
// Retry is generic over the operation's result and tells the operation
// which attempt it is running. A RetryConfig.DelayFor hook lets callers
// replace the computed backoff for a particular error, which is how the
// HTTP retry policy honours Retry-After:
//
//	resp, err := resilience.Retry(ctx, cfg, func(attempt int) (*pipeline.Response, error) {
//	    return next.Send(req)
//	})
package resilience
