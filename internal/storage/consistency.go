package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultHeadRetrySchedule is the delay before each metadata request made while
// waiting for a client-side upload to become visible.
var DefaultHeadRetrySchedule = []time.Duration{0, 200 * time.Millisecond, 500 * time.Millisecond}

// RetryOption customizes HeadWithRetry.
type RetryOption func(*retryOptions)

type retryOptions struct {
	schedule []time.Duration
	log      zerolog.Logger
	metrics  *Metrics
}

// WithSchedule replaces the delay schedule. One request is made per entry.
func WithSchedule(delays ...time.Duration) RetryOption {
	return func(o *retryOptions) { o.schedule = delays }
}

// WithRetryLogger sets the logger failed attempts are reported to.
func WithRetryLogger(l zerolog.Logger) RetryOption {
	return func(o *retryOptions) { o.log = l }
}

// WithRetryMetrics counts repeated requests.
func WithRetryMetrics(m *Metrics) RetryOption {
	return func(o *retryOptions) { o.metrics = m }
}

// HeadWithRetry calls HeadFile once per schedule entry, sleeping the entry's
// delay first. Validation and Config errors are returned at once. When every
// attempt fails the last error is returned, prefixed with the attempt count.
func HeadWithRetry(ctx context.Context, s Storage, key string, opts ...RetryOption) (ObjectMetadata, error) {
	o := retryOptions{schedule: DefaultHeadRetrySchedule, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.schedule) == 0 {
		o.schedule = []time.Duration{0}
	}

	n := len(o.schedule)
	var lastErr error
	for i, delay := range o.schedule {
		if err := sleep(ctx, delay); err != nil {
			return ObjectMetadata{}, err
		}
		if i > 0 {
			o.metrics.headRetry()
		}

		meta, err := s.HeadFile(ctx, key)
		if err == nil {
			return meta, nil
		}
		lastErr = err
		o.log.Warn().Err(err).Str("key", key).Str("attempt", fmt.Sprintf("%d/%d", i+1, n)).Msg("metadata request failed")
		if !IsRetryable(err) {
			return ObjectMetadata{}, err
		}
	}
	return ObjectMetadata{}, fmt.Errorf("head %q failed after %d attempts: %w", key, n, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
