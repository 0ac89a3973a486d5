package vision

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

type retryEngine struct {
	Engine
	attempts int
	backoff  time.Duration
	log      *zap.Logger
}

// WithRetry wraps e so that transient failures (timeouts, 429, 5xx) are retried
// up to attempts times in total, sleeping a jittered, linearly growing backoff
// between tries. attempts <= 1 returns e unchanged.
func WithRetry(e Engine, attempts int, backoff time.Duration, log *zap.Logger) Engine {
	if attempts <= 1 {
		return e
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &retryEngine{Engine: e, attempts: attempts, backoff: backoff, log: log}
}

func (r *retryEngine) Annotate(ctx context.Context, img Image, features []FeatureRequest) (*BatchResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		resp, err := r.Engine.Annotate(ctx, img, features)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !IsTransient(err) || attempt == r.attempts {
			break
		}

		wait := jitter(time.Duration(attempt) * r.backoff)
		r.log.Warn("annotate attempt failed, retrying",
			zap.String("engine", r.Name()),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, lastErr
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

// jitter returns a duration in [d/2, d).
func jitter(d time.Duration) time.Duration {
	if d <= 1 {
		return d
	}
	half := d / 2
	return half + rand.N(half)
}
