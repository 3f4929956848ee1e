package upstream

import (
	"context"
	"log/slog"
	"time"

	"finrisk/internal/applicant/models"
)

// RetryPolicy wraps a Scorer in a bounded retry loop with exponential
// backoff. Only classified-retryable failures are retried; the last attempt's
// outcome is what callers (and the breaker) see. The inter-attempt wait
// suspends only the calling goroutine and holds no locks.
type RetryPolicy struct {
	scorer      Scorer
	maxAttempts int
	baseDelay   time.Duration
	log         *slog.Logger
}

// NewRetryPolicy wraps scorer with up to maxAttempts total attempts. The
// delay before attempt n+1 is baseDelay * 2^(n-1).
func NewRetryPolicy(scorer Scorer, maxAttempts int, baseDelay time.Duration, log *slog.Logger) *RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryPolicy{
		scorer:      scorer,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		log:         log,
	}
}

// Score runs the wrapped scorer through the retry budget.
func (p *RetryPolicy) Score(ctx context.Context, in models.ApplicantInput) (*Result, error) {
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		result, err := p.scorer.Score(ctx, in)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == p.maxAttempts {
			return nil, err
		}

		delay := p.baseDelay << (attempt - 1)
		p.log.WarnContext(ctx, "scoring attempt failed, backing off",
			"attempt", attempt,
			"max_attempts", p.maxAttempts,
			"delay", delay.String(),
			"error", err,
		)
		if err := waitFor(ctx, delay); err != nil {
			// Caller gave up mid-backoff; skip the remaining attempts.
			return nil, &Error{Kind: KindCanceled, Message: "canceled during backoff", err: err}
		}
	}
	return nil, lastErr
}

// waitFor sleeps for d unless the context is done first.
func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
