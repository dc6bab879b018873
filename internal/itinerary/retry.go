package itinerary

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// RetryPolicy bounds how often a failed completion is reissued. MaxRetries
// counts retries after the first attempt; the n-th retry waits roughly
// Base*2^(n-1).
type RetryPolicy struct {
	MaxRetries int
	Base       time.Duration
}

func (p RetryPolicy) backoff() retry.Backoff {
	base := p.Base
	if base <= 0 {
		base = time.Millisecond
	}
	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return retry.WithMaxRetries(uint64(retries), retry.NewExponential(base))
}

// completeWithRetry calls the model until it answers or the budget runs out.
// Only call failures are retried; parsing happens after this returns.
func (s *Service) completeWithRetry(ctx context.Context, label string, p Prompt) (string, error) {
	var (
		out     string
		attempt int
	)
	err := retry.Do(ctx, s.retry.backoff(), func(ctx context.Context) error {
		attempt++
		text, err := s.completer.Complete(ctx, p.Messages())
		if err != nil {
			s.log.Warn("completion attempt failed",
				zap.String("call", label),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		out = text
		return nil
	})
	if err != nil {
		s.log.Error("completion retries exhausted",
			zap.String("call", label),
			zap.Int("attempts", attempt),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %s after %d attempts: %w", ErrUpstream, label, attempt, err)
	}
	return out, nil
}
