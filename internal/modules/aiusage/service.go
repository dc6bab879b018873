// README: Quota service: one token per itinerary generation or regeneration.
package aiusage

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Service orchestrates AI token-usage logic.
type Service struct {
	store *Store
	log   *zap.Logger
}

// NewService creates a Service backed by the given Store.
func NewService(store *Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log.Named("aiusage")}
}

// UseToken deducts one token from the caller's monthly allowance.
// A caller without a row is initialised and the token is consumed at once.
// Returns ErrInsufficientTokens when the quota for the current month is exhausted.
func (s *Service) UseToken(ctx context.Context, uid, operation string) error {
	err := s.store.UseToken(ctx, uid)
	if errors.Is(err, ErrInsufficientTokens) {
		// Row may be missing: create it, then retry the deduction once.
		if initErr := s.store.EnsureUser(ctx, uid); initErr != nil {
			return initErr
		}
		err = s.store.UseToken(ctx, uid)
	}
	if err != nil {
		return err
	}

	if logErr := s.store.Log(ctx, uid, operation); logErr != nil {
		s.log.Warn("usage log insert failed", zap.String("uid", uid), zap.Error(logErr))
	}
	return nil
}

// Usage reports the caller's remaining allowance.
func (s *Service) Usage(ctx context.Context, uid string) (Usage, error) {
	return s.store.Get(ctx, uid)
}
