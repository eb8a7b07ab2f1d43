package aiusage

import (
	"context"
	"errors"
	"log"
	"time"

	"myitinerary/internal/types"
)

// Service orchestrates AI token-usage logic.
type Service struct {
	store     *Store
	allowance int
}

// NewService creates a Service backed by the given Store. A non-positive allowance
// falls back to DefaultTokens.
func NewService(store *Store, allowance int) *Service {
	if allowance <= 0 {
		allowance = DefaultTokens
	}
	return &Service{store: store, allowance: allowance}
}

func (s *Service) Allowance() int {
	return s.allowance
}

// UseToken deducts one token from the user's monthly allowance.
// If the user row does not exist yet it is initialised and the token is immediately consumed.
// Returns ErrInsufficientTokens when the quota for the current month is exhausted.
func (s *Service) UseToken(ctx context.Context, uid string) error {
	err := s.store.UseToken(ctx, uid, s.allowance)
	if !errors.Is(err, ErrInsufficientTokens) {
		return err
	}

	// Row may be missing: try to create it, then retry the deduction once.
	if initErr := s.store.EnsureUser(ctx, uid, s.allowance); initErr != nil {
		return initErr
	}
	return s.store.UseToken(ctx, uid, s.allowance)
}

func (s *Service) Remaining(ctx context.Context, uid string) (int, error) {
	return s.store.Remaining(ctx, uid, s.allowance)
}

// RecordCall logs the outcome of one call. Failures to log are reported but never
// fail the caller's request.
func (s *Service) RecordCall(ctx context.Context, c Call) {
	if c.ID == "" {
		c.ID = types.NewID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if err := s.store.InsertCall(ctx, c); err != nil {
		log.Printf("[AIUSAGE] record call uid=%s op=%s: %v", c.UID, c.Operation, err)
	}
}

func (s *Service) RecentCalls(ctx context.Context, uid string, limit int) ([]Call, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.store.RecentCalls(ctx, uid, limit)
}
