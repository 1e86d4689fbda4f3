package estimates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/estimates-backend/pkg/refnumber"
)

// numberSource lists numbers already taken under a prefix.
type numberSource interface {
	NumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

// numberer assigns estimate numbers. With auto generation the next number
// of the scheme is used; otherwise callers supply one.
type numberer struct {
	scheme *refnumber.Scheme
	auto   bool
}

// generate renders the next free number for date's period.
func (n numberer) generate(ctx context.Context, src numberSource, date time.Time) (string, error) {
	existing, err := src.NumbersWithPrefix(ctx, n.scheme.Prefix(date))
	if err != nil {
		return "", err
	}
	return n.scheme.Next(date, existing)
}

// assign picks the number for a new estimate. supplied is only honored when
// generation is disabled.
func (n numberer) assign(ctx context.Context, repo Repository, date time.Time, supplied string) (string, error) {
	if n.auto {
		return n.generate(ctx, repo, date)
	}
	return n.claim(ctx, repo, supplied, uuid.Nil)
}

// claim validates a caller supplied number against existing estimates other
// than owner.
func (n numberer) claim(ctx context.Context, repo Repository, number string, owner uuid.UUID) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", refnumber.ErrNumberRequired
	}
	taken, err := repo.NumberExists(ctx, number, owner)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("%w: %s", refnumber.ErrDuplicateNumber, number)
	}
	return number, nil
}

// retryOnCollision reruns fn while it fails on a collision of a generated
// number, up to the configured number of attempts. Each run is a fresh
// transaction so the next number is computed against committed rows.
func (s *service) retryOnCollision(ctx context.Context, operation string, generated bool, fn func() error) error {
	attempts := s.settings.NumberMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !generated || !errors.Is(err, refnumber.ErrDuplicateNumber) {
			return err
		}
		s.obs.metrics.IncNumberRetry(operation)
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "attempt", i+1), "estimate.number_collision")
		}
	}
	return err
}
