package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/pageza/cibaria/backend/internal/types"
)

// ErrStoreUnavailable is returned while the circuit is open.
var ErrStoreUnavailable = errors.New("image store unavailable")

// BreakerConfig configures the circuit breaker around an image store.
type BreakerConfig struct {
	Name string
	// MaxRequests is the number of requests allowed in half-open state.
	MaxRequests uint32
	// Interval is the cyclic reset period for counts in closed state.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout          time.Duration
	FailureThreshold uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "image-store",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// ResilientStore fails fast once the wrapped store keeps failing.
type ResilientStore struct {
	next    Store
	breaker *gobreaker.CircuitBreaker[types.StoredImage]
}

var _ Store = (*ResilientStore)(nil)

func NewResilientStore(next Store, cfg BreakerConfig, log zerolog.Logger) *ResilientStore {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("image store circuit changed state")
		},
		// A cancelled request says nothing about the store's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &ResilientStore{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[types.StoredImage](settings),
	}
}

func (r *ResilientStore) Upload(ctx context.Context, photo types.Photo) (types.StoredImage, error) {
	img, err := r.breaker.Execute(func() (types.StoredImage, error) {
		return r.next.Upload(ctx, photo)
	})
	return img, r.wrap(err)
}

func (r *ResilientStore) Delete(ctx context.Context, storageID string) error {
	_, err := r.breaker.Execute(func() (types.StoredImage, error) {
		return types.StoredImage{}, r.next.Delete(ctx, storageID)
	})
	return r.wrap(err)
}

// State exposes the breaker state for health reporting.
func (r *ResilientStore) State() gobreaker.State {
	return r.breaker.State()
}

func (r *ResilientStore) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
