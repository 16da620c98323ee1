package remote

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/domain"
)

// BreakerBackend wraps a Backend with a circuit breaker so a flapping
// connection fails fast instead of stalling every debounced sync on network
// timeouts. A snapshot miss is a valid answer, not a failure.
type BreakerBackend struct {
	inner Backend
	cb    *gobreaker.CircuitBreaker[any]
}

func NewBreakerBackend(inner Backend) *BreakerBackend {
	settings := gobreaker.Settings{
		Name:    "remote-backend",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrSnapshotNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("remote circuit breaker state changed")
		},
	}
	return &BreakerBackend{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (b *BreakerBackend) FetchSnapshot(ctx context.Context, tableID string) (*domain.CartSnapshot, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.inner.FetchSnapshot(ctx, tableID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.CartSnapshot), nil
}

func (b *BreakerBackend) UpsertSnapshot(ctx context.Context, snap *domain.CartSnapshot) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.inner.UpsertSnapshot(ctx, snap)
	})
	return err
}

func (b *BreakerBackend) DeleteSnapshot(ctx context.Context, tableID string) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.inner.DeleteSnapshot(ctx, tableID)
	})
	return err
}

func (b *BreakerBackend) Write(ctx context.Context, op domain.PendingOperation) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.inner.Write(ctx, op)
	})
	return err
}

func (b *BreakerBackend) ReadAll(ctx context.Context, collection string) ([]map[string]interface{}, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.inner.ReadAll(ctx, collection)
	})
	if err != nil {
		return nil, err
	}
	return v.([]map[string]interface{}), nil
}

// Ping bypasses the breaker on purpose: the connectivity monitor needs to see
// real reachability to close the loop again.
func (b *BreakerBackend) Ping(ctx context.Context) error {
	return b.inner.Ping(ctx)
}
