package cache

import (
	"context"
	"errors"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/domain"
)

// SnapshotCache sits in front of the remote snapshot store on the hydration
// path. A miss is normal and sends the caller to the backend.
type SnapshotCache interface {
	Get(ctx context.Context, tableID string) (*domain.CartSnapshot, error)
	Set(ctx context.Context, snap *domain.CartSnapshot) error
	Delete(ctx context.Context, tableID string) error
}

var ErrCacheMiss = errors.New("cache miss")
