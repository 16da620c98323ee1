package remote

import (
	"context"
	"errors"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/domain"
)

var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// SnapshotStore is the per-table half of the backend contract: one snapshot
// record per table id, upserted whole and deleted on finalize.
type SnapshotStore interface {
	FetchSnapshot(ctx context.Context, tableID string) (*domain.CartSnapshot, error)
	UpsertSnapshot(ctx context.Context, snap *domain.CartSnapshot) error
	DeleteSnapshot(ctx context.Context, tableID string) error
}

// CollectionStore is the generic collection half, used by the pending-op
// queue replay and the peripheral table/product/order stores.
type CollectionStore interface {
	Write(ctx context.Context, op domain.PendingOperation) error
	ReadAll(ctx context.Context, collection string) ([]map[string]interface{}, error)
}

// Pinger reports backend reachability; the connectivity monitor polls it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend is the full remote collaborator surface.
type Backend interface {
	SnapshotStore
	CollectionStore
	Pinger
}
