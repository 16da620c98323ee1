package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/domain"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/remote"
)

// CachedSnapshotStore layers the snapshot cache over the backend. Reads go
// through singleflight so a dashboard refresh cannot stampede the backend
// with identical fetches; writes invalidate.
type CachedSnapshotStore struct {
	inner remote.SnapshotStore
	cache SnapshotCache
	sfg   singleflight.Group
}

func NewCachedSnapshotStore(inner remote.SnapshotStore, cache SnapshotCache) *CachedSnapshotStore {
	return &CachedSnapshotStore{inner: inner, cache: cache}
}

func (c *CachedSnapshotStore) FetchSnapshot(ctx context.Context, tableID string) (*domain.CartSnapshot, error) {
	v, err, _ := c.sfg.Do(tableID, func() (interface{}, error) {
		snap, err := c.cache.Get(ctx, tableID)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Warn().Err(err).Str("table_id", tableID).Msg("snapshot cache get failed")
		}

		snap, err = c.inner.FetchSnapshot(ctx, tableID)
		if err != nil {
			return nil, err
		}

		go func() {
			if errSet := c.cache.Set(context.Background(), snap); errSet != nil {
				log.Warn().Err(errSet).Str("table_id", tableID).Msg("snapshot cache set failed")
			}
		}()

		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.CartSnapshot), nil
}

func (c *CachedSnapshotStore) UpsertSnapshot(ctx context.Context, snap *domain.CartSnapshot) error {
	if err := c.inner.UpsertSnapshot(ctx, snap); err != nil {
		return err
	}
	c.invalidate(snap.TableID)
	return nil
}

func (c *CachedSnapshotStore) DeleteSnapshot(ctx context.Context, tableID string) error {
	if err := c.inner.DeleteSnapshot(ctx, tableID); err != nil {
		return err
	}
	c.invalidate(tableID)
	return nil
}

func (c *CachedSnapshotStore) invalidate(tableID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.cache.Delete(ctx, tableID); err != nil {
		log.Warn().Err(err).Str("table_id", tableID).Msg("snapshot cache invalidate failed")
	}
}
