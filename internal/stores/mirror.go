package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/remote"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/syncqueue"
)

// Remote collection names owned by the backend.
const (
	CollectionTables   = "tables"
	CollectionProducts = "products"
	CollectionOrders   = "orders"
)

// Connection states surfaced to the UI next to each store.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusSyncing = "syncing"
)

// Mirror caches one remote collection in memory and routes every write
// through the pending-operation queue, so edits made offline land remotely
// once connectivity returns. The cache is updated optimistically either way.
type Mirror struct {
	collection string
	queue      *syncqueue.Queue
	backend    remote.CollectionStore

	mu      sync.RWMutex
	records map[string]map[string]interface{}
}

func NewMirror(collection string, queue *syncqueue.Queue, backend remote.CollectionStore) *Mirror {
	return &Mirror{
		collection: collection,
		queue:      queue,
		backend:    backend,
		records:    make(map[string]map[string]interface{}),
	}
}

// Fetch refreshes the cache from the backend. Offline, the stale cache is
// kept and no error surfaces.
func (m *Mirror) Fetch(ctx context.Context) error {
	if !m.queue.Online() {
		return nil
	}

	records, err := m.backend.ReadAll(ctx, m.collection)
	if err != nil {
		log.Error().Err(err).Str("collection", m.collection).Msg("failed to fetch collection")
		return fmt.Errorf("fetch %s: %w", m.collection, err)
	}

	m.mu.Lock()
	m.records = make(map[string]map[string]interface{}, len(records))
	for _, rec := range records {
		if id, ok := rec["id"].(string); ok {
			m.records[id] = rec
		}
	}
	m.mu.Unlock()
	return nil
}

func (m *Mirror) All() []map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]map[string]interface{}, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out
}

func (m *Mirror) Get(id string) (map[string]interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	return rec, ok
}

// Insert writes the record remotely (or queues it) and caches it. Records
// created offline are flagged pending_sync so the UI can badge them.
func (m *Mirror) Insert(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	if _, ok := payload["id"]; !ok {
		payload["id"] = uuid.NewString()
	}

	res, err := m.queue.Insert(ctx, m.collection, payload)
	if err != nil {
		return nil, err
	}
	if res.Offline {
		payload["pending_sync"] = true
	}

	id := payload["id"].(string)
	m.mu.Lock()
	m.records[id] = payload
	m.mu.Unlock()
	return payload, nil
}

func (m *Mirror) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res, err := m.queue.Update(ctx, m.collection, id, fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok {
		rec = map[string]interface{}{"id": id}
		m.records[id] = rec
	}
	for k, v := range fields {
		rec[k] = v
	}
	if res.Offline {
		rec["pending_sync"] = true
	}
	m.mu.Unlock()
	return nil
}

func (m *Mirror) Delete(ctx context.Context, id string) error {
	if _, err := m.queue.Delete(ctx, m.collection, id); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.records, id)
	m.mu.Unlock()
	return nil
}

// ConnectionStatus reports the sync state the UI shows next to the store.
func (m *Mirror) ConnectionStatus() string {
	if !m.queue.Online() {
		return StatusOffline
	}
	if m.queue.PendingCount() > 0 {
		return StatusSyncing
	}
	return StatusOnline
}
