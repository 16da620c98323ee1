package syncqueue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/domain"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/localstore"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/metrics"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/remote"
)

// Result is what a convenience write returns. Offline means the operation was
// queued and the caller should apply its optimistic local update.
type Result struct {
	Offline bool
	Data    map[string]interface{}
}

// Queue durably buffers remote write intents while offline and replays them
// in enqueue order when connectivity returns. Delivery is at-least-once: a
// replay that fails partway re-enqueues the failed operations at the tail.
type Queue struct {
	mu      sync.Mutex
	ops     []domain.PendingOperation
	store   localstore.Store
	backend remote.CollectionStore
	metrics *metrics.Registry

	online  bool
	flushMu sync.Mutex
}

func NewQueue(store localstore.Store, backend remote.CollectionStore, m *metrics.Registry) *Queue {
	q := &Queue{
		store:   store,
		backend: backend,
		metrics: m,
		online:  true,
	}
	q.ops = q.loadPending()
	m.PendingOps.Set(float64(len(q.ops)))
	return q
}

// loadPending restores the queue from the local store. A missing key is a
// fresh install; a corrupt blob is logged and dropped so the service still
// starts (the in-memory queue is authoritative from then on).
func (q *Queue) loadPending() []domain.PendingOperation {
	blob, err := q.store.Load(localstore.KeyPendingOps)
	if errors.Is(err, localstore.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load pending operations")
		return nil
	}

	var ops []domain.PendingOperation
	if err := json.Unmarshal(blob, &ops); err != nil {
		log.Error().Err(err).Msg("discarding corrupt pending-operations blob")
		return nil
	}
	return ops
}

func (q *Queue) persistLocked() {
	blob, err := json.Marshal(q.ops)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal pending operations")
		return
	}
	if err := q.store.Save(localstore.KeyPendingOps, blob); err != nil {
		// Storage failure is swallowed: the in-memory queue stays
		// authoritative for this process lifetime.
		log.Error().Err(err).Msg("failed to persist pending operations")
	}
	q.metrics.PendingOps.Set(float64(len(q.ops)))
}

// Enqueue appends the operation to the durable queue.
func (q *Queue) Enqueue(op domain.PendingOperation) {
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.Timestamp.IsZero() {
		op.Timestamp = time.Now().UTC()
	}

	q.mu.Lock()
	q.ops = append(q.ops, op)
	q.persistLocked()
	q.mu.Unlock()

	log.Info().
		Str("op_id", op.ID).
		Str("type", string(op.Type)).
		Str("collection", op.Collection).
		Msg("operation queued for later sync")
}

// Insert writes immediately when online, otherwise queues the intent.
func (q *Queue) Insert(ctx context.Context, collection string, payload map[string]interface{}) (Result, error) {
	return q.write(ctx, domain.PendingOperation{
		Type:       domain.OpInsert,
		Collection: collection,
		Payload:    payload,
	})
}

func (q *Queue) Update(ctx context.Context, collection, recordID string, payload map[string]interface{}) (Result, error) {
	return q.write(ctx, domain.PendingOperation{
		Type:       domain.OpUpdate,
		Collection: collection,
		RecordID:   recordID,
		Payload:    payload,
	})
}

func (q *Queue) Delete(ctx context.Context, collection, recordID string) (Result, error) {
	return q.write(ctx, domain.PendingOperation{
		Type:       domain.OpDelete,
		Collection: collection,
		RecordID:   recordID,
	})
}

func (q *Queue) write(ctx context.Context, op domain.PendingOperation) (Result, error) {
	if q.Online() {
		if err := q.backend.Write(ctx, op); err != nil {
			return Result{}, err
		}
		return Result{Offline: false, Data: op.Payload}, nil
	}

	q.Enqueue(op)
	return Result{Offline: true, Data: op.Payload}, nil
}

// Flush snapshots and clears the queue, then replays each operation in the
// original order. Failed operations go back to the tail, so ordering holds
// within a clean pass but not across retries.
func (q *Queue) Flush(ctx context.Context) {
	q.flushMu.Lock()
	defer q.flushMu.Unlock()

	if !q.Online() {
		return
	}

	q.mu.Lock()
	ops := q.ops
	q.ops = nil
	q.persistLocked()
	q.mu.Unlock()

	if len(ops) == 0 {
		return
	}

	log.Info().Int("count", len(ops)).Msg("replaying pending operations")

	for _, op := range ops {
		if err := q.backend.Write(ctx, op); err != nil {
			log.Error().Err(err).
				Str("op_id", op.ID).
				Str("collection", op.Collection).
				Msg("replay failed, re-enqueueing operation")
			q.metrics.ReplayRequeued.Inc()
			q.Enqueue(op)
			continue
		}
		q.metrics.ReplayApplied.Inc()
	}
}

// SetOnline records a connectivity transition reported by the monitor.
func (q *Queue) SetOnline(online bool) {
	q.mu.Lock()
	q.online = online
	q.mu.Unlock()
}

func (q *Queue) Online() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.online
}

func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}
