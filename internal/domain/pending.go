package domain

import "time"

type OperationType string

const (
	OpInsert OperationType = "INSERT"
	OpUpdate OperationType = "UPDATE"
	OpDelete OperationType = "DELETE"
)

// PendingOperation is a write intent captured while offline, replayed in
// enqueue order once connectivity returns. Replay is at-least-once: the
// remote collections tolerate duplicates via upsert semantics.
type PendingOperation struct {
	ID         string                 `json:"id"`
	Type       OperationType          `json:"type"`
	Collection string                 `json:"collection"`
	RecordID   string                 `json:"record_id,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}
