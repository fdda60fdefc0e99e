package entities

import "time"

// AuditLogEntry - append-only запись "кто что сделал с какой сущностью".
// Никогда не изменяется и не удаляется.
type AuditLogEntry struct {
	ID          uint64                 `db:"id"`
	EntityType  string                 `db:"entity_type"`
	EntityID    uint64                 `db:"entity_id"`
	Action      string                 `db:"action"`
	Description string                 `db:"description"`
	PerformedBy uint64                 `db:"performed_by"`
	Metadata    map[string]interface{} `db:"metadata"`
	CreatedAt   time.Time              `db:"created_at"`
}
