package dto

import "time"

// AuditFilterDTO - фильтры чтения аудита: по сущности, по исполнителю,
// по диапазону дат. Пустые поля не участвуют в фильтрации.
type AuditFilterDTO struct {
	EntityType  string     `query:"entity_type"`
	EntityID    uint64     `query:"entity_id"`
	PerformedBy uint64     `query:"performed_by"`
	From        *time.Time `query:"from"`
	To          *time.Time `query:"to"`
}

type AuditLogEntryDTO struct {
	ID          uint64                 `json:"id"`
	EntityType  string                 `json:"entity_type"`
	EntityID    uint64                 `json:"entity_id"`
	Action      string                 `json:"action"`
	Description string                 `json:"description"`
	PerformedBy uint64                 `json:"performed_by"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}
