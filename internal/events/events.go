package events

import "freight-system/internal/entities"

// EditRequestedEvent публикуется после принятия запроса на одноразовое
// редактирование.
type EditRequestedEvent struct {
	EntityType  string
	EntityID    uint64
	RequesterID uint64
	Remarks     string
}

func (EditRequestedEvent) Name() string { return "editaccess.requested" }

// EditApprovedEvent публикуется после одобрения запроса.
type EditApprovedEvent struct {
	EntityType  string
	EntityID    uint64
	RequesterID uint64
	ApproverID  uint64
}

func (EditApprovedEvent) Name() string { return "editaccess.approved" }

// AuditRecordedEvent публикуется после каждой записи аудита; слушатель
// стрима ретранслирует её во внешний поток best-effort.
type AuditRecordedEvent struct {
	Entry entities.AuditLogEntry
}

func (AuditRecordedEvent) Name() string { return "audit.recorded" }
