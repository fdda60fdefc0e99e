// internal/authz/permissions.go
package authz

// --- СПИСОК ВСЕХ ПЕРМИШЕНОВ В СИСТЕМЕ ---

const (
	// Глобальные
	Superuser = "superuser"

	// Обход протокола одноразового доступа. Актёр с этой способностью
	// редактирует закрытые записи без запроса и одобрения.
	BypassEditLock = "edit_lock:bypass"

	// Котировки (Quotes)
	QuotesCreate     = "quotes:create"
	QuotesView       = "quotes:view"
	QuotesTransition = "quotes:transition"

	// Технические котировки (Technical Quotes)
	TechnicalQuotesCreate = "technical_quotes:create"
	TechnicalQuotesView   = "technical_quotes:view"
	TechnicalQuotesSend   = "technical_quotes:send"

	// Джобы (Jobs)
	JobsCreate = "jobs:create"
	JobsView   = "jobs:view"
	JobsUpdate = "jobs:update"
	JobsDelete = "jobs:delete"

	// Трекинг контейнеров
	TrackingCreate = "tracking:create"
	TrackingView   = "tracking:view"

	// Одноразовый доступ на редактирование
	EditRequestsCreate  = "edit_requests:create"
	EditRequestsApprove = "edit_requests:approve"

	// Уведомления, аудит, отчёты
	NotificationsView = "notifications:view"
	AuditView         = "audit:view"
	ReportsView       = "reports:view"
)
