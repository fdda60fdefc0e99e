// pkg/constants/constants.go
package constants

//============== СТАТУСЫ КОТИРОВОК (QUOTES) ==============

// Коды статусов клиентской котировки. Используются в бизнес-логике,
// в БД хранится сам код.
const (
	QuoteStatusPending        = "PENDING"
	QuoteStatusReviewing      = "REVIEWING"
	QuoteStatusIndicativeSent = "INDICATIVE_SENT"
	QuoteStatusApproved       = "APPROVED"
	QuoteStatusRejected       = "REJECTED"
)

// QuoteTransitions - допустимые переходы статусов котировки.
// Любой переход вне этой карты отклоняется как InvalidTransition.
var QuoteTransitions = map[string][]string{
	QuoteStatusPending:        {QuoteStatusReviewing},
	QuoteStatusReviewing:      {QuoteStatusIndicativeSent},
	QuoteStatusIndicativeSent: {QuoteStatusApproved, QuoteStatusRejected},
}

// IsQuoteTransitionAllowed проверяет переход по карте QuoteTransitions.
func IsQuoteTransitionAllowed(from, to string) bool {
	for _, allowed := range QuoteTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

//============== СТАТУСЫ ТЕХНИЧЕСКИХ КОТИРОВОК ==============

const (
	TechnicalQuoteStatusDraft          = "DRAFT"
	TechnicalQuoteStatusInternalReview = "INTERNAL_REVIEW"
	TechnicalQuoteStatusSentToClient   = "SENT_TO_CLIENT"
	TechnicalQuoteStatusClientApproved = "CLIENT_APPROVED"
	TechnicalQuoteStatusClientRejected = "CLIENT_REJECTED"
)

//============== СТАТУСЫ ДЖОБОВ (JOBS) ==============

const (
	JobStatusNew       = "NEW"
	JobStatusActive    = "ACTIVE"
	JobStatusCompleted = "COMPLETED"
)

//============== НАПРАВЛЕНИЯ И РЕЖИМЫ ПЕРЕВОЗКИ ==============

const (
	DirectionImport = "IMP"
	DirectionExport = "EXP"
)

const (
	ModeSea  = "SEA"
	ModeAir  = "AIR"
	ModeRoad = "ROAD"
	ModeRail = "RAIL"
)

//============== ТИПЫ СУЩНОСТЕЙ (для аудита и грантов) ==============

const (
	EntityTypeQuote          = "quote"
	EntityTypeTechnicalQuote = "technical_quote"
	EntityTypeJob            = "job"
	EntityTypeContainer      = "container"
)

//============== ТИПЫ УВЕДОМЛЕНИЙ ==============

const (
	NotificationTypeEditRequested = "EDIT_REQUESTED"
	NotificationTypeEditApproved  = "EDIT_APPROVED"
)

const (
	NotificationStatusPending  = "PENDING"
	NotificationStatusApproved = "APPROVED"
	NotificationStatusRejected = "REJECTED"
)

//============== ДЕЙСТВИЯ АУДИТА ==============

const (
	AuditActionStatusChange   = "STATUS_CHANGE"
	AuditActionCreate         = "CREATE"
	AuditActionUpdate         = "UPDATE"
	AuditActionDelete         = "DELETE"
	AuditActionEditRequested  = "EDIT_REQUESTED"
	AuditActionEditApproved   = "EDIT_APPROVED"
	AuditActionEditConsumed   = "EDIT_CONSUMED"
	AuditActionSentToClient   = "SENT_TO_CLIENT"
	AuditActionClientDecision = "CLIENT_DECISION"
	AuditActionTrackingEvent  = "TRACKING_EVENT"
	AuditActionStageAdvanced  = "STAGE_ADVANCED"
	AuditActionJobInitiated   = "JOB_INITIATED"
	AuditActionJobCompleted   = "JOB_COMPLETED"
)

//============== КЛЮЧИ КЕША ==============

const (
	// Ключ для курса валюты к референсной. Формат: fx_rate:<currency>
	CacheKeyFxRate = "fx_rate:%s"

	// Ключ для отображаемого имени локации. Формат: location_name:<code>
	CacheKeyLocationName = "location_name:%s"

	// Ключ для отображаемого имени валюты. Формат: currency_name:<code>
	CacheKeyCurrencyName = "currency_name:%s"
)
