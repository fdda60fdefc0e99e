package errors

import (
	"fmt"
	"net/http"
)

// HttpError - единый конверт ошибки для всего приложения.
// Code определяет HTTP-статус, Message показывается пользователю,
// Err хранит техническую причину, Details - структурированные детали
// (например, флаг needs_approval для запроса доступа на редактирование).
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error {
	return e.Err
}

func NewHttpError(code int, message string, err error, details map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

// Общие сентинелы. Сервисы возвращают их как есть либо заворачивают через %w,
// контроллеры и тесты сравнивают через errors.Is.
var (
	ErrNotFound         = NewHttpError(http.StatusNotFound, "Запись не найдена", nil, nil)
	ErrConflict         = NewHttpError(http.StatusConflict, "Конфликт данных: запись уже существует или запрос уже обрабатывается", nil, nil)
	ErrInvalidState     = NewHttpError(http.StatusConflict, "Операция недопустима в текущем статусе", nil, nil)
	ErrLocked           = NewHttpError(http.StatusLocked, "Запись заблокирована навсегда и не подлежит изменению", nil, nil)
	ErrPermissionDenied = NewHttpError(http.StatusForbidden, "Недостаточно прав для выполнения операции", nil, nil)
	ErrDuplicateStatus  = NewHttpError(http.StatusConflict, "Событие с таким статусом уже зарегистрировано для контейнера", nil, nil)
	ErrOutOfOrder       = NewHttpError(http.StatusConflict, "Нарушен порядок статусов: новое событие не может предшествовать последнему", nil, nil)

	// JWT и токены
	ErrInvalidSigningMethod = NewHttpError(http.StatusUnauthorized, "Неверный метод подписи токена", nil, nil)
	ErrInvalidToken         = NewHttpError(http.StatusUnauthorized, "Недопустимый токен", nil, nil)
	ErrTokenExpired         = NewHttpError(http.StatusUnauthorized, "Срок действия токена истёк", nil, nil)
	ErrTokenNotYetValid     = NewHttpError(http.StatusUnauthorized, "Токен ещё не активен", nil, nil)
	ErrTokenIsNotAccess     = NewHttpError(http.StatusUnauthorized, "Ожидался access-токен", nil, nil)

	// Авторизация
	ErrEmptyAuthHeader    = NewHttpError(http.StatusUnauthorized, "Заголовок авторизации отсутствует", nil, nil)
	ErrInvalidAuthHeader  = NewHttpError(http.StatusUnauthorized, "Неверный формат заголовка авторизации", nil, nil)
	ErrInvalidCredentials = NewHttpError(http.StatusUnauthorized, "Неверные учётные данные", nil, nil)

	// Контекст
	ErrUserIDNotFoundInContext = NewHttpError(http.StatusUnauthorized, "UserID не найден в контексте запроса", nil, nil)
)

// NewValidationError - некорректный или неполный ввод (например, пустые remarks).
func NewValidationError(format string, args ...interface{}) *HttpError {
	return NewHttpError(http.StatusBadRequest, fmt.Sprintf(format, args...), nil, nil)
}

// NewInvalidTransitionError - недопустимый переход статуса для state machine.
func NewInvalidTransitionError(from, to string) *HttpError {
	return &HttpError{
		Code:    http.StatusConflict,
		Message: fmt.Sprintf("Недопустимый переход статуса: %s -> %s", from, to),
		Err:     ErrInvalidState,
		Details: map[string]interface{}{"from": from, "to": to},
	}
}

// NewPreconditionFailedError - предусловие операции не выполнено
// (например, не все документы подтверждены перед сменой этапа).
func NewPreconditionFailedError(format string, args ...interface{}) *HttpError {
	return NewHttpError(http.StatusPreconditionFailed, fmt.Sprintf(format, args...), nil, nil)
}

// NewEditApprovalRequiredError - особый случай PermissionDenied: актёру нужно
// запросить одноразовый доступ на редактирование. В Details уходит id сущности,
// на которую следует оформить запрос.
func NewEditApprovalRequiredError(entityType string, entityID uint64) *HttpError {
	return &HttpError{
		Code:    http.StatusForbidden,
		Message: "Запись закрыта для редактирования. Запросите одобрение на одноразовое изменение.",
		Err:     ErrPermissionDenied,
		Details: map[string]interface{}{
			"needs_approval": true,
			"entity_type":    entityType,
			"entity_id":      entityID,
		},
	}
}
