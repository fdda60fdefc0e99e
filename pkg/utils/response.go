package utils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "freight-system/pkg/errors"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
	Total   *uint64     `json:"total,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int, totalCount ...uint64) error {
	resp := &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	}
	if len(totalCount) > 0 {
		resp.Total = &totalCount[0]
	}
	return ctx.JSON(code, resp)
}

// ErrorResponse разворачивает цепочку ошибок до первого HttpError и отвечает
// его статусом и деталями. Всё остальное - 500 без технических подробностей.
func ErrorResponse(ctx echo.Context, err error) error {
	code := http.StatusInternalServerError
	message := "Внутренняя ошибка сервера"
	var details interface{}

	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = httpErr.Message
		if httpErr.Details != nil {
			details = httpErr.Details
		}
	}

	return ctx.JSON(code, &HttpResponse{
		Status:  false,
		Message: message,
		Details: details,
	})
}
