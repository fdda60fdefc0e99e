package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"freight-system/pkg/contextkeys"
	apperrors "freight-system/pkg/errors"
	"freight-system/pkg/service"
	"freight-system/pkg/utils"
)

// PermissionLoader отдаёт карту пермишенов актёра. Реализуется репозиторием
// пользователей; middleware знает только этот узкий контракт.
type PermissionLoader interface {
	GetPermissionsMap(ctx context.Context, userID uint64) (map[string]bool, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	permLoader PermissionLoader
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, permLoader PermissionLoader, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		permLoader: permLoader,
		logger:     logger,
	}
}

// Auth - это основная функция middleware.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// 1. Извлекаем токен из заголовка
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: Пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader)
		}

		// 2. Проверяем формат заголовка "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader)
		}

		tokenString := parts[1]

		// 3. Валидируем токен
		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err)
		}

		// 4. Убеждаемся, что это не refresh токен
		if claims.IsRefreshToken {
			m.logger.Warn("AuthMiddleware: Попытка доступа с refresh токеном")
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess)
		}

		// 5. Загружаем пермишены и кладём актёра в контекст запроса
		perms, err := m.permLoader.GetPermissionsMap(c.Request().Context(), claims.UserID)
		if err != nil {
			m.logger.Warn("AuthMiddleware: Не удалось загрузить пермишены", zap.Uint64("userID", claims.UserID), zap.Error(err))
			return utils.ErrorResponse(c, apperrors.ErrPermissionDenied)
		}

		ctx := c.Request().Context()
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, contextkeys.UserPermissionsMapKey, perms)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
