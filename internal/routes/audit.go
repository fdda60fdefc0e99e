package routes

import (
	"github.com/labstack/echo/v4"

	"freight-system/internal/controllers"
)

func runAuditRouter(secureGroup *echo.Group, auditCtrl *controllers.AuditController) {
	secureGroup.GET("/audit", auditCtrl.List)
}
