package routes

import (
	"github.com/labstack/echo/v4"

	"freight-system/internal/controllers"
)

func runEditAccessRouter(secureGroup *echo.Group, editCtrl *controllers.EditAccessController) {
	// entityType: technical_quote | job
	secureGroup.POST("/edit-requests/:entityType/:id", editCtrl.RequestEdit)
	secureGroup.POST("/edit-requests/:entityType/:id/approve", editCtrl.ApproveEdit)
}
