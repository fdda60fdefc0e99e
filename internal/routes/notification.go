package routes

import (
	"github.com/labstack/echo/v4"

	"freight-system/internal/controllers"
)

func runNotificationRouter(secureGroup *echo.Group, notificationCtrl *controllers.NotificationController) {
	secureGroup.GET("/notifications", notificationCtrl.GetFeed)
	secureGroup.POST("/notifications/:id/read", notificationCtrl.MarkRead)
}
