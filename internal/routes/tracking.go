package routes

import (
	"github.com/labstack/echo/v4"

	"freight-system/internal/controllers"
)

func runTrackingRouter(secureGroup *echo.Group, trackingCtrl *controllers.TrackingController) {
	secureGroup.GET("/jobs/:id/tracking", trackingCtrl.ListByJob)
	secureGroup.POST("/jobs/:id/tracking", trackingCtrl.AppendEvent)
}
