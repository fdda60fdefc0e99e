package routes

import (
	"github.com/labstack/echo/v4"

	"freight-system/internal/controllers"
)

func runReportRouter(secureGroup *echo.Group, reportCtrl *controllers.ReportController) {
	secureGroup.GET("/reports/jobs/:id/tracking", reportCtrl.DownloadTrackingReport)
}
