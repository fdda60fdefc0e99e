package routes

import (
	"github.com/labstack/echo/v4"

	"freight-system/internal/controllers"
)

func runJobRouter(secureGroup *echo.Group, jobCtrl *controllers.JobController) {
	secureGroup.GET("/jobs", jobCtrl.GetJobs)
	secureGroup.POST("/jobs", jobCtrl.CreateJob)
	secureGroup.GET("/jobs/:id", jobCtrl.FindJob)
	secureGroup.POST("/jobs/:id/initiate", jobCtrl.InitiateJob)
	secureGroup.POST("/jobs/:id/advance-stage", jobCtrl.AdvanceStage)
	secureGroup.POST("/jobs/:id/complete", jobCtrl.CompleteJob)
	secureGroup.PUT("/jobs/:id/documents", jobCtrl.UpdateDocument)
	secureGroup.DELETE("/jobs/:id", jobCtrl.DeleteJob)
}
