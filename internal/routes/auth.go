package routes

import (
	"github.com/labstack/echo/v4"

	"freight-system/internal/controllers"
)

func runAuthRouter(api *echo.Group, authCtrl *controllers.AuthController) {
	api.POST("/auth/login", authCtrl.Login)
	api.POST("/auth/refresh", authCtrl.Refresh)
}
