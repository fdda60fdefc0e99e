package routes

import (
	"github.com/labstack/echo/v4"

	"freight-system/internal/controllers"
)

func runTechnicalQuoteRouter(api, secureGroup *echo.Group, tqCtrl *controllers.TechnicalQuoteController) {
	secureGroup.POST("/technical-quotes", tqCtrl.CreateOrReplace)
	secureGroup.GET("/technical-quotes/:id", tqCtrl.FindTechnicalQuote)
	secureGroup.POST("/technical-quotes/:id/send", tqCtrl.SendToClient)

	// Решение клиента приходит по публичной ссылке, без авторизации.
	api.POST("/public/technical-quotes/:id/decision", tqCtrl.ClientDecision)
}
