package routes

import (
	"github.com/labstack/echo/v4"

	"freight-system/internal/controllers"
)

func runQuoteRouter(secureGroup *echo.Group, quoteCtrl *controllers.QuoteController) {
	secureGroup.GET("/quotes", quoteCtrl.GetQuotes)
	secureGroup.POST("/quotes", quoteCtrl.CreateQuote)
	secureGroup.GET("/quotes/:id", quoteCtrl.FindQuote)
	secureGroup.POST("/quotes/:id/transition", quoteCtrl.TransitionQuote)
}
