package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizzit/handlers"
	"quizzit/middleware"
)

func SetupRoutes(
	router *gin.Engine,
	formHandler *handlers.FormHandler,
	gameHandler *handlers.GameHandler,
	limiter *middleware.RateLimiter,
	jwtSecret string,
) {
	auth := middleware.AuthMiddleware(jwtSecret)
	limited := limiter.Middleware()

	api := router.Group("/api")
	api.Use(auth)
	{
		forms := api.Group("/forms")
		{
			forms.GET("", formHandler.ListForms)
			forms.POST("", formHandler.CreateForm)
			forms.GET("/:id", formHandler.GetForm)
			forms.DELETE("/:id", formHandler.DeleteForm)
		}

		games := api.Group("/games")
		{
			games.POST("", gameHandler.CreateSession)
			games.POST("/join", limited, gameHandler.JoinSession)
			games.GET("/pin/:pin", gameHandler.GetSessionByPin)
			games.POST("/:id/start", gameHandler.StartGame)
			games.POST("/:id/questions/:index/start", gameHandler.StartQuestion)
			games.GET("/:id/questions/:index/results", gameHandler.QuestionResults)
			games.POST("/:id/next", gameHandler.NextQuestion)
			games.POST("/:id/finish", gameHandler.FinishGame)
			games.POST("/:id/answers", limited, gameHandler.SubmitAnswer)
			games.GET("/:id/leaderboard", gameHandler.Leaderboard)
		}
	}

	// Browsers cannot set headers on websocket requests, so the token may
	// also arrive as ?token=.
	router.GET("/ws/games/:id", auth, gameHandler.Subscribe)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
