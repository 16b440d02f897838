package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"dudas-espanol/internal/bootstrap"
	"dudas-espanol/internal/pkg/markdown"
	"dudas-espanol/internal/transport/http/handler"
	"dudas-espanol/internal/transport/http/middleware"
	"dudas-espanol/web"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(app.Logger.Named("http")), gin.Recovery())
	router.SetHTMLTemplate(pageTemplates())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	secureCookie := app.Config.App.Env != "dev"
	session := middleware.Session(app.Config.Session.CookieName, secureCookie)

	pageHandler := handler.NewPageHandler(app.Chat)
	page := router.Group("/", session)
	page.GET("/", pageHandler.Show)
	page.POST("/", pageHandler.Ask)
	page.POST("/reset", pageHandler.Reset)

	chatHandler := handler.NewChatHandler(app.Chat)
	chatGroup := router.Group("/api/v1/chat", session)
	chatGroup.POST("/messages", chatHandler.SendMessage)
	chatGroup.GET("/history", chatHandler.GetHistory)
	chatGroup.DELETE("/history", chatHandler.ResetHistory)

	return router
}

func pageTemplates() *template.Template {
	return template.Must(template.New("").
		Funcs(template.FuncMap{"markdown": markdown.Render}).
		ParseFS(web.Templates, "templates/*.html"))
}
