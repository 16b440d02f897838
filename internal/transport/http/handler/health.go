package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dudas-espanol/internal/bootstrap"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

// Check reports 503 only when the history store is down; a missing API key is
// surfaced but the page still works and shows the error per question.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	storeStatus := h.checkHistory(ctx)
	llmStatus := h.checkLLM()

	statusCode := http.StatusOK
	if !storeStatus.OK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":        h.app.Config.App.Name,
		"env":        h.app.Config.App.Env,
		"uptime_sec": int(time.Since(h.app.StartedAt).Seconds()),
		"dependencies": gin.H{
			"history": storeStatus,
			"llm":     llmStatus,
		},
	})
}

func (h *HealthHandler) checkHistory(ctx context.Context) dependencyStatus {
	if err := h.app.History.Ping(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true, Message: h.app.Config.Session.Store}
}

func (h *HealthHandler) checkLLM() dependencyStatus {
	if !h.app.Chat.Configured() {
		return dependencyStatus{OK: false, Message: "api key or model missing"}
	}
	return dependencyStatus{OK: true, Message: h.app.Config.LLM.Model}
}
