package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dudas-espanol/internal/app"
	"dudas-espanol/internal/model"
	"dudas-espanol/internal/transport/http/middleware"
)

const pageTitle = "Dudas y dificultades del español"

// PageHandler serves the single chat page: history, the last failure if any, and the input form.
type PageHandler struct {
	chatService *app.ChatService
}

type pageData struct {
	Title     string
	MaxLength int
	Turns     []model.Turn
	Failure   *app.Failure
	Draft     string
}

func NewPageHandler(chatService *app.ChatService) *PageHandler {
	return &PageHandler{chatService: chatService}
}

func (h *PageHandler) Show(c *gin.Context) {
	h.render(c, http.StatusOK, nil, "")
}

// Ask handles the form post. Success redirects back to the page so a reload
// does not resend the question; failures are rendered in place.
func (h *PageHandler) Ask(c *gin.Context) {
	content := c.PostForm("content")

	_, err := h.chatService.Ask(c.Request.Context(), app.AskInput{
		SessionID: middleware.SessionID(c),
		Content:   content,
	})
	if err != nil {
		_ = c.Error(err)
		failure := app.DescribeFailure(err)

		status := http.StatusBadGateway
		draft := ""
		switch {
		case errors.Is(err, app.ErrMessageEmpty), errors.Is(err, app.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, app.ErrMessageLong):
			status = http.StatusBadRequest
			draft = content
		case errors.Is(err, app.ErrLLMConfig):
			status = http.StatusServiceUnavailable
		case errors.Is(err, app.ErrHistory):
			status = http.StatusInternalServerError
			draft = content
		}
		h.render(c, status, &failure, draft)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *PageHandler) Reset(c *gin.Context) {
	if err := h.chatService.Reset(c.Request.Context(), middleware.SessionID(c)); err != nil {
		_ = c.Error(err)
		failure := app.DescribeFailure(err)
		h.render(c, http.StatusInternalServerError, &failure, "")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *PageHandler) render(c *gin.Context, status int, failure *app.Failure, draft string) {
	turns, err := h.chatService.History(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		_ = c.Error(err)
		if failure == nil {
			f := app.DescribeFailure(err)
			failure = &f
			status = http.StatusInternalServerError
		}
		turns = nil
	}

	c.HTML(status, "index.html", pageData{
		Title:     pageTitle,
		MaxLength: app.MaxContentRunes,
		Turns:     turns,
		Failure:   failure,
		Draft:     draft,
	})
}
