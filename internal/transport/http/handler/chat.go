package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dudas-espanol/internal/ai"
	"dudas-espanol/internal/app"
	"dudas-espanol/internal/transport/http/middleware"
	"dudas-espanol/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.Ask(c.Request.Context(), app.AskInput{
		SessionID: middleware.SessionID(c),
		Content:   req.Content,
	})
	if err != nil {
		_ = c.Error(err)
		writeAskError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	history, err := h.chatService.History(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		}
		return
	}

	response.OK(c, history)
}

func (h *ChatHandler) ResetHistory(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if err := h.chatService.Reset(c.Request.Context(), sessionID); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "reset history failed")
		}
		return
	}

	response.OK(c, gin.H{"reset_session_id": sessionID})
}

func writeAskError(c *gin.Context, err error) {
	failure := app.DescribeFailure(err)
	var statusErr *ai.StatusError

	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrMessageEmpty):
		response.Error(c, http.StatusBadRequest, response.CodeMessageEmpty, failure.Message)
	case errors.Is(err, app.ErrMessageLong):
		response.Error(c, http.StatusBadRequest, response.CodeMessageLong, failure.Message)
	case errors.Is(err, app.ErrLLMConfig):
		response.Error(c, http.StatusServiceUnavailable, response.CodeLLMNotConfigured, failure.Message)
	case errors.Is(err, app.ErrHistory):
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "history store unavailable")
	case errors.As(err, &statusErr):
		response.ErrorWithData(c, http.StatusBadGateway, response.CodeUpstreamStatus, failure.Message, failure)
	case errors.Is(err, ai.ErrEmptyContent):
		response.Error(c, http.StatusBadGateway, response.CodeUpstreamEmpty, failure.Message)
	default:
		response.Error(c, http.StatusBadGateway, response.CodeUpstreamFailed, failure.Message)
	}
}
