package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mcp-chat/internal/app"
	"mcp-chat/internal/transport/http/response"
)

type ConversationHandler struct {
	conversationService *app.ConversationService
}

type CreateConversationRequest struct {
	Title string `json:"title" binding:"max=255"`
}

func NewConversationHandler(conversationService *app.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

func (h *ConversationHandler) Create(c *gin.Context) {
	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	conversation, err := h.conversationService.Create(c.Request.Context(), req.Title)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create conversation failed")
		return
	}

	response.OK(c, conversation)
}

func (h *ConversationHandler) List(c *gin.Context) {
	conversations, err := h.conversationService.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list conversations failed")
		return
	}

	response.OK(c, conversations)
}

func (h *ConversationHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	conversation, err := h.conversationService.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get conversation failed")
		}
		return
	}

	response.OK(c, conversation)
}

func (h *ConversationHandler) GetMessages(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	messages, err := h.conversationService.GetMessages(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get messages failed")
		}
		return
	}

	response.OK(c, messages)
}

func parseID(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid conversation id")
		return 0, false
	}
	return uint(id64), true
}
