package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mcp-chat/internal/app"
	"mcp-chat/internal/transport/http/response"
)

type ChatHandler struct {
	factory     *app.ModelFactory
	chatService *app.ChatService
	logger      *zap.Logger
}

type ChatRequest struct {
	Message        string `json:"message" binding:"required"`
	Model          string `json:"model" binding:"required"`
	ConversationID *uint  `json:"conversation_id"`
}

func NewChatHandler(factory *app.ModelFactory, chatService *app.ChatService, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		factory:     factory,
		chatService: chatService,
		logger:      logger,
	}
}

// Chat streams the model response as raw text fragments over an event-stream
// response. The transport adds no framing: each fragment is written and
// flushed as-is, and an error after the first byte simply terminates the
// stream.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	pipeline, err := h.factory.Resolve(req.Model)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeUnsupportedModel, err.Error())
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "stream not supported")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	started := false
	_, err = h.chatService.StreamChat(
		c.Request.Context(),
		pipeline,
		req.Message,
		req.ConversationID,
		func(fragment string) error {
			if _, writeErr := c.Writer.Write([]byte(fragment)); writeErr != nil {
				return writeErr
			}
			started = true
			flusher.Flush()
			return nil
		},
	)
	if err != nil {
		if !started {
			switch {
			case errors.Is(err, app.ErrMessageEmpty), errors.Is(err, app.ErrInvalidInput):
				response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			case errors.Is(err, app.ErrConversationNotFound):
				response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
			default:
				response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "chat stream failed")
			}
			return
		}
		// Fragments already delivered stay delivered; the caller sees an
		// abnormally terminated stream.
		h.logger.Error("chat stream aborted",
			zap.String("model", req.Model),
			zap.Error(err),
		)
	}
}
