package app

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"mcp-chat/internal/model"
)

// MessageStore is the transcript write/read boundary the orchestrator needs.
// Create must be durable on return and fail with ErrConversationNotFound when
// the owning conversation does not exist.
type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
	ListByConversationID(ctx context.Context, conversationID uint) ([]model.Message, error)
}

// TranscriptCache caches a conversation's message list. All methods are
// best-effort from the orchestrator's point of view.
type TranscriptCache interface {
	Get(ctx context.Context, conversationID uint) ([]model.Message, bool, error)
	Set(ctx context.Context, conversationID uint, messages []model.Message) error
	Delete(ctx context.Context, conversationID uint) error
	MarkDirty(ctx context.Context, conversationID uint) error
	IsDirty(ctx context.Context, conversationID uint) (bool, error)
}

// TurnPublisher announces a completed, persisted chat turn to downstream
// consumers. Publishing is fire-and-forget; it never affects the stream.
type TurnPublisher interface {
	Publish(ctx context.Context, conversationID uint) error
}

type ChatService struct {
	messages  MessageStore
	cache     TranscriptCache
	publisher TurnPublisher
	logger    *zap.Logger
}

func NewChatService(messages MessageStore, cache TranscriptCache, publisher TurnPublisher, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		messages:  messages,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

// StreamChat drives one chat turn. When conversationID is set, the user
// message is persisted before the first provider call and the assistant
// message after the stream ends normally; without an id the stream still runs
// but nothing is written. Each fragment is handed to onFragment in emission
// order, with a single "\n\n" fragment inserted ahead of the first chunk that
// has non-whitespace content. The full accumulated response is returned.
func (s *ChatService) StreamChat(
	ctx context.Context,
	pipeline *Pipeline,
	message string,
	conversationID *uint,
	onFragment func(string) error,
) (string, error) {
	if pipeline == nil {
		return "", ErrInvalidInput
	}
	if strings.TrimSpace(message) == "" {
		return "", ErrMessageEmpty
	}

	if conversationID != nil {
		userMessage := &model.Message{
			ConversationID: *conversationID,
			Role:           model.RoleUser,
			Content:        message,
			Model:          pipeline.Model(),
		}
		if err := s.messages.Create(ctx, userMessage); err != nil {
			return "", err
		}
		s.invalidate(ctx, *conversationID)
	}

	stream, err := pipeline.Stream(ctx, message)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var full strings.Builder
	padded := false
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		text := chunk.Text()
		if !padded && strings.TrimSpace(text) != "" {
			padded = true
			full.WriteString("\n\n")
			if err := onFragment("\n\n"); err != nil {
				return "", err
			}
		}
		full.WriteString(text)
		if err := onFragment(text); err != nil {
			return "", err
		}
	}

	// A disconnected client cancels the request context; a partial response
	// is never finalized.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if conversationID != nil {
		assistantMessage := &model.Message{
			ConversationID: *conversationID,
			Role:           model.RoleAssistant,
			Content:        full.String(),
			Model:          pipeline.Model(),
		}
		if err := s.messages.Create(ctx, assistantMessage); err != nil {
			return "", err
		}
		s.invalidate(ctx, *conversationID)

		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, *conversationID); err != nil {
				s.logger.Warn("publish turn event failed",
					zap.Uint("conversation_id", *conversationID),
					zap.Error(err),
				)
			}
		}
	}

	return full.String(), nil
}

func (s *ChatService) invalidate(ctx context.Context, conversationID uint) {
	if s.cache == nil {
		return
	}
	_ = s.cache.MarkDirty(ctx, conversationID)
	_ = s.cache.Delete(ctx, conversationID)
}
