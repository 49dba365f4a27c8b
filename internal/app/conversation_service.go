package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"mcp-chat/internal/model"
)

// ConversationStore is the conversation half of the transcript store.
// GetByID returns (nil, nil) when the conversation does not exist.
type ConversationStore interface {
	Create(ctx context.Context, conversation *model.Conversation) error
	GetByID(ctx context.Context, id uint) (*model.Conversation, error)
	List(ctx context.Context) ([]model.Conversation, error)
}

type ConversationService struct {
	conversations ConversationStore
	messages      MessageStore
	cache         TranscriptCache
	logger        *zap.Logger
}

func NewConversationService(
	conversations ConversationStore,
	messages MessageStore,
	cache TranscriptCache,
	logger *zap.Logger,
) *ConversationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		cache:         cache,
		logger:        logger,
	}
}

func (s *ConversationService) Create(ctx context.Context, title string) (*model.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New Conversation"
	}

	conversation := &model.Conversation{Title: title}
	if err := s.conversations.Create(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *ConversationService) Get(ctx context.Context, id uint) (*model.Conversation, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	conversation, err := s.conversations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	return conversation, nil
}

// List returns all conversations ordered by most recent activity first.
func (s *ConversationService) List(ctx context.Context) ([]model.Conversation, error) {
	return s.conversations.List(ctx)
}

// GetMessages returns a conversation's transcript in creation order. An empty
// transcript is reported as ErrConversationNotFound, matching the original
// API behavior of conflating the two cases.
func (s *ConversationService) GetMessages(ctx context.Context, conversationID uint) ([]model.Message, error) {
	if conversationID == 0 {
		return nil, ErrInvalidInput
	}

	if s.cache != nil {
		dirty, err := s.cache.IsDirty(ctx, conversationID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.cache.Get(ctx, conversationID); cacheErr == nil && hit && len(cached) > 0 {
				return cached, nil
			}
		}
	}

	messages, err := s.messages.ListByConversationID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, ErrConversationNotFound
	}

	if s.cache != nil {
		if dirty, dirtyErr := s.cache.IsDirty(ctx, conversationID); dirtyErr == nil && !dirty {
			if err := s.cache.Set(ctx, conversationID, messages); err != nil {
				s.logger.Warn("cache transcript failed",
					zap.Uint("conversation_id", conversationID),
					zap.Error(err),
				)
			}
		}
	}
	return messages, nil
}
