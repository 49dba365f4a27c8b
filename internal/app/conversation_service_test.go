package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-chat/internal/model"
)

type fakeConversationStore struct {
	conversations []model.Conversation
	nextID        uint
}

func (s *fakeConversationStore) Create(_ context.Context, conversation *model.Conversation) error {
	s.nextID++
	conversation.ID = s.nextID
	conversation.CreatedAt = time.Now()
	conversation.UpdatedAt = conversation.CreatedAt
	s.conversations = append(s.conversations, *conversation)
	return nil
}

func (s *fakeConversationStore) GetByID(_ context.Context, id uint) (*model.Conversation, error) {
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			return &s.conversations[i], nil
		}
	}
	return nil, nil
}

func (s *fakeConversationStore) List(_ context.Context) ([]model.Conversation, error) {
	return s.conversations, nil
}

type listOnlyMessageStore struct {
	messages []model.Message
}

func (s *listOnlyMessageStore) Create(_ context.Context, msg *model.Message) error {
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *listOnlyMessageStore) ListByConversationID(_ context.Context, conversationID uint) ([]model.Message, error) {
	var out []model.Message
	for _, msg := range s.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func TestCreateConversationDefaultsTitle(t *testing.T) {
	store := &fakeConversationStore{}
	service := NewConversationService(store, &listOnlyMessageStore{}, nil, nil)

	conversation, err := service.Create(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, "New Conversation", conversation.Title)

	titled, err := service.Create(context.Background(), "Planning")
	require.NoError(t, err)
	assert.Equal(t, "Planning", titled.Title)
}

func TestGetConversationNotFound(t *testing.T) {
	service := NewConversationService(&fakeConversationStore{}, &listOnlyMessageStore{}, nil, nil)

	_, err := service.Get(context.Background(), 42)
	require.ErrorIs(t, err, ErrConversationNotFound)
}

func TestGetMessagesEmptyTranscriptReportsNotFound(t *testing.T) {
	service := NewConversationService(&fakeConversationStore{}, &listOnlyMessageStore{}, nil, nil)

	_, err := service.GetMessages(context.Background(), 1)
	require.ErrorIs(t, err, ErrConversationNotFound)
}

func TestGetMessagesReturnsTranscript(t *testing.T) {
	messages := &listOnlyMessageStore{messages: []model.Message{
		{ConversationID: 1, Role: model.RoleUser, Content: "Hello", Model: "gpt-3.5-turbo"},
		{ConversationID: 1, Role: model.RoleAssistant, Content: "\n\nHi there!", Model: "gpt-3.5-turbo"},
		{ConversationID: 2, Role: model.RoleUser, Content: "other", Model: "gemini-pro"},
	}}
	service := NewConversationService(&fakeConversationStore{}, messages, nil, nil)

	transcript, err := service.GetMessages(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, transcript, 2)
	assert.Equal(t, "Hello", transcript[0].Content)
	assert.Equal(t, model.RoleAssistant, transcript[1].Role)
}
