package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mcp-chat/internal/app"
	"mcp-chat/internal/model"
)

// These tests run against a real database. Set POSTGRES_TEST_DSN to enable,
// e.g. "host=127.0.0.1 user=postgres dbname=mcp_chat_test sslmode=disable".
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Conversation{}, &model.Message{}))

	t.Cleanup(func() {
		db.Exec("DELETE FROM messages")
		db.Exec("DELETE FROM conversations")
	})
	return db
}

func TestMessageRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	conversations := NewConversationRepository(db)
	messages := NewMessageRepository(db)

	conversation := &model.Conversation{Title: "Round trip"}
	require.NoError(t, conversations.Create(ctx, conversation))

	userMsg := &model.Message{
		ConversationID: conversation.ID,
		Role:           model.RoleUser,
		Content:        "Hello",
		Model:          "gpt-3.5-turbo",
	}
	require.NoError(t, messages.Create(ctx, userMsg))

	assistantMsg := &model.Message{
		ConversationID: conversation.ID,
		Role:           model.RoleAssistant,
		Content:        "\n\nHi there!",
		Model:          "gpt-3.5-turbo",
	}
	require.NoError(t, messages.Create(ctx, assistantMsg))

	listed, err := messages.ListByConversationID(ctx, conversation.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	assert.Equal(t, model.RoleUser, listed[0].Role)
	assert.Equal(t, "Hello", listed[0].Content)
	assert.Equal(t, "gpt-3.5-turbo", listed[0].Model)
	assert.Equal(t, model.RoleAssistant, listed[1].Role)
	assert.Equal(t, "\n\nHi there!", listed[1].Content)
	assert.False(t, listed[1].CreatedAt.Before(listed[0].CreatedAt))
}

func TestMessageCreateUnknownConversation(t *testing.T) {
	db := testDB(t)
	messages := NewMessageRepository(db)

	err := messages.Create(context.Background(), &model.Message{
		ConversationID: 999999,
		Role:           model.RoleUser,
		Content:        "orphan",
		Model:          "gpt-3.5-turbo",
	})
	require.ErrorIs(t, err, app.ErrConversationNotFound)
}

func TestConversationListOrderedByActivity(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	conversations := NewConversationRepository(db)
	messages := NewMessageRepository(db)

	older := &model.Conversation{Title: "older"}
	require.NoError(t, conversations.Create(ctx, older))
	newer := &model.Conversation{Title: "newer"}
	require.NoError(t, conversations.Create(ctx, newer))

	// writing into the older conversation bumps it to the top
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, messages.Create(ctx, &model.Message{
		ConversationID: older.ID,
		Role:           model.RoleUser,
		Content:        "bump",
		Model:          "deepseek-r1",
	}))

	listed, err := conversations.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "older", listed[0].Title)
	assert.Equal(t, "newer", listed[1].Title)
}

func TestGetConversationMissingReturnsNil(t *testing.T) {
	db := testDB(t)
	conversations := NewConversationRepository(db)

	conversation, err := conversations.GetByID(context.Background(), 424242)
	require.NoError(t, err)
	assert.Nil(t, conversation)
}
