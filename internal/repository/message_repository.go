package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mcp-chat/internal/app"
	"mcp-chat/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts one message as a single atomic unit. The owning conversation
// is verified inside the same transaction and its updated_at is touched, so
// conversation listings stay ordered by latest activity.
func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Conversation{}).Where("id = ?", msg.ConversationID).Count(&count).Error; err != nil {
			return fmt.Errorf("check conversation failed: %w", err)
		}
		if count == 0 {
			return app.ErrConversationNotFound
		}

		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("create message failed: %w", err)
		}

		if err := tx.Model(&model.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("updated_at", time.Now()).Error; err != nil {
			return fmt.Errorf("touch conversation failed: %w", err)
		}
		return nil
	})
}

func (r *MessageRepository) ListByConversationID(ctx context.Context, conversationID uint) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}
