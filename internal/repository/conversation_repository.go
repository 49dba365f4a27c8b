package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mcp-chat/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(ctx context.Context, conversation *model.Conversation) error {
	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return fmt.Errorf("create conversation failed: %w", err)
	}
	return nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, id uint) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.WithContext(ctx).First(&conversation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation failed: %w", err)
	}
	return &conversation, nil
}

func (r *ConversationRepository) List(ctx context.Context) ([]model.Conversation, error) {
	var conversations []model.Conversation
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}
	return conversations, nil
}
