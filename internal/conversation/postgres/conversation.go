package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	conversationDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/conversation"
	"github.com/Ilan9903/Juris-IA/internal/conversation"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) conversation.RepositoryAPI {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(ctx context.Context, c *conversationDatamodel.Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ConversationRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*conversationDatamodel.Conversation, error) {
	var rows []*conversationDatamodel.Conversation
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *ConversationRepository) GetOwned(ctx context.Context, id string, ownerID int64) (*conversationDatamodel.Conversation, error) {
	var c conversationDatamodel.Conversation
	err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ConversationRepository) Messages(ctx context.Context, conversationID string) ([]*conversationDatamodel.Message, error) {
	var rows []*conversationDatamodel.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// AppendMessage inserts the message and bumps the conversation's updated_at.
func (r *ConversationRepository) AppendMessage(ctx context.Context, m *conversationDatamodel.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&conversationDatamodel.Conversation{}).
			Where("id = ?", m.ConversationID).
			Update("updated_at", m.CreatedAt).Error
	})
}

func (r *ConversationRepository) UpdateTitle(ctx context.Context, id, title string) error {
	return r.db.WithContext(ctx).Model(&conversationDatamodel.Conversation{}).Where("id = ?", id).Update("title", title).Error
}

// DeleteOwned removes messages then the conversation, only when ownerID owns it.
func (r *ConversationRepository) DeleteOwned(ctx context.Context, id string, ownerID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&conversationDatamodel.Conversation{}).
			Where("id = ? AND owner_id = ?", id, ownerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&conversationDatamodel.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&conversationDatamodel.Conversation{}).Error
	})
}
