package conversation

import "time"

type Conversation struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	OwnerID   int64     `gorm:"column:owner_id;not null;index:idx_conversations_owner_created,priority:1"`
	Title     string    `gorm:"column:title;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:idx_conversations_owner_created,priority:2,sort:desc"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type Message struct {
	ID             int64     `gorm:"primaryKey"`
	ConversationID string    `gorm:"column:conversation_id;type:varchar(36);not null;index"`
	Role           string    `gorm:"column:role;not null"`
	Content        string    `gorm:"column:content;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}
