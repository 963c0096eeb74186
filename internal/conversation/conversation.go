package conversation

import (
	"time"

	"github.com/Ilan9903/Juris-IA/internal/assistant"
	conversationDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/conversation"
)

const DefaultTitle = "Nouvelle Discussion"

type Conversation struct {
	ID        string    `json:"id"`
	OwnerID   int64     `json:"-"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Message struct {
	ID             int64          `json:"id"`
	ConversationID string         `json:"-"`
	Role           assistant.Role `json:"role"`
	Content        string         `json:"content"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Summary is the list view of a conversation.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Conversation) Summary() Summary {
	return Summary{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt}
}

func FromDataModel(c *conversationDatamodel.Conversation) *Conversation {
	return &Conversation{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func MessageFromDataModel(m *conversationDatamodel.Message) Message {
	return Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           assistant.Role(m.Role),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

// BuildPrompt orders the outbound request: optional system prompt, stored history
// with original roles, then the new user message.
func BuildPrompt(systemPrompt string, history []Message, userMessage string) []assistant.Message {
	out := make([]assistant.Message, 0, len(history)+2)
	if systemPrompt != "" {
		out = append(out, assistant.Message{Role: assistant.RoleSystem, Content: systemPrompt})
	}
	for _, m := range history {
		out = append(out, assistant.Message{Role: m.Role, Content: m.Content})
	}
	return append(out, assistant.Message{Role: assistant.RoleUser, Content: userMessage})
}
