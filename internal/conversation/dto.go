package conversation

import "github.com/Ilan9903/Juris-IA/internal/core/common/validation"

type SendMessageDTO struct {
	Message string `json:"message"`
}

func (d SendMessageDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("message", d.Message).Required()
	return validation.AsError(v.Validate())
}

type ConversationsResponse struct {
	Conversations []Summary `json:"conversations"`
}

type ConversationResponse struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// SendResult carries the full message list; UpdatedTitle is set only when the
// message triggered title generation.
type SendResult struct {
	ConversationID string    `json:"conversationId,omitempty"`
	Messages       []Message `json:"messages"`
	UpdatedTitle   string    `json:"updatedTitle,omitempty"`
}
