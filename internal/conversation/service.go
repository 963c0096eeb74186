package conversation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/assistant"
	conversationDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/conversation"
	"github.com/Ilan9903/Juris-IA/internal/prompttemplate"
)

type RepositoryAPI interface {
	Create(ctx context.Context, c *conversationDatamodel.Conversation) error
	ListByOwner(ctx context.Context, ownerID int64) ([]*conversationDatamodel.Conversation, error)
	GetOwned(ctx context.Context, id string, ownerID int64) (*conversationDatamodel.Conversation, error)
	Messages(ctx context.Context, conversationID string) ([]*conversationDatamodel.Message, error)
	AppendMessage(ctx context.Context, m *conversationDatamodel.Message) error
	UpdateTitle(ctx context.Context, id, title string) error
	DeleteOwned(ctx context.Context, id string, ownerID int64) error
}

type AssistantAPI interface {
	Reply(ctx context.Context, messages []assistant.Message) string
	Title(ctx context.Context, message string) string
}

type PromptSource interface {
	Published(ctx context.Context, name string) (*prompttemplate.PromptTemplate, error)
}

type Service struct {
	repo      RepositoryAPI
	assistant AssistantAPI
	prompts   PromptSource
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, assistant AssistantAPI, prompts PromptSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, assistant: assistant, prompts: prompts, logger: logger}
}

func (s *Service) Create(ctx context.Context, userID int64) (*Conversation, error) {
	row := &conversationDatamodel.Conversation{
		ID:      uuid.NewString(),
		OwnerID: userID,
		Title:   DefaultTitle,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	s.logger.InfoContext(ctx, "conversation created", "user_id", userID, "conversation_id", row.ID)
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]Summary, error) {
	rows, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row).Summary())
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, userID int64, conversationID string) (*Conversation, []Message, error) {
	conv, err := s.owned(ctx, userID, conversationID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.messages(ctx, conv.ID)
	if err != nil {
		return nil, nil, err
	}
	return conv, messages, nil
}

// Delete is idempotent: unknown or foreign conversations are left alone and still succeed.
func (s *Service) Delete(ctx context.Context, userID int64, conversationID string) error {
	if _, err := uuid.Parse(conversationID); err != nil {
		return nil
	}
	if err := s.repo.DeleteOwned(ctx, conversationID, userID); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	s.logger.InfoContext(ctx, "conversation deleted", "user_id", userID, "conversation_id", conversationID)
	return nil
}

// SendMessage appends the user message and exactly one assistant reply. The first
// message of a conversation also names it.
func (s *Service) SendMessage(ctx context.Context, userID int64, conversationID string, dto SendMessageDTO) (*SendResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	conv, err := s.owned(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	history, err := s.messages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	result := &SendResult{}
	if len(history) == 0 {
		title := s.assistant.Title(ctx, dto.Message)
		if err := s.repo.UpdateTitle(ctx, conv.ID, title); err != nil {
			return nil, fmt.Errorf("update title: %w", err)
		}
		result.UpdatedTitle = title
	}

	prompt := BuildPrompt(s.systemPrompt(ctx), history, dto.Message)

	if err := s.append(ctx, conv.ID, assistant.RoleUser, dto.Message); err != nil {
		return nil, err
	}

	reply := s.assistant.Reply(ctx, prompt)
	if err := s.append(ctx, conv.ID, assistant.RoleAssistant, reply); err != nil {
		return nil, err
	}

	result.Messages, err = s.messages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "message answered",
		"user_id", userID,
		"conversation_id", conv.ID,
		"history_len", len(history),
		"titled", result.UpdatedTitle != "")
	return result, nil
}

// StartAndSend creates a conversation and sends its first message in one call.
func (s *Service) StartAndSend(ctx context.Context, userID int64, dto SendMessageDTO) (*SendResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	conv, err := s.Create(ctx, userID)
	if err != nil {
		return nil, err
	}
	result, err := s.SendMessage(ctx, userID, conv.ID, dto)
	if err != nil {
		return nil, err
	}
	result.ConversationID = conv.ID
	return result, nil
}

func (s *Service) systemPrompt(ctx context.Context) string {
	tpl, err := s.prompts.Published(ctx, prompttemplate.AssistantPromptName)
	if err != nil {
		s.logger.WarnContext(ctx, "system prompt lookup failed, continuing without it", "error", err)
		return ""
	}
	if tpl == nil {
		s.logger.InfoContext(ctx, "no published system prompt", "name", prompttemplate.AssistantPromptName)
		return ""
	}
	return tpl.Content
}

func (s *Service) owned(ctx context.Context, userID int64, conversationID string) (*Conversation, error) {
	if _, err := uuid.Parse(conversationID); err != nil {
		return nil, internal.ErrConversationNotFound
	}
	row, err := s.repo.GetOwned(ctx, conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if row == nil {
		return nil, internal.ErrConversationNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) messages(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := s.repo.Messages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	out := make([]Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, MessageFromDataModel(row))
	}
	return out, nil
}

func (s *Service) append(ctx context.Context, conversationID string, role assistant.Role, content string) error {
	err := s.repo.AppendMessage(ctx, &conversationDatamodel.Message{
		ConversationID: conversationID,
		Role:           string(role),
		Content:        content,
	})
	if err != nil {
		return fmt.Errorf("append %s message: %w", role, err)
	}
	return nil
}
