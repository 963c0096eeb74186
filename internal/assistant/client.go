package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"github.com/Ilan9903/Juris-IA/internal"
)

const (
	FallbackReply = "Désolé, je n'ai pas pu générer de réponse pour le moment. Veuillez réessayer."

	titleTemperature = 0.3
	titleMaxTokens   = 20
	titleFallbackLen = 40
	titleInstruction = "Génère un titre court (5 mots maximum) résumant ce message. Réponds uniquement avec le titre, sans guillemets."
)

type Role string

const (
	RoleSystem    Role = openai.ChatMessageRoleSystem
	RoleUser      Role = openai.ChatMessageRoleUser
	RoleAssistant Role = openai.ChatMessageRoleAssistant
)

type Message struct {
	Role    Role
	Content string
}

// ChatCompleter is the part of *openai.Client the assistant uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client applies the one LLM failure policy of the application: callers always get usable text.
type Client struct {
	completer ChatCompleter
	model     string
	logger    *slog.Logger
}

func NewOpenAIClient(cfg internal.OpenAIConfig, logger *slog.Logger) *Client {
	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	return NewClient(openai.NewClientWithConfig(conf), cfg.Model, logger)
}

func NewClient(completer ChatCompleter, model string, logger *slog.Logger) *Client {
	if model == "" {
		model = internal.DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{completer: completer, model: model, logger: logger}
}

// Reply returns the completion for messages, or FallbackReply when the provider fails
// or answers with no text.
func (c *Client) Reply(ctx context.Context, messages []Message) string {
	text, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAI(messages),
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "chat completion failed, using fallback reply", "error", err)
		return FallbackReply
	}
	return text
}

// Title asks for a short conversation title and falls back to a truncation of message.
func (c *Client) Title(ctx context.Context, message string) string {
	text, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: titleTemperature,
		MaxTokens:   titleMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: titleInstruction},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err == nil {
		if title := strings.TrimSpace(strings.Trim(text, "\"'«»“”")); title != "" {
			return title
		}
		err = errors.New("empty title")
	}
	c.logger.WarnContext(ctx, "title generation failed, truncating message", "error", err)
	return TruncateTitle(message)
}

// TruncateTitle keeps the first 40 characters of message, marking cuts with "...".
func TruncateTitle(message string) string {
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) <= titleFallbackLen {
		return message
	}
	return string([]rune(message)[:titleFallbackLen]) + "..."
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.completer.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("completion returned empty content")
	}
	return text, nil
}

func toOpenAI(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}
