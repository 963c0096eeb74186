package document

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/assistant"
)

const DefaultQuestion = "Fais un résumé de ce document."

type TextExtractor interface {
	Extract(path, contentType string) (string, error)
}

type Replier interface {
	Reply(ctx context.Context, messages []assistant.Message) string
}

// Upload describes the stored document to analyze.
type Upload struct {
	Path         string
	ContentType  string
	OriginalName string
}

type Analysis struct {
	Answer           string `json:"answer"`
	OriginalFilename string `json:"originalFilename"`
}

type Service struct {
	extractor TextExtractor
	assistant Replier
	maxChars  int
	logger    *slog.Logger
}

func NewService(extractor TextExtractor, assistant Replier, maxChars int, logger *slog.Logger) *Service {
	if maxChars <= 0 {
		maxChars = internal.DefaultContextChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		extractor: extractor,
		assistant: assistant,
		maxChars:  maxChars,
		logger:    logger,
	}
}

// Analyze answers question using only the text of the uploaded document.
func (s *Service) Analyze(ctx context.Context, upload *Upload, question string) (*Analysis, error) {
	if upload == nil {
		return nil, internal.NewValidationError("No file provided", internal.ErrCodeMissingFile)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		question = DefaultQuestion
	}

	contentType := ResolveContentType(upload.ContentType, upload.OriginalName)
	text, err := s.extractor.Extract(upload.Path, contentType)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, internal.NewValidationError("No text could be extracted from the document", internal.ErrCodeEmptyDocument)
	}

	excerpt, truncated := Truncate(text, s.maxChars)
	if truncated {
		s.logger.WarnContext(ctx, "document text truncated", "file", upload.OriginalName, "limit", s.maxChars)
	}

	answer := s.assistant.Reply(ctx, []assistant.Message{
		{Role: assistant.RoleUser, Content: BuildPrompt(excerpt, question)},
	})

	s.logger.InfoContext(ctx, "document analyzed",
		"file", upload.OriginalName,
		"content_type", contentType,
		"chars", len([]rune(excerpt)))
	return &Analysis{Answer: answer, OriginalFilename: upload.OriginalName}, nil
}

// Truncate keeps at most max characters of text.
func Truncate(text string, max int) (string, bool) {
	runes := []rune(text)
	if len(runes) <= max {
		return text, false
	}
	return string(runes[:max]), true
}

func BuildPrompt(excerpt, question string) string {
	return fmt.Sprintf(`Contexte fourni (extrait d'un document utilisateur):
"""
%s
"""

En te basant STRICTEMENT sur le contexte ci-dessus, réponds à la question suivante de l'utilisateur:
Question: "%s"

Si la réponse ne se trouve pas dans le contexte fourni, indique que l'information n'est pas présente dans le document. Ne fais pas d'hypothèses et ne cherche pas d'informations en dehors du contexte.`, excerpt, question)
}
