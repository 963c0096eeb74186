package prompttemplate

import (
	"strings"
	"time"

	"github.com/Ilan9903/Juris-IA/internal"
	promptDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/prompttemplate"
	userDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/user"
)

// AssistantPromptName is the template injected as system prompt in every chat.
const AssistantPromptName = "ASSISTANT_JURIDIQUE_GENERAL"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

var ErrInvalidStatus = internal.NewValidationError("Invalid status. Allowed: draft, published, archived", internal.ErrCodeInvalidStatus)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.TrimSpace(s)); st {
	case StatusDraft, StatusPublished, StatusArchived:
		return st, nil
	}
	return "", ErrInvalidStatus
}

type UserRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PromptTemplate struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Content       string    `json:"content"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Status        Status    `json:"status"`
	CreatedBy     *UserRef  `json:"createdBy"`
	LastUpdatedBy *UserRef  `json:"lastUpdatedBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func FromDataModel(p *promptDatamodel.PromptTemplate) *PromptTemplate {
	return &PromptTemplate{
		ID:            p.ID,
		Name:          p.Name,
		Content:       p.Content,
		Description:   p.Description,
		Category:      p.Category,
		Status:        Status(p.Status),
		CreatedBy:     userRef(p.CreatedBy),
		LastUpdatedBy: userRef(p.LastUpdatedBy),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func userRef(u *userDatamodel.User) *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
