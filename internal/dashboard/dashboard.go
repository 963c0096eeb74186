package dashboard

import (
	"context"

	"github.com/Ilan9903/Juris-IA/internal/auth"
)

const WelcomeMessage = "Bienvenue sur le tableau de bord admin !"

type ServiceAPI interface {
	Overview(ctx context.Context, ac auth.AuthContext) (*Overview, error)
}

type RepositoryAPI interface {
	Stats(ctx context.Context) (*Stats, error)
}

type Stats struct {
	Users            int64 `json:"users" db:"users"`
	Conversations    int64 `json:"conversations" db:"conversations"`
	Messages         int64 `json:"messages" db:"messages"`
	Articles         int64 `json:"articles" db:"articles"`
	PublishedPrompts int64 `json:"publishedPrompts" db:"published_prompts"`
}

type Overview struct {
	Message string       `json:"message"`
	User    auth.Profile `json:"user"`
	Stats   Stats        `json:"stats"`
}
