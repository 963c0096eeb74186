package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Ilan9903/Juris-IA/internal/dashboard"
)

const statsQuery = `
SELECT
	(SELECT COUNT(*) FROM users) AS users,
	(SELECT COUNT(*) FROM conversations) AS conversations,
	(SELECT COUNT(*) FROM messages) AS messages,
	(SELECT COUNT(*) FROM legal_articles) AS articles,
	(SELECT COUNT(*) FROM prompt_templates WHERE status = ?) AS published_prompts`

type DashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) Stats(ctx context.Context) (*dashboard.Stats, error) {
	var stats dashboard.Stats
	if err := r.db.GetContext(ctx, &stats, r.db.Rebind(statsQuery), "published"); err != nil {
		return nil, err
	}
	return &stats, nil
}
