package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/presslane/newsdesk/internal/observability"
)

type Stats struct {
	TotalUsers     int `json:"totalUsers"`
	TotalPosts     int `json:"totalPosts"`
	PublishedPosts int `json:"publishedPosts"`
	TotalComments  int `json:"totalComments"`
	TotalLikes     int `json:"totalLikes"`
}

type StatsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewStatsRepo(pool *pgxpool.Pool, prom *observability.Prom) *StatsRepo {
	return &StatsRepo{pool: pool, prom: prom}
}

func (r *StatsRepo) Totals(ctx context.Context) (Stats, error) {
	var s Stats

	query := `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM articles),
		(SELECT COUNT(*) FROM articles WHERE published),
		(SELECT COALESCE(SUM(jsonb_array_length(comments)), 0) FROM articles),
		(SELECT COALESCE(SUM(cardinality(likes)), 0) FROM articles)`

	fn := func() error {
		return r.pool.QueryRow(ctx, query).Scan(
			&s.TotalUsers,
			&s.TotalPosts,
			&s.PublishedPosts,
			&s.TotalComments,
			&s.TotalLikes,
		)
	}

	var err error

	if r.prom != nil {
		err = r.prom.ObserveDB("stats.totals", fn)
	} else {
		err = fn()
	}

	if err != nil {
		return Stats{}, err
	}

	return s, nil
}
