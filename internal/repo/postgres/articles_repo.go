package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/presslane/newsdesk/internal/domain/article"
	"github.com/presslane/newsdesk/internal/observability"
)

const articleColumns = `id, title, content, excerpt, author, author_id, category, tags, image_url, published, published_at, likes, comments, created_at, updated_at`

type ArticlesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewArticlesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ArticlesRepo {
	return &ArticlesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *ArticlesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanArticle(row pgx.Row) (article.Article, error) {
	var a article.Article

	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.Excerpt,
		&a.Author,
		&a.AuthorID,
		&a.Category,
		&a.Tags,
		&a.ImageURL,
		&a.Published,
		&a.PublishedAt,
		&a.Likes,
		&a.Comments,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	if err != nil {
		return article.Article{}, err
	}

	if a.Likes == nil {
		a.Likes = []string{}
	}

	if a.Comments == nil {
		a.Comments = []article.Comment{}
	}

	return a, nil
}

func (r *ArticlesRepo) Create(ctx context.Context, req article.CreateArticleRequest, authorID string) (article.Article, error) {
	a := article.NewFromCreateRequest(req, authorID)

	commentsJSON, err := json.Marshal(a.Comments)

	if err != nil {
		return article.Article{}, err
	}

	err = r.observe("articles.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO articles(id, title, content, excerpt, author, author_id, category, tags, image_url, published, published_at, likes, comments, created_at, updated_at)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
			a.ID, a.Title, a.Content, a.Excerpt, a.Author, a.AuthorID, a.Category, a.Tags, a.ImageURL, a.Published, a.PublishedAt, a.Likes, commentsJSON, a.CreatedAt, a.UpdatedAt)
		return e
	})

	if err != nil {
		return article.Article{}, err
	}

	return a, nil
}

func (r *ArticlesRepo) GetByID(ctx context.Context, id string) (article.Article, error) {
	var a article.Article
	var err error

	obsErr := r.observe("articles.get_by_id", func() error {
		a, err = scanArticle(r.pool.QueryRow(ctx,
			`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id))
		return err
	})

	if obsErr != nil {
		if errors.Is(obsErr, pgx.ErrNoRows) {
			return article.Article{}, article.ErrNotFound
		}
		return article.Article{}, obsErr
	}

	return a, nil
}

func buildListConds(f article.ListArticlesFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	argsPosition := 1

	if len(f.Categories) > 0 {
		conds = append(conds, fmt.Sprintf("category = ANY($%d)", argsPosition))
		args = append(args, f.Categories)
		argsPosition++
	}

	if f.Published != nil {
		conds = append(conds, fmt.Sprintf("published = $%d", argsPosition))
		args = append(args, *f.Published)
		argsPosition++
	}

	if f.Author != nil {
		conds = append(conds, fmt.Sprintf("author = $%d", argsPosition))
		args = append(args, *f.Author)
		argsPosition++
	}

	if f.AuthorID != nil {
		conds = append(conds, fmt.Sprintf("author_id = $%d", argsPosition))
		args = append(args, *f.AuthorID)
		argsPosition++
	}

	// best-effort free text match over title and content
	if f.Query != nil {
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR content ILIKE $%d)", argsPosition, argsPosition))
		args = append(args, "%"+*f.Query+"%")
		argsPosition++
	}

	if len(conds) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page plus the total match count ignoring pagination.
// Published items sort newest-published first; drafts trail, newest-created
// first.
func (r *ArticlesRepo) List(ctx context.Context, f article.ListArticlesFilter) ([]article.Article, int, error) {
	where, args := buildListConds(f)

	total := 0

	err := r.observe("articles.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM articles`+where, args...).Scan(&total)
	})

	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + articleColumns + ` FROM articles` + where +
		fmt.Sprintf(" ORDER BY published_at DESC NULLS LAST, created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	args = append(args, f.Limit, f.Skip)

	output := make([]article.Article, 0, f.Limit)

	err = r.observe("articles.list", func() error {
		rows, e := r.pool.Query(ctx, query, args...)

		if e != nil {
			return e
		}

		defer rows.Close()

		for rows.Next() {
			a, e := scanArticle(rows)

			if e != nil {
				return e
			}

			output = append(output, a)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

// Update applies a patch in a single statement. The publish toggle keeps an
// existing published_at (publish while already published is a no-op for the
// timestamp) and clears it on unpublish.
func (r *ArticlesRepo) Update(ctx context.Context, id string, req article.UpdateArticleRequest) (article.Article, error) {
	var sets []string
	args := []interface{}{id}

	pos := 2

	set := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, pos))
		args = append(args, val)
		pos++
	}

	if req.Title != nil {
		set("title", strings.TrimSpace(*req.Title))
	}

	if req.Content != nil {
		set("content", *req.Content)
	}

	if req.Excerpt != nil {
		set("excerpt", *req.Excerpt)
	}

	if req.Author != nil {
		set("author", strings.TrimSpace(*req.Author))
	}

	if req.Category != nil {
		set("category", *req.Category)
	}

	if req.Tags != nil {
		set("tags", article.TrimTags(*req.Tags))
	}

	if req.ImageURL != nil {
		set("image_url", strings.TrimSpace(*req.ImageURL))
	}

	if req.Published != nil {
		if *req.Published {
			sets = append(sets, "published = TRUE", "published_at = COALESCE(published_at, NOW())")
		} else {
			sets = append(sets, "published = FALSE", "published_at = NULL")
		}
	}

	sets = append(sets, "updated_at = NOW()")

	query := `UPDATE articles SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + articleColumns

	var a article.Article
	var err error

	obsErr := r.observe("articles.update", func() error {
		a, err = scanArticle(r.pool.QueryRow(ctx, query, args...))
		return err
	})

	if obsErr != nil {
		if errors.Is(obsErr, pgx.ErrNoRows) {
			return article.Article{}, article.ErrNotFound
		}

		return article.Article{}, obsErr
	}

	return a, nil
}

func (r *ArticlesRepo) Delete(ctx context.Context, id string) error {
	return r.observe("articles.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)

		if err != nil {
			return err
		}

		// if no rows were deleted as a result return a not found error
		if tag.RowsAffected() == 0 {
			return article.ErrNotFound
		}

		return nil
	})
}

// ToggleLike adds or removes the principal id from the like-set in one
// UPDATE, so concurrent likes from different principals cannot clobber each
// other. Idempotent in both directions.
func (r *ArticlesRepo) ToggleLike(ctx context.Context, id, userID string, like bool) (likeCount int, liked bool, err error) {
	query := `UPDATE articles
		SET likes = CASE WHEN $2 = ANY(likes) THEN likes ELSE array_append(likes, $2) END
		WHERE id = $1
		RETURNING cardinality(likes), $2 = ANY(likes)`

	if !like {
		query = `UPDATE articles
			SET likes = array_remove(likes, $2)
			WHERE id = $1
			RETURNING cardinality(likes), $2 = ANY(likes)`
	}

	obsErr := r.observe("articles.toggle_like", func() error {
		return r.pool.QueryRow(ctx, query, id, userID).Scan(&likeCount, &liked)
	})

	if obsErr != nil {
		if errors.Is(obsErr, pgx.ErrNoRows) {
			return 0, false, article.ErrNotFound
		}

		return 0, false, obsErr
	}

	return likeCount, liked, nil
}

// AppendComment appends atomically to the comments array; order in the
// array is insertion order, which is chronological.
func (r *ArticlesRepo) AppendComment(ctx context.Context, id string, c article.Comment) error {
	raw, err := json.Marshal(c)

	if err != nil {
		return err
	}

	return r.observe("articles.append_comment", func() error {
		tag, e := r.pool.Exec(ctx,
			`UPDATE articles SET comments = comments || $2::jsonb WHERE id = $1`,
			id, raw)

		if e != nil {
			return e
		}

		if tag.RowsAffected() == 0 {
			return article.ErrNotFound
		}

		return nil
	})
}

type RecentComment struct {
	ArticleID    string          `json:"articleId"`
	ArticleTitle string          `json:"articleTitle"`
	Comment      article.Comment `json:"comment"`
}

// RecentComments flattens the newest comments across published articles.
func (r *ArticlesRepo) RecentComments(ctx context.Context, limit int) ([]RecentComment, error) {
	out := make([]RecentComment, 0, limit)

	err := r.observe("articles.recent_comments", func() error {
		rows, e := r.pool.Query(ctx, `
			SELECT a.id, a.title, c.value
			FROM articles a, jsonb_array_elements(a.comments) AS c
			WHERE a.published
			ORDER BY (c.value->>'createdAt')::timestamptz DESC
			LIMIT $1
		`, limit)

		if e != nil {
			return e
		}

		defer rows.Close()

		for rows.Next() {
			var rc RecentComment

			if e := rows.Scan(&rc.ArticleID, &rc.ArticleTitle, &rc.Comment); e != nil {
				return e
			}

			out = append(out, rc)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
