package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/presslane/newsdesk/internal/cache"
	"github.com/presslane/newsdesk/internal/config"
	"github.com/presslane/newsdesk/internal/domain/article"
	"github.com/presslane/newsdesk/internal/domain/user"
	"github.com/presslane/newsdesk/internal/http/middlewares"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

type ArticlesStore interface {
	Create(ctx context.Context, req article.CreateArticleRequest, authorID string) (article.Article, error)
	GetByID(ctx context.Context, id string) (article.Article, error)
	List(ctx context.Context, f article.ListArticlesFilter) ([]article.Article, int, error)
	Update(ctx context.Context, id string, req article.UpdateArticleRequest) (article.Article, error)
	Delete(ctx context.Context, id string) error
}

type ArticlesHandler struct {
	repo  ArticlesStore
	cache *cache.Cache
}

func NewArticlesHandler(repo ArticlesStore) *ArticlesHandler {
	return &ArticlesHandler{repo: repo}
}

func NewArticlesHandlerWithCache(repo ArticlesStore, c *cache.Cache) *ArticlesHandler {
	return &ArticlesHandler{repo: repo, cache: c}
}

type listResponse struct {
	Articles []article.Article `json:"articles"`
	Total    int               `json:"total"`
	HasMore  bool              `json:"hasMore"`
}

func parsePageParams(ctx *gin.Context) (limit, skip int) {
	limit = defaultPageLimit

	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	if v := ctx.Query("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			skip = n
		}
	}

	return limit, skip
}

func parseListFilter(ctx *gin.Context) (article.ListArticlesFilter, bool) {
	var f article.ListArticlesFilter

	f.Limit, f.Skip = parsePageParams(ctx)

	if raw := ctx.Query("category"); raw != "" {
		cats, ok := article.NormalizeCategories(raw)

		if !ok {
			RespondBadRequest(ctx, "Invalid category", nil)
			return f, false
		}

		f.Categories = cats
	}

	if raw := ctx.Query("published"); raw != "" {
		published := raw == "true"
		f.Published = &published
	}

	if raw := ctx.Query("author"); raw != "" {
		f.Author = &raw
	}

	if raw := strings.TrimSpace(ctx.Query("q")); raw != "" {
		f.Query = &raw
	}

	return f, true
}

func (h *ArticlesHandler) list(ctx *gin.Context, f article.ListArticlesFilter) {
	cacheKey := ""

	if h.cache != nil {
		cacheKey = "articles:" + ctx.Request.URL.RawQuery + ":" + ctx.Param("categories")

		if v, ok := h.cache.Get(cacheKey); ok {
			if resp, ok := v.(listResponse); ok {
				RespondJSONWithETag(ctx, http.StatusOK, resp)
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, total, err := h.repo.List(cctx, f)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "list articles failed", "err", err)
		RespondInternal(ctx, "Could not list articles")
		return
	}

	resp := listResponse{
		Articles: items,
		Total:    total,
		HasMore:  total > f.Skip+len(items),
	}

	if h.cache != nil {
		h.cache.Set(cacheKey, resp)
	}

	RespondJSONWithETag(ctx, http.StatusOK, resp)
}

func (h *ArticlesHandler) ListArticles(ctx *gin.Context) {
	f, ok := parseListFilter(ctx)

	if !ok {
		return
	}

	h.list(ctx, f)
}

// ListByCategory serves /articles/category/:categories where the path
// segment is a comma-separated OR-list.
func (h *ArticlesHandler) ListByCategory(ctx *gin.Context) {
	cats, ok := article.NormalizeCategories(ctx.Param("categories"))

	if !ok {
		RespondBadRequest(ctx, "Invalid category", nil)
		return
	}

	f, ok := parseListFilter(ctx)

	if !ok {
		return
	}

	f.Categories = cats

	h.list(ctx, f)
}

func (h *ArticlesHandler) CreateArticle(ctx *gin.Context) {
	var req article.CreateArticleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	category, ok := article.NormalizeCategory(req.Category)

	if !ok {
		RespondBadRequest(ctx, "Invalid category", gin.H{
			"fields": []FieldError{{Field: "category", Rule: "oneof", Message: "must be one of " + strings.Join(article.Categories, ", ")}},
		})
		return
	}

	req.Category = category

	if strings.TrimSpace(req.Title) == "" {
		RespondBadRequest(ctx, "Title is required", nil)
		return
	}

	if strings.TrimSpace(req.Author) == "" {
		RespondBadRequest(ctx, "Author is required", nil)
		return
	}

	// the session principal owns the article; the author field is only the
	// display copy
	authorID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	a, err := h.repo.Create(cctx, req, authorID)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "create article failed", "err", err)
		RespondInternal(ctx, "Could not create article")
		return
	}

	h.invalidateLists()

	ctx.JSON(http.StatusCreated, a)
}

func (h *ArticlesHandler) GetArticleById(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	a, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, article.ErrNotFound) {
			RespondNotFound(ctx, "Article not found")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "get article failed", "err", err)
		RespondInternal(ctx, "Could not fetch article")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, a)
}

func (h *ArticlesHandler) UpdateArticle(ctx *gin.Context) {
	id := ctx.Param("id")

	var req article.UpdateArticleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		RespondBadRequest(ctx, "Title must not be empty", nil)
		return
	}

	if req.Category != nil {
		category, ok := article.NormalizeCategory(*req.Category)

		if !ok {
			RespondBadRequest(ctx, "Invalid category", nil)
			return
		}

		req.Category = &category
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	a, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, article.ErrNotFound) {
			RespondNotFound(ctx, "Article not found")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "update article failed", "err", err)
		RespondInternal(ctx, "Could not update article")
		return
	}

	h.invalidateLists()

	ctx.JSON(http.StatusOK, a)
}

// DeleteArticle is allowed for the owning principal or any admin role.
func (h *ArticlesHandler) DeleteArticle(ctx *gin.Context) {
	id := ctx.Param("id")

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	role, _ := middlewares.RoleFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	a, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, article.ErrNotFound) {
			RespondNotFound(ctx, "Article not found")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "delete article lookup failed", "err", err)
		RespondInternal(ctx, "Could not delete article")
		return
	}

	// Check ownership (admin override)

	if !user.RoleAtLeast(role, user.RoleAdmin) && a.AuthorID != userID {
		RespondForbidden(ctx, "You can only delete your own articles")
		return
	}

	err = h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, article.ErrNotFound) {
			RespondNotFound(ctx, "Article not found")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "delete article failed", "err", err)
		RespondInternal(ctx, "Could not delete article")
		return
	}

	h.invalidateLists()

	ctx.JSON(http.StatusOK, gin.H{"message": "Article deleted successfully"})
}

// invalidateLists drops all cached list pages; cheap enough at this scale.
func (h *ArticlesHandler) invalidateLists() {
	if h.cache != nil {
		h.cache.Clear()
	}
}
