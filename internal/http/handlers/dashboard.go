package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/presslane/newsdesk/internal/config"
	"github.com/presslane/newsdesk/internal/domain/article"
	"github.com/presslane/newsdesk/internal/http/middlewares"
)

// DashboardHandler backs the role-gated pages. Each one aggregates what the
// corresponding view renders so the frontend needs a single request.
type DashboardHandler struct {
	articles ArticlesStore
	users    UsersStore
	stats    StatsStore
	comments RecentCommentsStore
}

func NewDashboardHandler(articles ArticlesStore, users UsersStore, stats StatsStore, comments RecentCommentsStore) *DashboardHandler {
	return &DashboardHandler{
		articles: articles,
		users:    users,
		stats:    stats,
		comments: comments,
	}
}

// UserDashboard lists the caller's own articles, drafts included.
func (h *DashboardHandler) UserDashboard(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	f := article.ListArticlesFilter{AuthorID: &userID}

	f.Limit, f.Skip = parsePageParams(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, total, err := h.articles.List(cctx, f)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "user dashboard failed", "err", err)
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	ctx.JSON(http.StatusOK, listResponse{
		Articles: items,
		Total:    total,
		HasMore:  total > f.Skip+len(items),
	})
}

// AdminDashboard bundles site totals with recent signups and comments.
func (h *DashboardHandler) AdminDashboard(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	stats, err := h.stats.Totals(cctx)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "admin dashboard stats failed", "err", err)
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	users, _, err := h.users.ListRecent(cctx, 5)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "admin dashboard users failed", "err", err)
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	comments, err := h.comments.RecentComments(cctx, 5)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "admin dashboard comments failed", "err", err)
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"stats":          stats,
		"recentUsers":    users,
		"recentComments": comments,
	})
}

// SuperadminDashboard adds the full user roster on top of the admin view.
func (h *DashboardHandler) SuperadminDashboard(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	stats, err := h.stats.Totals(cctx)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "superadmin dashboard stats failed", "err", err)
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	users, total, err := h.users.ListRecent(cctx, 50)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "superadmin dashboard users failed", "err", err)
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"stats": stats,
		"users": users,
		"total": total,
	})
}

// LoginPage is where the gate sends anonymous visitors. The API serves JSON
// only, so this just echoes the callback target for the frontend to use.
func LoginPage(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"page":        "login",
		"callbackUrl": ctx.Query("callbackUrl"),
	})
}

// UnauthorizedPage is the landing spot for signed-in visitors whose role is
// too low for the page they asked for.
func UnauthorizedPage(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"page":    "unauthorized",
		"message": "You do not have permission to view this page",
	})
}
