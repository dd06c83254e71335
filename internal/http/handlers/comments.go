package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/presslane/newsdesk/internal/config"
	"github.com/presslane/newsdesk/internal/repo/postgres"
)

type RecentCommentsStore interface {
	RecentComments(ctx context.Context, limit int) ([]postgres.RecentComment, error)
}

type CommentsHandler struct {
	repo RecentCommentsStore
}

func NewCommentsHandler(repo RecentCommentsStore) *CommentsHandler {
	return &CommentsHandler{repo: repo}
}

// RecentComments powers the public activity feed; only comments on
// published articles show up.
func (h *CommentsHandler) RecentComments(ctx *gin.Context) {
	limit, _ := parsePageParams(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	comments, err := h.repo.RecentComments(cctx, limit)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "recent comments failed", "err", err)
		RespondInternal(ctx, "Could not fetch comments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"comments": comments})
}
