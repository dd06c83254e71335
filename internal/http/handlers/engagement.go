package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/presslane/newsdesk/internal/config"
	"github.com/presslane/newsdesk/internal/domain/article"
	"github.com/presslane/newsdesk/internal/http/middlewares"
	"github.com/presslane/newsdesk/internal/observability"
)

type EngagementStore interface {
	ToggleLike(ctx context.Context, id, userID string, like bool) (likeCount int, liked bool, err error)
	AppendComment(ctx context.Context, id string, c article.Comment) error
}

type EngagementHandler struct {
	repo      EngagementStore
	prom      *observability.Prom
	sanitizer *bluemonday.Policy
}

func NewEngagementHandler(repo EngagementStore, prom *observability.Prom) *EngagementHandler {
	return &EngagementHandler{
		repo: repo,
		prom: prom,
		// comments render as plain text, so strip every tag
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// EngageRequest carries exactly one of the two engagement verbs: a like
// toggle or a new comment.
type EngageRequest struct {
	Action  *string `json:"action" binding:"omitempty,oneof=like unlike"`
	Comment *string `json:"comment" binding:"omitempty,max=1000"`
}

type likeResponse struct {
	Likes int  `json:"likes"`
	Liked bool `json:"liked"`
}

// Engage handles POST /articles/:id. The body decides the operation:
// {"action":"like"|"unlike"} toggles the caller in the like-set,
// {"comment":"..."} appends a comment.
func (h *EngagementHandler) Engage(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req EngageRequest

	if !BindJSON(ctx, &req) {
		return
	}

	switch {
	case req.Action != nil && req.Comment != nil:
		RespondBadRequest(ctx, "Provide either action or comment, not both", nil)

	case req.Action != nil:
		h.toggleLike(ctx, userID, *req.Action)

	case req.Comment != nil:
		h.postComment(ctx, userID, *req.Comment)

	default:
		RespondBadRequest(ctx, "Provide an action or a comment", nil)
	}
}

func (h *EngagementHandler) toggleLike(ctx *gin.Context, userID, action string) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	likes, liked, err := h.repo.ToggleLike(cctx, id, userID, action == "like")

	if err != nil {
		if errors.Is(err, article.ErrNotFound) {
			RespondNotFound(ctx, "Article not found")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "toggle like failed", "err", err)
		RespondInternal(ctx, "Could not update likes")
		return
	}

	if h.prom != nil {
		h.prom.LikeToggles.WithLabelValues(action).Inc()
	}

	ctx.JSON(http.StatusOK, likeResponse{Likes: likes, Liked: liked})
}

func (h *EngagementHandler) postComment(ctx *gin.Context, userID, raw string) {
	id := ctx.Param("id")

	text := strings.TrimSpace(h.sanitizer.Sanitize(raw))

	if text == "" {
		RespondBadRequest(ctx, "Comment text must not be empty", nil)
		return
	}

	// comments carry a display name; a session without one cannot comment
	name, _ := middlewares.NameFromContext(ctx)

	if strings.TrimSpace(name) == "" {
		RespondBadRequest(ctx, "Missing display name", nil)
		return
	}

	c := article.NewComment(userID, name, text)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.AppendComment(cctx, id, c)

	if err != nil {
		if errors.Is(err, article.ErrNotFound) {
			RespondNotFound(ctx, "Article not found")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "append comment failed", "err", err)
		RespondInternal(ctx, "Could not post comment")
		return
	}

	if h.prom != nil {
		h.prom.CommentsPosted.Inc()
	}

	ctx.JSON(http.StatusOK, c)
}
