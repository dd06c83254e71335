package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/presslane/newsdesk/internal/config"
)

type UsersHandler struct {
	users UsersStore
}

func NewUsersHandler(users UsersStore) *UsersHandler {
	return &UsersHandler{users: users}
}

// ListRecentUsers returns the newest signups; admin only, wired by the
// router.
func (h *UsersHandler) ListRecentUsers(ctx *gin.Context) {
	limit, _ := parsePageParams(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	users, total, err := h.users.ListRecent(cctx, limit)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "list users failed", "err", err)
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}
