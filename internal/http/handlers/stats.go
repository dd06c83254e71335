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

type StatsStore interface {
	Totals(ctx context.Context) (postgres.Stats, error)
}

type StatsHandler struct {
	repo StatsStore
}

func NewStatsHandler(repo StatsStore) *StatsHandler {
	return &StatsHandler{repo: repo}
}

func (h *StatsHandler) GetStats(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	stats, err := h.repo.Totals(cctx)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "stats failed", "err", err)
		RespondInternal(ctx, "Could not compute stats")
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
