package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/campus-lostfound/internal/http/handlers/common"
	"github.com/ignatzorin/campus-lostfound/internal/models"
)

type statsService interface {
	Get(ctx context.Context) (*models.Stats, error)
}

// StatsHandler отвечает за показатели панели бюро находок.
type StatsHandler struct {
	stats statsService
}

// NewStatsHandler создаёт экземпляр.
func NewStatsHandler(stats statsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Get обрабатывает GET /api/stats.
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.stats.Get(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
