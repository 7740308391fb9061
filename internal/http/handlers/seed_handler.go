package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/campus-lostfound/internal/http/handlers/common"
	"github.com/ignatzorin/campus-lostfound/internal/service"
)

type seeder interface {
	Seed(ctx context.Context) (*service.SeedResult, error)
}

// SeedHandler заполняет пустую базу демонстрационными данными кампуса.
type SeedHandler struct {
	seedService seeder
}

// NewSeedHandler создаёт новый seed handler.
func NewSeedHandler(seedService seeder) *SeedHandler {
	return &SeedHandler{seedService: seedService}
}

// Seed обрабатывает POST /api/seed. Повторный вызов ничего не меняет.
func (h *SeedHandler) Seed(c *gin.Context) {
	result, err := h.seedService.Seed(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	message := "Seed data generated successfully"
	if result.Skipped {
		message = "Database already seeded"
	}
	common.RespondSuccess(c, http.StatusOK, message, result)
}
