package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/campus-lostfound/internal/dto"
	"github.com/ignatzorin/campus-lostfound/internal/http/handlers/common"
	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/service"
	"github.com/ignatzorin/campus-lostfound/internal/validation"
)

type lostItemService interface {
	CreateLostItem(ctx context.Context, in service.CreateLostItemInput) (*service.LostItemResult, error)
	GetLostItem(ctx context.Context, id uuid.UUID) (*models.LostItem, error)
}

type matchService interface {
	FindMatches(ctx context.Context, lostID uuid.UUID, limit int) ([]models.Match, error)
	ListMatches(ctx context.Context, lostID uuid.UUID) ([]models.Match, error)
}

// LostItemHandler заявления о потере и их совпадения.
type LostItemHandler struct {
	items   lostItemService
	matches matchService
}

// NewLostItemHandler создаёт хэндлер.
func NewLostItemHandler(items lostItemService, matches matchService) *LostItemHandler {
	return &LostItemHandler{items: items, matches: matches}
}

// Create обрабатывает POST /api/lost. В ответе matches_suggested: лучшие совпадения.
func (h *LostItemHandler) Create(c *gin.Context) {
	var req dto.CreateLostItemRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	lastSeenAt, err := validation.ParseDateTime("last_seen_at", req.LastSeenAt)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	result, err := h.items.CreateLostItem(c.Request.Context(), service.CreateLostItemInput{
		Title:              req.Title,
		Description:        req.Description,
		LastSeenLocationID: req.LastSeenLocationID,
		LastSeenAt:         lastSeenAt,
		ReporterName:       req.ReporterName,
		ReporterEmail:      req.ReporterEmail,
		PhotoURL:           req.PhotoURL,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Get обрабатывает GET /api/lost/:id.
func (h *LostItemHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	item, err := h.items.GetLostItem(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// Matches обрабатывает GET /api/lost/:id/matches: все совпадения по убыванию score.
func (h *LostItemHandler) Matches(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	list, err := h.matches.ListMatches(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// RefreshMatches обрабатывает POST /api/lost/:id/matches/refresh.
// Повторный прогон добавляет только новые пары и возвращает полный список.
func (h *LostItemHandler) RefreshMatches(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	added, err := h.matches.FindMatches(ctx, id, 0)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	list, err := h.matches.ListMatches(ctx, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"added":   len(added),
		"matches": list,
	})
}
