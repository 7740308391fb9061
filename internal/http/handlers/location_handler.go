package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/campus-lostfound/internal/dto"
	"github.com/ignatzorin/campus-lostfound/internal/http/handlers/common"
	"github.com/ignatzorin/campus-lostfound/internal/models"
)

type locationService interface {
	ListLocations(ctx context.Context) ([]models.Location, error)
	CreateLocation(ctx context.Context, loc *models.Location) error
}

// LocationHandler справочник мест на кампусе.
type LocationHandler struct {
	locations locationService
}

// NewLocationHandler создаёт хэндлер.
func NewLocationHandler(locations locationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// List обрабатывает GET /api/locations.
func (h *LocationHandler) List(c *gin.Context) {
	list, err := h.locations.ListLocations(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Create обрабатывает POST /api/locations.
func (h *LocationHandler) Create(c *gin.Context) {
	var req dto.CreateLocationRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	loc := &models.Location{Name: req.Name, Building: req.Building, Floor: req.Floor}
	if err := h.locations.CreateLocation(c.Request.Context(), loc); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, loc)
}
