package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"github.com/ignatzorin/campus-lostfound/internal/dto"
	"github.com/ignatzorin/campus-lostfound/internal/http/handlers/common"
	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/service"
	"github.com/ignatzorin/campus-lostfound/internal/validation"
)

const (
	defaultFoundListLimit = 100
	maxFoundListLimit     = 500
)

type foundItemService interface {
	CreateFoundItem(ctx context.Context, in service.CreateFoundItemInput) (*models.FoundItem, error)
	ListFoundItems(ctx context.Context, filter models.FoundItemFilter) ([]models.FoundItem, error)
	GetFoundItem(ctx context.Context, id uuid.UUID) (*models.FoundItem, error)
	UpdateFoundItemStatus(ctx context.Context, id uuid.UUID, status string) (*models.FoundItem, error)
}

// FoundItemHandler реестр найденных вещей.
type FoundItemHandler struct {
	items        foundItemService
	maxBodyBytes int64
}

// NewFoundItemHandler создаёт хэндлер. maxPhotoBytes ограничивает размер одного файла.
func NewFoundItemHandler(items foundItemService, maxPhotoBytes int64) *FoundItemHandler {
	return &FoundItemHandler{
		items:        items,
		maxBodyBytes: maxPhotoBytes*maxPhotosPerItem + 1<<20,
	}
}

// Create обрабатывает POST /api/found (multipart/form-data).
func (h *FoundItemHandler) Create(c *gin.Context) {
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}

	var form dto.FoundItemForm
	if err := c.ShouldBindWith(&form, binding.FormMultipart); err != nil {
		common.RespondAppError(c, bindFormError(err))
		return
	}

	foundAt, err := validation.ParseFoundAt(form.FoundDate, form.FoundTime)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	photos, closePhotos, err := openPhotos(c, "photos")
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	defer closePhotos()

	item, err := h.items.CreateFoundItem(c.Request.Context(), service.CreateFoundItemInput{
		Title:         form.Title,
		Description:   form.Description,
		Category:      form.Category,
		LocationID:    form.LocationID,
		ReporterName:  form.ReporterName,
		ReporterEmail: form.ReporterEmail,
		FoundAt:       foundAt,
		Photos:        photos,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// List обрабатывает GET /api/found?status=&category=&location_id=&skip=&limit=.
func (h *FoundItemHandler) List(c *gin.Context) {
	var q dto.FoundItemQuery
	if err := common.BindQuery(c, &q); err != nil {
		common.RespondAppError(c, err)
		return
	}

	skip, limit := common.Pagination(q.Skip, q.Limit, defaultFoundListLimit, maxFoundListLimit)
	items, err := h.items.ListFoundItems(c.Request.Context(), models.FoundItemFilter{
		Status:     q.Status,
		Category:   strings.ToLower(strings.TrimSpace(q.Category)),
		LocationID: q.LocationID,
		Offset:     skip,
		Limit:      limit,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// Get обрабатывает GET /api/found/:id.
func (h *FoundItemHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	item, err := h.items.GetFoundItem(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// UpdateStatus обрабатывает PUT /api/found/:id/status.
func (h *FoundItemHandler) UpdateStatus(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateItemStatusRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	item, err := h.items.UpdateFoundItemStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func bindFormError(err error) error {
	if isTooLarge(err) {
		return requestBodyError(err)
	}
	return common.BindingError(err)
}
