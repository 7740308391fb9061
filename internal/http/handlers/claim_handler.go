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
)

const (
	defaultClaimListLimit = 50
	maxClaimListLimit     = 500
)

type claimService interface {
	Create(ctx context.Context, in service.CreateClaimInput) (*models.Claim, error)
	Verify(ctx context.Context, id uuid.UUID, in service.VerifyClaimInput) (*models.Claim, error)
	Pickup(ctx context.Context, id uuid.UUID, holdCode string) (*models.Claim, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	List(ctx context.Context, status string, offset, limit int) ([]models.Claim, error)
}

// ClaimHandler заявки на получение найденных вещей.
type ClaimHandler struct {
	claims claimService
}

// NewClaimHandler создаёт хэндлер.
func NewClaimHandler(claims claimService) *ClaimHandler {
	return &ClaimHandler{claims: claims}
}

// Create обрабатывает POST /api/claims. Вещь переходит в on_hold, в ответе код выдачи.
func (h *ClaimHandler) Create(c *gin.Context) {
	var req dto.CreateClaimRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	foundID, err := uuid.Parse(req.FoundID)
	if err != nil {
		common.RespondBadRequest(c, "found_id: некорректный UUID")
		return
	}

	claim, err := h.claims.Create(c.Request.Context(), service.CreateClaimInput{
		FoundID:       foundID,
		ClaimantName:  req.ClaimantName,
		ClaimantEmail: req.ClaimantEmail,
		Notes:         req.Notes,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, claim)
}

// List обрабатывает GET /api/claims?status=&skip=&limit=.
func (h *ClaimHandler) List(c *gin.Context) {
	var q dto.ClaimQuery
	if err := common.BindQuery(c, &q); err != nil {
		common.RespondAppError(c, err)
		return
	}

	skip, limit := common.Pagination(q.Skip, q.Limit, defaultClaimListLimit, maxClaimListLimit)
	list, err := h.claims.List(c.Request.Context(), q.Status, skip, limit)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Get обрабатывает GET /api/claims/:id.
func (h *ClaimHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	claim, err := h.claims.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, claim)
}

// Verify обрабатывает PUT /api/claims/:id/verify.
func (h *ClaimHandler) Verify(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	verifierID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.VerifyClaimRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	claim, err := h.claims.Verify(c.Request.Context(), id, service.VerifyClaimInput{
		Verified:   *req.Verified,
		VerifierID: verifierID,
		Notes:      req.Notes,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, claim)
}

// Pickup обрабатывает POST /api/claims/:id/pickup.
func (h *ClaimHandler) Pickup(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.PickupRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	claim, err := h.claims.Pickup(c.Request.Context(), id, req.HoldCode)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, claim)
}
