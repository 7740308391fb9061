package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/campus-lostfound/internal/domain/valueobject"
	"github.com/ignatzorin/campus-lostfound/internal/logger"
	"github.com/ignatzorin/campus-lostfound/internal/metrics"
	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
	"github.com/ignatzorin/campus-lostfound/internal/validation"
)

// ClaimRepository описывает хранилище заявок. Переходы статусов выполняются атомарно
// вместе со статусом найденной вещи. CreateWithHold заполняет claimant сохранённой записью.
type ClaimRepository interface {
	CreateWithHold(ctx context.Context, claim *models.Claim, claimant *models.User) error
	Verify(ctx context.Context, id uuid.UUID, decision models.ClaimDecision) (*models.Claim, error)
	Pickup(ctx context.Context, id uuid.UUID, holdCode string) (*models.Claim, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	List(ctx context.Context, status string, offset, limit int) ([]models.Claim, error)
}

// CreateClaimInput данные заявки на получение вещи.
type CreateClaimInput struct {
	FoundID       uuid.UUID
	ClaimantName  string
	ClaimantEmail string
	Notes         *string
}

// VerifyClaimInput решение сотрудника по заявке.
type VerifyClaimInput struct {
	Verified   bool
	VerifierID uuid.UUID
	Notes      *string
}

// ClaimUpdatedEvent полезная нагрузка события claim.updated.
type ClaimUpdatedEvent struct {
	ClaimID  uuid.UUID `json:"claim_id"`
	FoundID  uuid.UUID `json:"found_id"`
	Status   string    `json:"status"`
	HoldCode string    `json:"hold_code,omitempty"`
}

// ClaimService управляет жизненным циклом заявок.
type ClaimService struct {
	claims   ClaimRepository
	cache    *CacheService
	metrics  *metrics.ClaimMetrics
	notifier Notifier
	codeGen  func() (string, error)
}

// NewClaimService создаёт сервис заявок. cache, m и notifier могут быть nil.
func NewClaimService(claims ClaimRepository, cache *CacheService, m *metrics.ClaimMetrics, notifier Notifier) *ClaimService {
	return &ClaimService{
		claims:   claims,
		cache:    cache,
		metrics:  m,
		notifier: notifier,
		codeGen:  GenerateHoldCode,
	}
}

// Create регистрирует заявку и ставит вещь на удержание.
// Вещь должна быть available, иначе возвращается InvalidTransition.
func (s *ClaimService) Create(ctx context.Context, in CreateClaimInput) (*models.Claim, error) {
	if in.FoundID == uuid.Nil {
		return nil, apperror.Validation("found_id обязательно")
	}
	email := validation.NormalizeEmail(in.ClaimantEmail)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.ClaimantName)
	if err := validation.ValidatePersonName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotes(in.Notes); err != nil {
		return nil, err
	}

	code, err := s.codeGen()
	if err != nil {
		return nil, err
	}

	claimant := &models.User{Email: email, Name: name, Role: models.RoleStudent}
	claim := &models.Claim{
		FoundID:  in.FoundID,
		HoldCode: code,
		Notes:    in.Notes,
	}
	if err := s.claims.CreateWithHold(ctx, claim, claimant); err != nil {
		return nil, err
	}

	s.afterTransition(claim, ClaimUpdatedEvent{
		ClaimID:  claim.ID,
		FoundID:  claim.FoundID,
		Status:   claim.Status,
		HoldCode: claim.HoldCode,
	})
	return claim, nil
}

// Verify подтверждает или отклоняет заявку в статусе requested.
func (s *ClaimService) Verify(ctx context.Context, id uuid.UUID, in VerifyClaimInput) (*models.Claim, error) {
	if err := validation.ValidateNotes(in.Notes); err != nil {
		return nil, err
	}

	claim, err := s.claims.Verify(ctx, id, models.ClaimDecision{
		Verified:   in.Verified,
		VerifierID: in.VerifierID,
		Notes:      in.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(claim, ClaimUpdatedEvent{ClaimID: claim.ID, FoundID: claim.FoundID, Status: claim.Status})
	return claim, nil
}

// Pickup выдаёт вещь по коду: заявка verified → picked_up, вещь on_hold → claimed.
func (s *ClaimService) Pickup(ctx context.Context, id uuid.UUID, holdCode string) (*models.Claim, error) {
	code := strings.ToUpper(strings.TrimSpace(holdCode))
	if !validation.IsHoldCode(code) {
		return nil, apperror.Validation("hold_code: ожидается %d символов A–Z0–9", validation.HoldCodeLength)
	}

	claim, err := s.claims.Pickup(ctx, id, code)
	if err != nil {
		return nil, err
	}

	s.afterTransition(claim, ClaimUpdatedEvent{ClaimID: claim.ID, FoundID: claim.FoundID, Status: claim.Status})
	return claim, nil
}

// Get возвращает заявку.
func (s *ClaimService) Get(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	return s.claims.GetByID(ctx, id)
}

// List возвращает заявки, пустой status означает все.
func (s *ClaimService) List(ctx context.Context, status string, offset, limit int) ([]models.Claim, error) {
	if status != "" {
		if _, err := valueobject.NewClaimStatus(status); err != nil {
			return nil, err
		}
	}
	if offset < 0 || limit < 0 {
		return nil, apperror.Validation("skip и limit не могут быть отрицательными")
	}
	return s.claims.List(ctx, status, offset, limit)
}

func (s *ClaimService) afterTransition(claim *models.Claim, event ClaimUpdatedEvent) {
	s.metrics.IncTransition(claim.Status)
	if s.cache != nil {
		s.cache.InvalidateByPrefix(statsCachePrefix)
	}

	if logger.Log != nil {
		logger.Log.WithFields(logrus.Fields{
			"claim_id": claim.ID,
			"found_id": claim.FoundID,
			"status":   claim.Status,
		}).Info("claim service: статус заявки изменён")
	}

	notifyAsync(s.notifier, claim.ClaimantID, EventClaimUpdated, event)
}
