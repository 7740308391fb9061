package service

import (
	"context"
	"time"

	"github.com/ignatzorin/campus-lostfound/internal/models"
)

// StatsRepository считает показатели панели.
type StatsRepository interface {
	Get(ctx context.Context) (*models.Stats, error)
}

const defaultStatsTTL = 30 * time.Second

// StatsService отдаёт показатели панели с кэшированием.
type StatsService struct {
	repo  StatsRepository
	cache *CacheService
	ttl   time.Duration
}

// NewStatsService создаёт сервис статистики. cache может быть nil.
func NewStatsService(repo StatsRepository, cache *CacheService, ttl time.Duration) *StatsService {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &StatsService{repo: repo, cache: cache, ttl: ttl}
}

// Get возвращает показатели. Переходы заявок и статусов вещей сбрасывают кэш.
func (s *StatsService) Get(ctx context.Context) (*models.Stats, error) {
	if s.cache == nil {
		return s.repo.Get(ctx)
	}
	v, err := s.cache.GetOrSet(ctx, statsCacheKey, s.ttl, func(ctx context.Context) (interface{}, error) {
		return s.repo.Get(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Stats), nil
}
