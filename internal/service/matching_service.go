package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/campus-lostfound/internal/lock"
	"github.com/ignatzorin/campus-lostfound/internal/logger"
	"github.com/ignatzorin/campus-lostfound/internal/matching"
	"github.com/ignatzorin/campus-lostfound/internal/metrics"
	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
)

// MatchRepository описывает хранилище совпадений.
type MatchRepository interface {
	ExistingFoundIDs(ctx context.Context, lostID uuid.UUID) (map[uuid.UUID]struct{}, error)
	InsertBatch(ctx context.Context, lostID uuid.UUID, suggestions []models.MatchSuggestion) ([]models.Match, error)
	ListByLostID(ctx context.Context, lostID uuid.UUID) ([]models.Match, error)
}

// Итоги прогона для метрик.
const (
	matchOutcomeOK       = "ok"
	matchOutcomeEmpty    = "empty"
	matchOutcomeNotFound = "not_found"
	matchOutcomeError    = "error"
)

// MatchSuggestedEvent полезная нагрузка события match.suggested.
type MatchSuggestedEvent struct {
	LostID  uuid.UUID                `json:"lost_id"`
	Matches []models.MatchSuggestion `json:"matches"`
}

// MatchingService подбирает найденные вещи к заявлениям о потере и сохраняет совпадения.
type MatchingService struct {
	lost     LostItemRepository
	found    FoundItemRepository
	matches  MatchRepository
	locker   lock.Locker
	metrics  *metrics.MatchingMetrics
	notifier Notifier
}

// NewMatchingService создаёт сервис сопоставления. locker, m и notifier могут быть nil.
func NewMatchingService(
	lost LostItemRepository,
	found FoundItemRepository,
	matches MatchRepository,
	locker lock.Locker,
	m *metrics.MatchingMetrics,
	notifier Notifier,
) *MatchingService {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &MatchingService{
		lost:     lost,
		found:    found,
		matches:  matches,
		locker:   locker,
		metrics:  m,
		notifier: notifier,
	}
}

// FindMatches оценивает доступные найденные вещи для заявления lostID и сохраняет новые совпадения.
// Возвращает только совпадения, созданные этим прогоном, по убыванию оценки; limit > 0 обрезает список.
// Неизвестный lostID даёт пустой результат без ошибки.
func (s *MatchingService) FindMatches(ctx context.Context, lostID uuid.UUID, limit int) ([]models.Match, error) {
	start := time.Now()
	result, outcome, err := s.findMatches(ctx, lostID, limit)
	s.metrics.ObserveRun(outcome, time.Since(start))

	if logger.Log != nil {
		entry := logger.Log.WithFields(logrus.Fields{
			"lost_id": lostID,
			"outcome": outcome,
			"matches": len(result),
			"took_ms": time.Since(start).Milliseconds(),
		})
		if err != nil {
			entry.WithError(err).Error("matching service: прогон завершился ошибкой")
		} else {
			entry.Debug("matching service: прогон завершён")
		}
	}
	return result, err
}

func (s *MatchingService) findMatches(ctx context.Context, lostID uuid.UUID, limit int) ([]models.Match, string, error) {
	lost, err := s.lost.GetByID(ctx, lostID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return []models.Match{}, matchOutcomeNotFound, nil
		}
		return nil, matchOutcomeError, err
	}

	release, err := s.locker.Lock(ctx, lostID.String())
	if err != nil {
		return nil, matchOutcomeError, fmt.Errorf("matching service: блокировка %s: %w", lostID, err)
	}
	defer release()

	candidates, err := s.found.ListCandidates(ctx, matching.WindowStart(lost.LastSeenAt))
	if err != nil {
		return nil, matchOutcomeError, err
	}
	existing, err := s.matches.ExistingFoundIDs(ctx, lostID)
	if err != nil {
		return nil, matchOutcomeError, err
	}

	suggestions := matching.Rank(*lost, candidates, existing)
	if len(suggestions) == 0 {
		return []models.Match{}, matchOutcomeEmpty, nil
	}

	inserted, err := s.matches.InsertBatch(ctx, lostID, suggestions)
	if err != nil {
		return nil, matchOutcomeError, err
	}
	if len(inserted) == 0 {
		return []models.Match{}, matchOutcomeEmpty, nil
	}

	sortMatches(inserted)

	scores := make([]float64, len(inserted))
	for i, m := range inserted {
		scores[i] = m.Score
	}
	s.metrics.ObserveSuggestions(scores)

	byID := make(map[uuid.UUID]models.FoundItem, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	for i := range inserted {
		if f, ok := byID[inserted[i].FoundID]; ok {
			f := f
			inserted[i].FoundItem = &f
		}
	}

	if limit > 0 && len(inserted) > limit {
		inserted = inserted[:limit]
	}

	event := MatchSuggestedEvent{LostID: lostID, Matches: make([]models.MatchSuggestion, 0, len(inserted))}
	for _, m := range inserted {
		event.Matches = append(event.Matches, models.MatchSuggestion{FoundID: m.FoundID, Score: m.Score})
	}
	notifyAsync(s.notifier, lost.ReporterID, EventMatchSuggested, event)

	return inserted, matchOutcomeOK, nil
}

// ListMatches возвращает все сохранённые совпадения заявления вместе с найденными вещами.
func (s *MatchingService) ListMatches(ctx context.Context, lostID uuid.UUID) ([]models.Match, error) {
	if _, err := s.lost.GetByID(ctx, lostID); err != nil {
		return nil, err
	}

	list, err := s.matches.ListByLostID(ctx, lostID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return []models.Match{}, nil
	}

	ids := make([]uuid.UUID, 0, len(list))
	for _, m := range list {
		ids = append(ids, m.FoundID)
	}
	items, err := s.found.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if f, ok := items[list[i].FoundID]; ok {
			f := f
			list[i].FoundItem = &f
		}
	}

	sortMatches(list)
	return list, nil
}

// sortMatches упорядочивает по убыванию оценки, сохраняя порядок равных.
func sortMatches(list []models.Match) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Score > list[j].Score
	})
}
